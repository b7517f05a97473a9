package saturation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/internal/embedding"
	"github.com/hunterlabs/hunter/pkg/logger"
)

const (
	projectsFile   = "projects.json"
	embeddingsFile = "projects_embeddings.json"
)

// FileCorpusLoader loads the static project corpus from the fixtures
// directory. When the precomputed embedding file is missing or out of step
// with the project list, embeddings are regenerated from name+description
// with the deterministic embedder, so the two sources can never disagree.
type FileCorpusLoader struct {
	Dir    string
	logger *logger.Logger
}

// NewFileCorpusLoader creates a loader rooted at dir.
func NewFileCorpusLoader(dir string, log *logger.Logger) *FileCorpusLoader {
	return &FileCorpusLoader{Dir: dir, logger: log}
}

// Load implements contracts.CorpusLoader. A missing projects file yields an
// empty corpus, not an error: demo installs without fixtures still run, the
// orchestrator just substitutes the default saturation verdict.
func (l *FileCorpusLoader) Load(ctx context.Context) ([]contracts.CorpusProject, [][]float64, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir, projectsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read project corpus: %w", err)
	}

	var projects []contracts.CorpusProject
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, nil, fmt.Errorf("failed to parse project corpus: %w", err)
	}

	embeddings := l.loadPrecomputed(len(projects))
	if embeddings == nil {
		embeddings = EmbedProjects(projects)
		if l.logger != nil {
			l.logger.WithFields(map[string]interface{}{
				"projects": len(projects),
			}).Info("Computed corpus embeddings on the fly")
		}
	}

	return projects, embeddings, nil
}

func (l *FileCorpusLoader) loadPrecomputed(want int) [][]float64 {
	data, err := os.ReadFile(filepath.Join(l.Dir, embeddingsFile))
	if err != nil {
		return nil
	}
	var embeddings [][]float64
	if err := json.Unmarshal(data, &embeddings); err != nil || len(embeddings) != want {
		if l.logger != nil {
			l.logger.Warn("Ignoring stale corpus embedding file")
		}
		return nil
	}
	return embeddings
}

// EmbedProjects generates the corpus embedding matrix from project metadata.
func EmbedProjects(projects []contracts.CorpusProject) [][]float64 {
	embeddings := make([][]float64, len(projects))
	for i, p := range projects {
		embeddings[i] = embedding.Embed(p.Name + " " + p.Description)
	}
	return embeddings
}

// WriteEmbeddings precomputes and persists the corpus embedding file next to
// the project list. Used by the corpus subcommand.
func WriteEmbeddings(dir string, projects []contracts.CorpusProject) error {
	data, err := json.MarshalIndent(EmbedProjects(projects), "", " ")
	if err != nil {
		return fmt.Errorf("failed to marshal corpus embeddings: %w", err)
	}
	path := filepath.Join(dir, embeddingsFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
