package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hunterlabs/hunter/internal/saturation"
	"github.com/hunterlabs/hunter/pkg/config"
	"github.com/hunterlabs/hunter/pkg/logger"
)

// corpusCmd represents the corpus command
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the saturation project corpus",
	Long: `Inspects or precomputes embeddings for the static project corpus
used in idea saturation analysis.

Subcommands:
  build - precompute fixtures/projects_embeddings.json
  show  - list corpus projects

Example:
  go run ./cmd/hunter corpus build`,
}

var (
	corpusBuildCmd = &cobra.Command{
		Use:   "build",
		Short: "Precompute corpus embeddings",
		RunE:  runCorpusBuild,
	}

	corpusShowCmd = &cobra.Command{
		Use:   "show",
		Short: "List corpus projects",
		RunE:  runCorpusShow,
	}
)

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusBuildCmd)
	corpusCmd.AddCommand(corpusShowCmd)
}

func corpusLoader() (*saturation.FileCorpusLoader, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return saturation.NewFileCorpusLoader(cfg.FixturesDir, logger.New(cfg)), nil
}

func runCorpusBuild(cmd *cobra.Command, args []string) error {
	loader, err := corpusLoader()
	if err != nil {
		return err
	}

	projects, _, err := loader.Load(context.Background())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return fmt.Errorf("no projects found in %s", loader.Dir)
	}

	if err := saturation.WriteEmbeddings(loader.Dir, projects); err != nil {
		return err
	}

	fmt.Printf("Wrote embeddings for %d projects to %s\n", len(projects), loader.Dir)
	return nil
}

func runCorpusShow(cmd *cobra.Command, args []string) error {
	loader, err := corpusLoader()
	if err != nil {
		return err
	}

	projects, _, err := loader.Load(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Corpus: %d projects\n\n", len(projects))
	for _, p := range projects {
		fmt.Printf("  %-20s %s\n", p.Name, p.Description)
	}

	return nil
}
