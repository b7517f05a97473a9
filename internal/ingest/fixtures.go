package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/logger"
)

const signalsFixture = "demo_signals.json"

// FixtureIngestor serves signals from a JSON fixture instead of live APIs.
// It accepts either a pre-merged []MergedSignal or the raw fixture layout
// with per-source signal arrays keyed by entity_key.
type FixtureIngestor struct {
	dir    string
	logger *logger.Logger
}

func NewFixtureIngestor(dir string, log *logger.Logger) *FixtureIngestor {
	return &FixtureIngestor{dir: dir, logger: log}
}

type rawFixture struct {
	Metadata map[string]interface{} `json:"metadata"`
	Entities []struct {
		Kind      string    `json:"kind"`
		Key       string    `json:"key"`
		Label     string    `json:"label"`
		FirstSeen time.Time `json:"first_seen"`
	} `json:"entities"`
	Signals struct {
		Onchain []rawSourceSignal `json:"onchain"`
		Dev     []rawSourceSignal `json:"dev"`
		Social  []rawSourceSignal `json:"social"`
	} `json:"signals"`
}

// rawSourceSignal keeps the entity key alongside the metric payload so the
// payload can be re-decoded into the matching typed struct.
type rawSourceSignal struct {
	EntityKey string `json:"entity_key"`
	payload   json.RawMessage
}

func (r *rawSourceSignal) UnmarshalJSON(data []byte) error {
	var key struct {
		EntityKey string `json:"entity_key"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return err
	}
	r.EntityKey = key.EntityKey
	r.payload = append(r.payload[:0], data...)
	return nil
}

// Ingest loads the fixture. The period arguments are ignored: fixture data
// represents a canned reporting window.
func (f *FixtureIngestor) Ingest(ctx context.Context, periodStart, periodEnd time.Time) ([]contracts.MergedSignal, error) {
	path := filepath.Join(f.dir, signalsFixture)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signals fixture: %w", err)
	}

	// Pre-merged layout first
	var merged []contracts.MergedSignal
	if err := json.Unmarshal(data, &merged); err == nil {
		f.logger.WithField("signals", len(merged)).Info("Loaded pre-merged fixture signals")
		return merged, nil
	}

	var raw rawFixture
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode signals fixture: %w", err)
	}

	out := mergeFixture(raw)
	f.logger.WithFields(map[string]interface{}{
		"entities": len(raw.Entities),
		"signals":  len(out),
	}).Info("Loaded fixture signals")
	return out, nil
}

func mergeFixture(raw rawFixture) []contracts.MergedSignal {
	onchain := indexByKey(raw.Signals.Onchain)
	dev := indexByKey(raw.Signals.Dev)
	social := indexByKey(raw.Signals.Social)

	out := make([]contracts.MergedSignal, 0, len(raw.Entities))
	for _, ent := range raw.Entities {
		sig := contracts.MergedSignal{
			Key:       ent.Key,
			Label:     ent.Label,
			Kind:      ent.Kind,
			FirstSeen: ent.FirstSeen,
		}
		if p, ok := onchain[ent.Key]; ok {
			_ = json.Unmarshal(p, &sig.Onchain)
		}
		if p, ok := dev[ent.Key]; ok {
			_ = json.Unmarshal(p, &sig.Dev)
		}
		if p, ok := social[ent.Key]; ok {
			_ = json.Unmarshal(p, &sig.Social)
		}
		out = append(out, sig)
	}
	return out
}

func indexByKey(signals []rawSourceSignal) map[string]json.RawMessage {
	m := make(map[string]json.RawMessage, len(signals))
	for _, s := range signals {
		if s.EntityKey != "" {
			m[s.EntityKey] = s.payload
		}
	}
	return m
}
