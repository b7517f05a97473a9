package ingest

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/logger"
)

const maxMergedSnippets = 10

// LiveIngestor fans out to the source ingestors in parallel and merges their
// per-entity results into MergedSignals. A failed source contributes empty
// signals; only a cancelled context fails the whole run.
type LiveIngestor struct {
	onchain  *OnchainIngestor
	dev      *DevIngestor
	social   *SocialIngestor
	entities []TrackedEntity
	logger   *logger.Logger
}

func NewLiveIngestor(onchain *OnchainIngestor, dev *DevIngestor, social *SocialIngestor, log *logger.Logger) *LiveIngestor {
	return &LiveIngestor{
		onchain:  onchain,
		dev:      dev,
		social:   social,
		entities: TrackedEntities,
		logger:   log,
	}
}

// WithEntities overrides the default watch list.
func (l *LiveIngestor) WithEntities(entities []TrackedEntity) *LiveIngestor {
	l.entities = entities
	return l
}

func (l *LiveIngestor) Ingest(ctx context.Context, periodStart, periodEnd time.Time) ([]contracts.MergedSignal, error) {
	var (
		onchainResults []OnchainResult
		devResults     []DevResult
		socialResults  []SocialResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		onchainResults = l.onchain.Ingest(gctx, l.entities, periodStart, periodEnd)
		return gctx.Err()
	})
	g.Go(func() error {
		devResults = l.dev.Ingest(gctx, l.entities, periodStart, periodEnd)
		return gctx.Err()
	})
	g.Go(func() error {
		socialResults = l.social.Ingest(gctx, l.entities, periodStart, periodEnd)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := l.merge(onchainResults, devResults, socialResults)

	// Drop entities with no activity anywhere.
	active := merged[:0]
	for _, sig := range merged {
		if sig.HasActivity() {
			active = append(active, sig)
		}
	}

	l.logger.WithFields(map[string]interface{}{
		"tracked": len(merged),
		"active":  len(active),
	}).Info("Live ingestion merged")
	return active, nil
}

func (l *LiveIngestor) merge(onchain []OnchainResult, dev []DevResult, social []SocialResult) []contracts.MergedSignal {
	ocMap := make(map[string]contracts.OnchainSignal, len(onchain))
	for _, r := range onchain {
		if r.Err == nil {
			ocMap[r.EntityKey] = r.Signal
		}
	}
	devMap := make(map[string]contracts.DevSignal, len(dev))
	for _, r := range dev {
		if r.Err == nil {
			devMap[r.EntityKey] = r.Signal
		}
	}
	scMap := make(map[string]contracts.SocialSignal, len(social))
	for _, r := range social {
		scMap[r.EntityKey] = r.Signal
	}

	out := make([]contracts.MergedSignal, 0, len(l.entities))
	for _, entity := range l.entities {
		sig := contracts.MergedSignal{
			Key:       entity.Key,
			Label:     entity.Label,
			Kind:      entity.Kind,
			FirstSeen: entity.FirstSeen,
			Onchain:   ocMap[entity.Key],
			Dev:       devMap[entity.Key],
			Social:    scMap[entity.Key],
		}
		if sig.Onchain.NewWalletShareBaseline == 0 {
			sig.Onchain.NewWalletShareBaseline = defaultNewWalletShareBaseline
		}
		if sig.Onchain.Retention7DBaseline == 0 {
			sig.Onchain.Retention7DBaseline = defaultRetentionBaseline
		}
		if len(sig.Social.Snippets) > maxMergedSnippets {
			sig.Social.Snippets = sig.Social.Snippets[:maxMergedSnippets]
		}
		out = append(out, sig)
	}
	return out
}
