// Package pipeline sequences one full narrative-hunting run: ingest signals,
// score them, cluster the leaders into narratives, label each narrative with
// build ideas, judge idea saturation against the project corpus, and persist
// the assembled report.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hunterlabs/hunter/internal/clustering"
	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/internal/embedding"
	"github.com/hunterlabs/hunter/internal/runconfig"
	"github.com/hunterlabs/hunter/internal/saturation"
	"github.com/hunterlabs/hunter/internal/scoring"
	"github.com/hunterlabs/hunter/pkg/logger"
)

// Orchestrator coordinates the full pipeline. All run state lives on the
// RunResult; the orchestrator itself is safe to reuse across runs.
type Orchestrator struct {
	ingestor contracts.SignalIngestor
	labeler  contracts.Labeler
	corpus   contracts.CorpusLoader
	sink     contracts.ReportSink

	runCfg     *runconfig.Config
	configHash string
	mode       string

	logger *logger.Logger
	now    func() time.Time
}

// RunResult holds the output of one pipeline run.
type RunResult struct {
	RunID       string
	ReportID    int64
	PeriodStart time.Time
	PeriodEnd   time.Time
	Candidates  []contracts.ScoredCandidate
	Narratives  []contracts.Narrative
	Duration    time.Duration
}

// NewOrchestrator wires a pipeline from its stage implementations.
func NewOrchestrator(
	ingestor contracts.SignalIngestor,
	labeler contracts.Labeler,
	corpus contracts.CorpusLoader,
	sink contracts.ReportSink,
	runCfg *runconfig.Config,
	configHash string,
	mode string,
	log *logger.Logger,
) *Orchestrator {
	if runCfg == nil {
		runCfg = runconfig.Default()
	}
	return &Orchestrator{
		ingestor:   ingestor,
		labeler:    labeler,
		corpus:     corpus,
		sink:       sink,
		runCfg:     runCfg,
		configHash: configHash,
		mode:       mode,
		logger:     log,
		now:        time.Now,
	}
}

// Run executes one full pipeline cycle. The report row is created up front
// and always moved to a terminal status: complete on success, failed on any
// stage error.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	startTime := o.now()
	periodEnd := startTime.UTC()
	periodStart := periodEnd.AddDate(0, 0, -o.runCfg.Period.Days)
	runID := uuid.New().String()

	o.logger.WithFields(map[string]interface{}{
		"run_id":       runID,
		"config":       o.runCfg.Meta.RunID,
		"period_start": periodStart.Format("2006-01-02"),
		"period_end":   periodEnd.Format("2006-01-02"),
		"mode":         o.mode,
	}).Info("Starting pipeline run")

	reportID, err := o.sink.CreateReport(ctx, contracts.ReportMeta{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		ConfigHash:  o.configHash,
		Mode:        o.mode,
	})
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	result := &RunResult{
		RunID:       runID,
		ReportID:    reportID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}

	if err := o.run(ctx, result); err != nil {
		if finishErr := o.sink.FinishReport(ctx, reportID, contracts.ReportFailed); finishErr != nil {
			o.logger.WithError(finishErr).Error("Failed to mark report failed")
		}
		return result, err
	}

	if err := o.sink.FinishReport(ctx, reportID, contracts.ReportComplete); err != nil {
		return result, fmt.Errorf("finish report: %w", err)
	}

	result.Duration = time.Since(startTime)
	o.logger.WithFields(map[string]interface{}{
		"report_id":  reportID,
		"candidates": len(result.Candidates),
		"narratives": len(result.Narratives),
		"duration":   result.Duration.Seconds(),
	}).Info("Pipeline run completed")

	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, result *RunResult) error {
	// Stage 1: ingest
	signals, err := o.ingestor.Ingest(ctx, result.PeriodStart, result.PeriodEnd)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if len(signals) == 0 {
		return fmt.Errorf("ingest returned no signals for period %s to %s",
			result.PeriodStart.Format("2006-01-02"), result.PeriodEnd.Format("2006-01-02"))
	}
	o.logger.WithField("signals", len(signals)).Info("Ingestion completed")

	// Stage 2: score and keep the leaders
	scorer := scoring.NewScorer(scoring.Weights(o.runCfg.Scoring.Weights), o.logger).
		WithNovelty(o.runCfg.Scoring.NoveltyWindowDays, o.runCfg.Scoring.NoveltyMaxBonus)
	scored := scorer.Score(signals)

	top := o.runCfg.Pipeline.TopCandidates
	if top > len(scored) {
		top = len(scored)
	}
	candidates := scored[:top]
	result.Candidates = candidates

	if err := o.sink.SaveCandidates(ctx, result.ReportID, candidates); err != nil {
		return fmt.Errorf("save candidates: %w", err)
	}

	// Stage 3: embed candidate documents and cluster
	docs := make([]string, len(candidates))
	embeddings := make([][]float64, len(candidates))
	for i := range candidates {
		docs[i] = candidateDoc(&candidates[i])
		embeddings[i] = embedding.Embed(docs[i])
	}

	engine := clustering.NewEngine(o.runCfg.Clustering.Threshold, o.runCfg.Clustering.MaxClusters, o.logger)
	clusters := engine.Cluster(embeddings)
	clusters = o.rankClusters(clusters, candidates)

	if max := o.runCfg.Pipeline.MaxNarratives; len(clusters) > max {
		clusters = clusters[:max]
	}

	// Stage 4: saturation corpus
	analyzer := o.loadAnalyzer(ctx)

	// Stage 5: label, score ideas, persist each narrative
	for _, cluster := range clusters {
		narrative, err := o.buildNarrative(ctx, cluster, candidates, docs, analyzer)
		if err != nil {
			return fmt.Errorf("narrative for cluster %d: %w", cluster.ClusterID, err)
		}

		if err := o.sink.SaveNarrative(ctx, result.ReportID, *narrative); err != nil {
			return fmt.Errorf("save narrative %q: %w", narrative.Title, err)
		}
		result.Narratives = append(result.Narratives, *narrative)
	}

	return nil
}

// loadAnalyzer builds the saturation analyzer. A missing or empty corpus is
// not fatal: ideas then receive the default low-saturation verdict.
func (o *Orchestrator) loadAnalyzer(ctx context.Context) *saturation.Analyzer {
	var projects []contracts.CorpusProject
	var embeddings [][]float64

	if o.corpus != nil {
		var err error
		projects, embeddings, err = o.corpus.Load(ctx)
		if err != nil {
			o.logger.WithError(err).Warn("Corpus load failed, saturation defaults to low")
			projects, embeddings = nil, nil
		}
	}

	analyzer := saturation.NewAnalyzer(projects, embeddings)
	analyzer.TopK = o.runCfg.Saturation.TopK
	analyzer.HighCutoff = o.runCfg.Saturation.HighCutoff
	analyzer.MediumCutoff = o.runCfg.Saturation.MediumCutoff
	return analyzer
}

func (o *Orchestrator) buildNarrative(
	ctx context.Context,
	cluster contracts.ClusterResult,
	candidates []contracts.ScoredCandidate,
	docs []string,
	analyzer *saturation.Analyzer,
) (*contracts.Narrative, error) {
	memberDocs := make([]string, 0, len(cluster.MemberIndices))
	memberKeys := make([]string, 0, len(cluster.MemberIndices))
	for _, idx := range cluster.MemberIndices {
		memberDocs = append(memberDocs, docs[idx])
		memberKeys = append(memberKeys, candidates[idx].Signal.Key)
	}

	label, ideas, err := o.labeler.LabelNarrative(ctx, memberDocs)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}

	packs, err := o.labeler.ActionPacks(ctx, ideas, label.Title)
	if err != nil {
		return nil, fmt.Errorf("action packs: %w", err)
	}

	scoredIdeas := make([]contracts.ScoredIdea, 0, len(ideas))
	maxSaturation := 0.0
	for i, idea := range ideas {
		sat := o.analyzeIdea(analyzer, idea)
		if sat.Score > maxSaturation {
			maxSaturation = sat.Score
		}

		scored := contracts.ScoredIdea{Idea: idea, Saturation: sat}
		if sat.Level == contracts.SaturationHigh {
			scored.Pivot = pivotSuggestion(idea, sat)
		}
		if i < len(packs) {
			scored.ActionPack = packs[i]
		}
		scoredIdeas = append(scoredIdeas, scored)
	}

	momentum, novelty := clusterAggregates(cluster.MemberIndices, candidates, o.runCfg.Scoring.NoveltyMaxBonus)

	narrative := &contracts.Narrative{
		Title:       label.Title,
		Summary:     label.Summary,
		Momentum:    momentum,
		Novelty:     novelty,
		Saturation:  maxSaturation,
		ClusterSize: len(cluster.MemberIndices),
		MemberKeys:  memberKeys,
		Evidence:    buildEvidence(cluster.MemberIndices, candidates, label.EvidenceHints),
		Ideas:       scoredIdeas,
	}

	return narrative, nil
}

func (o *Orchestrator) analyzeIdea(analyzer *saturation.Analyzer, idea contracts.Idea) contracts.SaturationResult {
	ideaEmbedding := embedding.Embed(idea.Title + " " + idea.Pitch + " " + idea.MVPScope)

	result, err := analyzer.Analyze(ideaEmbedding)
	if err != nil {
		return saturation.DefaultResult()
	}
	return result
}

// rankClusters orders clusters by the mean total score of their members so
// the narrative cap keeps the strongest groupings.
func (o *Orchestrator) rankClusters(clusters []contracts.ClusterResult, candidates []contracts.ScoredCandidate) []contracts.ClusterResult {
	means := make(map[int]float64, len(clusters))
	for _, c := range clusters {
		sum := 0.0
		for _, idx := range c.MemberIndices {
			sum += candidates[idx].TotalScore
		}
		means[c.ClusterID] = sum / float64(len(c.MemberIndices))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return means[clusters[i].ClusterID] > means[clusters[j].ClusterID]
	})

	return clusters
}

// candidateDoc is the text embedded and clustered for one candidate: its
// label, kind, and the features that moved this period.
func candidateDoc(c *contracts.ScoredCandidate) string {
	parts := []string{c.Signal.Label, c.Signal.Kind}

	for _, key := range c.TopFeatures(3, 1.0) {
		parts = append(parts, strings.ReplaceAll(strings.TrimPrefix(key, "z_"), "_", " "))
	}

	for _, snippet := range c.Signal.Social.Snippets {
		if snippet.Classification == contracts.SnippetAnnouncement || snippet.Classification == contracts.SnippetPainPoint {
			parts = append(parts, snippet.Text)
		}
	}

	return strings.Join(parts, " ")
}

// clusterAggregates returns the momentum and novelty shown on the narrative:
// momentum is the mean normalized score of the members, novelty rescales the
// mean member novelty bonus into [0, 1].
func clusterAggregates(members []int, candidates []contracts.ScoredCandidate, noveltyMaxBonus float64) (momentum, novelty float64) {
	sumScore := 0.0
	sumNovelty := 0.0
	for _, idx := range members {
		sumScore += candidates[idx].NormalizedScore
		sumNovelty += candidates[idx].Novelty
	}
	n := float64(len(members))

	if noveltyMaxBonus <= 1.0 {
		noveltyMaxBonus = 1.3
	}
	momentum = sumScore / n
	novelty = (sumNovelty/n - 1.0) / (noveltyMaxBonus - 1.0)
	if novelty < 0 {
		novelty = 0
	}
	if novelty > 1 {
		novelty = 1
	}
	return momentum, novelty
}

// buildEvidence collapses member signals into supporting data points, one per
// active signal family per member, capped so the report stays readable.
func buildEvidence(members []int, candidates []contracts.ScoredCandidate, hints []string) []contracts.Evidence {
	const maxEvidence = 6

	evidence := make([]contracts.Evidence, 0, maxEvidence)
	hintFor := func(i int) string {
		if i < len(hints) {
			return hints[i]
		}
		return ""
	}

	for _, idx := range members {
		if len(evidence) >= maxEvidence {
			break
		}
		c := &candidates[idx]

		if c.Signal.Onchain.TxCount > 0 {
			title := hintFor(len(evidence))
			if title == "" {
				title = fmt.Sprintf("%s on-chain activity", c.Signal.Label)
			}
			evidence = append(evidence, contracts.Evidence{
				Type:  "onchain",
				Title: title,
				Metrics: map[string]float64{
					contracts.FeatureTxCount:       c.Features[contracts.FeatureTxCount],
					contracts.FeatureUniqueWallets: c.Features[contracts.FeatureUniqueWallets],
				},
			})
		}
		if len(evidence) < maxEvidence && c.Signal.Dev.Commits > 0 {
			evidence = append(evidence, contracts.Evidence{
				Type:  "dev",
				Title: fmt.Sprintf("%s development pace", c.Signal.Label),
				Metrics: map[string]float64{
					contracts.FeatureCommits:  c.Features[contracts.FeatureCommits],
					contracts.FeatureReleases: c.Features[contracts.FeatureReleases],
				},
			})
		}
		if len(evidence) < maxEvidence && len(c.Signal.Social.Snippets) > 0 {
			s := c.Signal.Social.Snippets[0]
			evidence = append(evidence, contracts.Evidence{
				Type:    "social",
				Title:   fmt.Sprintf("%s community traction", c.Signal.Label),
				URL:     s.URL,
				Snippet: s.Text,
				Metrics: map[string]float64{
					contracts.FeatureMentionsDelta: c.Features[contracts.FeatureMentionsDelta],
				},
			})
		}
	}

	return evidence
}

// pivotSuggestion proposes a narrower angle when an idea lands in a crowded
// space.
func pivotSuggestion(idea contracts.Idea, sat contracts.SaturationResult) string {
	names := make([]string, 0, len(sat.Neighbors))
	for _, n := range sat.Neighbors {
		names = append(names, n.Name)
	}

	return fmt.Sprintf(
		"%d established projects already cover this ground (%s). Narrow %q to an underserved segment: target %s specifically, or build the integration layer those projects lack.",
		len(sat.Neighbors), strings.Join(names, ", "), idea.Title, idea.TargetUser,
	)
}
