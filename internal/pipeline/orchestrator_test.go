package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/internal/embedding"
	"github.com/hunterlabs/hunter/internal/labeling"
	"github.com/hunterlabs/hunter/internal/runconfig"
	"github.com/hunterlabs/hunter/pkg/logger"
)

type fakeIngestor struct {
	signals []contracts.MergedSignal
	err     error
}

func (f *fakeIngestor) Ingest(ctx context.Context, periodStart, periodEnd time.Time) ([]contracts.MergedSignal, error) {
	return f.signals, f.err
}

type fakeSink struct {
	nextID       int64
	createErr    error
	saveNarrErr  error
	candidates   map[int64][]contracts.ScoredCandidate
	narratives   map[int64][]contracts.Narrative
	finalStatus  map[int64]string
	createdMetas []contracts.ReportMeta
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		nextID:      41,
		candidates:  make(map[int64][]contracts.ScoredCandidate),
		narratives:  make(map[int64][]contracts.Narrative),
		finalStatus: make(map[int64]string),
	}
}

func (f *fakeSink) CreateReport(ctx context.Context, meta contracts.ReportMeta) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	f.createdMetas = append(f.createdMetas, meta)
	return f.nextID, nil
}

func (f *fakeSink) SaveCandidates(ctx context.Context, reportID int64, candidates []contracts.ScoredCandidate) error {
	f.candidates[reportID] = candidates
	return nil
}

func (f *fakeSink) SaveNarrative(ctx context.Context, reportID int64, narrative contracts.Narrative) error {
	if f.saveNarrErr != nil {
		return f.saveNarrErr
	}
	f.narratives[reportID] = append(f.narratives[reportID], narrative)
	return nil
}

func (f *fakeSink) FinishReport(ctx context.Context, reportID int64, status string) error {
	f.finalStatus[reportID] = status
	return nil
}

func (f *fakeSink) LatestReport(ctx context.Context) (*contracts.ReportSummary, error) {
	return nil, nil
}

type fakeCorpus struct {
	projects [][2]string
	err      error
}

func (f *fakeCorpus) Load(ctx context.Context) ([]contracts.CorpusProject, [][]float64, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	projects := make([]contracts.CorpusProject, len(f.projects))
	embeddings := make([][]float64, len(f.projects))
	for i, p := range f.projects {
		projects[i] = contracts.CorpusProject{Name: p[0], Description: p[1]}
		embeddings[i] = embedding.Embed(p[0] + " " + p[1])
	}
	return projects, embeddings, nil
}

func signalAt(key, label, kind string, txCount, commits float64, firstSeen time.Time) contracts.MergedSignal {
	return contracts.MergedSignal{
		Key:       key,
		Label:     label,
		Kind:      kind,
		FirstSeen: firstSeen,
		Onchain: contracts.OnchainSignal{
			TxCount: txCount, TxCountBaseline: txCount / 3,
			UniqueWallets: txCount / 2, UniqueWalletsBaseline: txCount / 4,
			NewWalletShare: 0.4, NewWalletShareBaseline: 0.3,
			Retention7D: 0.5, Retention7DBaseline: 0.4,
		},
		Dev: contracts.DevSignal{
			Commits: commits, CommitsBaseline: commits / 2,
			NewContributors: 1,
		},
		Social: contracts.SocialSignal{
			MentionsCount: 6, MentionsCountBaseline: 3,
			UniqueAuthors: 4, UniqueAuthorsBaseline: 2,
			Snippets: []contracts.Snippet{
				{Text: label + " shipped a new release", Classification: contracts.SnippetAnnouncement},
			},
		},
	}
}

func testSignals() []contracts.MergedSignal {
	recent := time.Now().UTC().AddDate(0, 0, -10)
	old := time.Now().UTC().AddDate(0, -8, 0)
	return []contracts.MergedSignal{
		signalAt("jupiter", "Jupiter", "defi", 9000, 40, old),
		signalAt("kamino", "Kamino", "defi", 7000, 35, old),
		signalAt("tensor", "Tensor", "nft", 3000, 12, recent),
		signalAt("drift", "Drift", "defi", 5000, 25, old),
	}
}

func newTestOrchestrator(ingestor contracts.SignalIngestor, sink contracts.ReportSink, corpus contracts.CorpusLoader) *Orchestrator {
	return NewOrchestrator(
		ingestor,
		labeling.NewTemplateLabeler(),
		corpus,
		sink,
		runconfig.Default(),
		"testhash",
		"demo",
		logger.NewNop(),
	)
}

func TestRunProducesCompleteReport(t *testing.T) {
	sink := newFakeSink()
	corpus := &fakeCorpus{projects: [][2]string{
		{"Orca", "concentrated liquidity dex on solana"},
		{"Marinade", "liquid staking protocol"},
		{"Helium", "decentralized wireless network"},
	}}
	o := newTestOrchestrator(&fakeIngestor{signals: testSignals()}, sink, corpus)

	result, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, contracts.ReportComplete, sink.finalStatus[result.ReportID])
	assert.Len(t, sink.candidates[result.ReportID], 4)
	require.NotEmpty(t, sink.narratives[result.ReportID])
	assert.Equal(t, sink.narratives[result.ReportID], result.Narratives)

	require.Len(t, sink.createdMetas, 1)
	assert.Equal(t, "testhash", sink.createdMetas[0].ConfigHash)
	assert.Equal(t, "demo", sink.createdMetas[0].Mode)

	totalMembers := 0
	for _, n := range result.Narratives {
		assert.NotEmpty(t, n.Title)
		assert.NotEmpty(t, n.MemberKeys)
		assert.Equal(t, len(n.MemberKeys), n.ClusterSize)
		assert.GreaterOrEqual(t, n.Novelty, 0.0)
		assert.LessOrEqual(t, n.Novelty, 1.0)
		require.NotEmpty(t, n.Ideas)
		for _, idea := range n.Ideas {
			assert.NotEmpty(t, idea.Idea.Title)
			assert.NotEmpty(t, idea.ActionPack.SpecMD)
			assert.NotZero(t, idea.Saturation.Level)
		}
		totalMembers += n.ClusterSize
	}
	assert.Equal(t, 4, totalMembers)
}

func TestRunFailsWithoutSignals(t *testing.T) {
	sink := newFakeSink()
	o := newTestOrchestrator(&fakeIngestor{}, sink, &fakeCorpus{})

	result, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no signals")
	require.NotNil(t, result)
	assert.Equal(t, contracts.ReportFailed, sink.finalStatus[result.ReportID])
}

func TestRunMarksReportFailedOnStageError(t *testing.T) {
	sink := newFakeSink()
	sink.saveNarrErr = errors.New("disk full")
	o := newTestOrchestrator(&fakeIngestor{signals: testSignals()}, sink, &fakeCorpus{})

	result, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, contracts.ReportFailed, sink.finalStatus[result.ReportID])
}

func TestRunSurvivesCorpusFailure(t *testing.T) {
	sink := newFakeSink()
	corpus := &fakeCorpus{err: errors.New("missing fixtures")}
	o := newTestOrchestrator(&fakeIngestor{signals: testSignals()}, sink, corpus)

	result, err := o.Run(context.Background())
	require.NoError(t, err)

	for _, n := range result.Narratives {
		for _, idea := range n.Ideas {
			assert.Equal(t, contracts.SaturationLow, idea.Saturation.Level)
			assert.Equal(t, 0.2, idea.Saturation.Score)
		}
	}
}

func TestCandidateDocIncludesStrongFeatures(t *testing.T) {
	c := contracts.ScoredCandidate{
		Signal: contracts.MergedSignal{Key: "tensor", Label: "Tensor", Kind: "nft"},
		Features: map[string]float64{
			contracts.FeatureTxCount: 2.5,
			contracts.FeatureCommits: 0.2,
		},
	}

	doc := candidateDoc(&c)
	assert.Contains(t, doc, "Tensor")
	assert.Contains(t, doc, "nft")
	assert.Contains(t, doc, "tx count")
	assert.NotContains(t, doc, "z_")
}

func TestClusterAggregatesClampsNovelty(t *testing.T) {
	candidates := []contracts.ScoredCandidate{
		{NormalizedScore: 0.8, Novelty: 1.3},
		{NormalizedScore: 0.4, Novelty: 1.0},
	}

	momentum, novelty := clusterAggregates([]int{0, 1}, candidates, 1.3)
	assert.InDelta(t, 0.6, momentum, 1e-9)
	assert.InDelta(t, 0.5, novelty, 1e-9)

	momentum, novelty = clusterAggregates([]int{1}, candidates, 1.3)
	assert.InDelta(t, 0.4, momentum, 1e-9)
	assert.Equal(t, 0.0, novelty)
}

func TestPivotSuggestionNamesNeighbors(t *testing.T) {
	idea := contracts.Idea{Title: "Yield Aggregator", TargetUser: "DeFi power users"}
	sat := contracts.SaturationResult{
		Level: contracts.SaturationHigh,
		Score: 0.8,
		Neighbors: []contracts.SaturationNeighbor{
			{Name: "Orca"}, {Name: "Kamino"},
		},
	}

	pivot := pivotSuggestion(idea, sat)
	assert.Contains(t, pivot, "Orca")
	assert.Contains(t, pivot, "Kamino")
	assert.Contains(t, pivot, "Yield Aggregator")
}
