package labeling

import (
	"context"
	"fmt"
	"strings"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/logger"
)

const labelSystemPrompt = `You are a Solana ecosystem analyst and startup idea generator.

Given a cluster of related signal documents from the Solana ecosystem, do TWO things:

1. Produce a narrative label with a compelling title and summary.
2. Generate 3-5 concrete, actionable product ideas that founders could build around this narrative.

Return ONLY valid JSON with this exact structure:
{
  "title": "string (max 100 chars, specific and descriptive)",
  "summary": "string (2-4 sentences explaining the narrative)",
  "evidenceHints": ["string array, 2-5 items describing key evidence"],
  "ideas": [
    {
      "title": "string (product name)",
      "pitch": "string (one-line pitch)",
      "targetUser": "string (who uses this)",
      "mvpScope": "string (what the MVP includes)",
      "whyNow": "string (why build now)",
      "validation": "string (evidence supporting demand)"
    }
  ]
}`

const packSystemPrompt = `You are a technical product manager for Solana ecosystem projects.

Given %d build ideas for the %q narrative, generate an Action Pack for EACH idea.

Return ONLY valid JSON with this exact structure:
{
  "packs": [
    {
      "specMd": "markdown product spec (200-400 words)",
      "techMd": "markdown technical plan with architecture, components, security (200-400 words)",
      "milestonesMd": "markdown milestones with 3-4 phases, checkbox items (200-300 words)",
      "depsJson": "JSON string of dependencies (runtime, framework, key packages)"
    }
  ]
}

Generate exactly %d packs in the same order as the ideas.`

// LLMLabeler labels clusters with a live LLM, falling back to the template
// labeler whenever a call or parse fails. One cluster-level call returns the
// label and ideas together; one narrative-level call returns all action packs.
type LLMLabeler struct {
	client   *Client
	fallback *TemplateLabeler
	logger   *logger.Logger
}

func NewLLMLabeler(client *Client, log *logger.Logger) *LLMLabeler {
	return &LLMLabeler{
		client:   client,
		fallback: NewTemplateLabeler(),
		logger:   log,
	}
}

type combinedLabelResponse struct {
	Title         string           `json:"title"`
	Summary       string           `json:"summary"`
	EvidenceHints []string         `json:"evidenceHints"`
	Ideas         []contracts.Idea `json:"ideas"`
}

type actionPackBatch struct {
	Packs []contracts.ActionPack `json:"packs"`
}

func (l *LLMLabeler) LabelNarrative(ctx context.Context, clusterDocs []string) (contracts.NarrativeLabel, []contracts.Idea, error) {
	var userPrompt strings.Builder
	userPrompt.WriteString("Cluster documents:\n")
	for i, doc := range clusterDocs {
		fmt.Fprintf(&userPrompt, "\n[%d] %s\n", i+1, doc)
	}

	raw, err := l.client.Complete(ctx, labelSystemPrompt, userPrompt.String())
	if err != nil {
		l.logger.WithError(err).Warn("LLM labeling failed, using template fallback")
		return l.fallback.LabelNarrative(ctx, clusterDocs)
	}

	var combined combinedLabelResponse
	if err := decodeJSON(raw, &combined); err != nil || combined.Title == "" {
		l.logger.WithError(err).Warn("LLM label parse failed, trying label-only layout")
		// Some models drop the ideas array; salvage the label alone.
		var labelOnly contracts.NarrativeLabel
		if err := decodeJSON(raw, &labelOnly); err != nil || labelOnly.Title == "" {
			return l.fallback.LabelNarrative(ctx, clusterDocs)
		}
		return labelOnly, templateIdeas(labelOnly), nil
	}

	label := contracts.NarrativeLabel{
		Title:         combined.Title,
		Summary:       combined.Summary,
		EvidenceHints: combined.EvidenceHints,
	}
	ideas := combined.Ideas
	if len(ideas) == 0 {
		ideas = templateIdeas(label)
	}
	return label, ideas, nil
}

func (l *LLMLabeler) ActionPacks(ctx context.Context, ideas []contracts.Idea, narrativeTitle string) ([]contracts.ActionPack, error) {
	var ideaList strings.Builder
	for i, idea := range ideas {
		fmt.Fprintf(&ideaList, "[Idea %d] %s\nPitch: %s\nTarget: %s\nMVP: %s\n\n",
			i+1, idea.Title, idea.Pitch, idea.TargetUser, idea.MVPScope)
	}

	system := fmt.Sprintf(packSystemPrompt, len(ideas), narrativeTitle, len(ideas))
	user := fmt.Sprintf("Narrative: %s\n\nIdeas:\n%s", narrativeTitle, ideaList.String())

	raw, err := l.client.Complete(ctx, system, user)
	if err != nil {
		l.logger.WithError(err).Warn("LLM action pack call failed, using templates")
		return l.fallback.ActionPacks(ctx, ideas, narrativeTitle)
	}

	var batch actionPackBatch
	if err := decodeJSON(raw, &batch); err != nil || len(batch.Packs) == 0 {
		l.logger.WithError(err).Warn("LLM action pack parse failed, using templates")
		return l.fallback.ActionPacks(ctx, ideas, narrativeTitle)
	}

	// The model may return fewer packs than ideas; pad with templates.
	for len(batch.Packs) < len(ideas) {
		batch.Packs = append(batch.Packs, templateActionPack(ideas[len(batch.Packs)], narrativeTitle))
	}
	return batch.Packs[:len(ideas)], nil
}
