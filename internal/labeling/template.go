package labeling

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hunterlabs/hunter/internal/contracts"
)

// TemplateLabeler produces deterministic labels and ideas without any
// network access. It backs demo mode and serves as the fallback when live
// LLM calls exhaust their retries.
type TemplateLabeler struct{}

func NewTemplateLabeler() *TemplateLabeler {
	return &TemplateLabeler{}
}

func (t *TemplateLabeler) LabelNarrative(ctx context.Context, clusterDocs []string) (contracts.NarrativeLabel, []contracts.Idea, error) {
	label := templateLabel(clusterDocs)
	return label, templateIdeas(label), nil
}

func (t *TemplateLabeler) ActionPacks(ctx context.Context, ideas []contracts.Idea, narrativeTitle string) ([]contracts.ActionPack, error) {
	packs := make([]contracts.ActionPack, len(ideas))
	for i, idea := range ideas {
		packs[i] = templateActionPack(idea, narrativeTitle)
	}
	return packs, nil
}

func templateLabel(docs []string) contracts.NarrativeLabel {
	var keywords []string
	for _, word := range strings.Fields(strings.Join(docs, " ")) {
		if len(word) > 4 {
			keywords = append(keywords, word)
		}
		if len(keywords) == 3 {
			break
		}
	}

	lead := "Solana"
	if len(keywords) > 0 {
		lead = keywords[0]
	}

	return contracts.NarrativeLabel{
		Title: fmt.Sprintf("Emerging %s Narrative", lead),
		Summary: fmt.Sprintf(
			"A cluster of %d related signals indicate growing momentum in %s. Developer activity and on-chain metrics suggest early-stage adoption with potential for significant growth in the coming quarter.",
			len(docs), strings.Join(keywords, ", ")),
		EvidenceHints: []string{
			"Rising transaction counts in this category",
			"Multiple new repos targeting this use case",
			"Social mentions accelerating week-over-week",
		},
	}
}

func templateIdeas(label contracts.NarrativeLabel) []contracts.Idea {
	return []contracts.Idea{
		{
			Title:      label.Title + " — SDK & Tooling",
			Pitch:      fmt.Sprintf("Developer tooling that simplifies building on top of the %s trend.", label.Title),
			TargetUser: "Solana protocol developers",
			MVPScope:   "TypeScript SDK + CLI for the core operations, with example integrations",
			WhyNow:     "The narrative is early (high novelty) with clear developer demand.",
			Validation: "GitHub issues and social pain points confirm tooling gap.",
		},
		{
			Title:      label.Title + " — Analytics Dashboard",
			Pitch:      fmt.Sprintf("Real-time analytics dashboard tracking the key metrics of %s.", label.Title),
			TargetUser: "Traders, analysts, and protocol teams",
			MVPScope:   "Web dashboard with 3-5 key charts and alert system",
			WhyNow:     "No existing tool tracks this specific narrative in real-time.",
			Validation: "Multiple requests for better visibility into this area on forums and social.",
		},
		{
			Title:      label.Title + " — Integration Layer",
			Pitch:      fmt.Sprintf("Middleware that connects existing protocols to the emerging %s infrastructure.", label.Title),
			TargetUser: "Existing DeFi protocols seeking to adopt new primitives",
			MVPScope:   "Adapter contracts + SDK bridging legacy accounts to new architecture",
			WhyNow:     "First-mover advantage before the ecosystem standardizes.",
			Validation: "Dependency tracking shows accelerating adoption of underlying crates.",
		},
	}
}

func templateActionPack(idea contracts.Idea, narrativeTitle string) contracts.ActionPack {
	deps := map[string]interface{}{
		"runtime":        "solana",
		"framework":      "anchor",
		"frontend":       "next.js",
		"database":       "postgresql",
		"key_crates":     []string{"anchor-lang ^0.30", "solana-program ^1.18", "spl-token ^4.0"},
		"npm_packages":   []string{"@solana/web3.js ^1.91", "@coral-xyz/anchor ^0.30", "next ^14", "prisma ^5"},
		"infrastructure": []string{"vercel", "neon-postgres", "helius-rpc"},
	}
	depsJSON, _ := json.MarshalIndent(deps, "", "  ")

	return contracts.ActionPack{
		SpecMD: fmt.Sprintf(`# %s

## Overview
%s

## Target User
%s

## Problem Statement
The %s narrative reveals a clear gap in the ecosystem. %s

## Proposed Solution
%s

## Success Metrics
- 100+ weekly active developers within 3 months
- Integration with 3+ major Solana protocols
- Positive NPS from beta users

## Non-Goals (v1)
- Mobile app
- Cross-chain support
- Token launch
`, idea.Title, idea.Pitch, idea.TargetUser, narrativeTitle, idea.Validation, idea.MVPScope),
		TechMD: fmt.Sprintf(`# Technical Plan — %s

## Architecture
- **Runtime:** Solana (Anchor framework)
- **Frontend:** Next.js + TypeScript
- **Indexer:** Helius webhooks / geyser plugin
- **Database:** PostgreSQL + pgvector for semantic search

## Key Components
1. **Smart Contracts** — Anchor programs for core logic
2. **SDK** — TypeScript SDK published to npm
3. **API** — REST + WebSocket for real-time data
4. **Dashboard** — Next.js app with Tailwind

## Security Considerations
- Program upgrade authority managed by multisig
- Rate limiting on all public endpoints
- Input validation at every boundary

## Testing Strategy
- Unit tests for all program instructions
- Integration tests on devnet
- Load testing before mainnet
`, idea.Title),
		MilestonesMD: fmt.Sprintf(`# Milestones — %s

## Phase 1: Foundation (Weeks 1-3)
- [ ] Set up monorepo + CI/CD
- [ ] Implement core Anchor program
- [ ] Write unit tests (90%%+ coverage)
- [ ] Deploy to devnet

## Phase 2: SDK + API (Weeks 4-6)
- [ ] TypeScript SDK with docs
- [ ] REST API with authentication
- [ ] Indexer for on-chain events
- [ ] Integration tests

## Phase 3: Dashboard + Launch (Weeks 7-9)
- [ ] Frontend dashboard
- [ ] Beta testing with 5-10 partners
- [ ] Security audit
- [ ] Mainnet deployment

## Phase 4: Growth (Weeks 10-12)
- [ ] Documentation + tutorials
- [ ] Community outreach
- [ ] Feature iteration based on feedback
`, idea.Title),
		DepsJSON: string(depsJSON),
	}
}
