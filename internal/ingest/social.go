package ingest

import (
	"context"
	"encoding/xml"
	"io"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/config"
	"github.com/hunterlabs/hunter/pkg/httputil"
	"github.com/hunterlabs/hunter/pkg/logger"
)

const (
	maxSnippetsPerEntity = 8
	snippetTextLimit     = 200
	feedContentLimit     = 500
)

// defaultFeeds are public ecosystem RSS/Atom feeds; no API keys needed.
var defaultFeeds = []string{
	"https://solana.com/news/rss.xml",
	"https://www.theblock.co/rss/all",
	"https://cointelegraph.com/rss",
	"https://www.coindesk.com/arc/outboundfeeds/rss/",
	"https://decrypt.co/feed",
	"https://blockworks.co/rss",
	"https://messari.io/rss",
}

// SocialIngestor derives mention counts and snippets from public RSS feeds.
type SocialIngestor struct {
	http   *httputil.Client
	logger *logger.Logger
	feeds  []string
}

func NewSocialIngestor(cfg *config.Config, client *httputil.Client, log *logger.Logger) *SocialIngestor {
	feeds := cfg.Social.FeedURLs
	if len(feeds) == 0 {
		feeds = defaultFeeds
	}
	return &SocialIngestor{http: client, logger: log, feeds: feeds}
}

// SocialResult is one entity's social metrics plus its key for merging.
type SocialResult struct {
	EntityKey string
	Signal    contracts.SocialSignal
}

type feedItem struct {
	Title     string
	Link      string
	Published time.Time
	Content   string
}

type rssDoc struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDoc struct {
	Entries []struct {
		Title string `xml:"title"`
		Link  struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Published string `xml:"published"`
		Updated   string `xml:"updated"`
		Content   string `xml:"content"`
		Summary   string `xml:"summary"`
	} `xml:"entry"`
}

// stripHTML extracts plain text from HTML-encoded feed content.
func stripHTML(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(doc.Text())
}

func parsePubDate(s string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339, "Mon, 2 Jan 2006 15:04:05 -0700"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseFeed(data []byte) []feedItem {
	var items []feedItem

	var rss rssDoc
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		for _, it := range rss.Channel.Items {
			if it.Title == "" {
				continue
			}
			content := stripHTML(it.Description)
			if len(content) > feedContentLimit {
				content = content[:feedContentLimit]
			}
			items = append(items, feedItem{
				Title:     stripHTML(it.Title),
				Link:      strings.TrimSpace(it.Link),
				Published: parsePubDate(it.PubDate),
				Content:   content,
			})
		}
		return items
	}

	// Atom fallback
	var atom atomDoc
	if err := xml.Unmarshal(data, &atom); err == nil {
		for _, e := range atom.Entries {
			if e.Title == "" {
				continue
			}
			published := e.Published
			if published == "" {
				published = e.Updated
			}
			content := e.Content
			if content == "" {
				content = e.Summary
			}
			content = stripHTML(content)
			if len(content) > feedContentLimit {
				content = content[:feedContentLimit]
			}
			items = append(items, feedItem{
				Title:     stripHTML(e.Title),
				Link:      e.Link.Href,
				Published: parsePubDate(published),
				Content:   content,
			})
		}
	}

	return items
}

func (s *SocialIngestor) fetchFeed(ctx context.Context, feedURL string) []feedItem {
	resp, err := s.http.Get(ctx, feedURL)
	if err != nil {
		s.logger.WithError(err).WithField("feed", feedURL).Warn("Feed fetch failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	return parseFeed(data)
}

// classifySnippet buckets a mention with keyword heuristics.
func classifySnippet(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "bug", "issue", "broken", "error", "problem"):
		return contracts.SnippetPainPoint
	case containsAny(lower, "?", "how to", "anyone know"):
		return contracts.SnippetQuestion
	case containsAny(lower, "launch", "release", "announce", "introducing", "upgrade"):
		return contracts.SnippetAnnouncement
	case containsAny(lower, "🚀", "moon", "bullish", "lfg", "alpha"):
		return contracts.SnippetHype
	default:
		return contracts.SnippetDiscussion
	}
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// mentionsEntity checks whether a feed item refers to the entity by label,
// key, or any long word of the label.
func mentionsEntity(item feedItem, entity TrackedEntity) bool {
	searchText := strings.ToLower(item.Title + " " + item.Content)
	terms := []string{strings.ToLower(entity.Label), strings.ToLower(entity.Key)}
	for _, word := range strings.FieldsFunc(strings.ToLower(entity.Label), func(r rune) bool {
		return r == ' ' || r == '-'
	}) {
		if len(word) > 3 {
			terms = append(terms, word)
		}
	}
	return containsAny(searchText, terms...)
}

func safeHostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}

// Ingest fetches all feeds once, then matches items to entities.
func (s *SocialIngestor) Ingest(ctx context.Context, entities []TrackedEntity, periodStart, periodEnd time.Time) []SocialResult {
	var allItems []feedItem
	for _, feed := range s.feeds {
		items := s.fetchFeed(ctx, feed)
		s.logger.WithFields(map[string]interface{}{
			"feed":  safeHostname(feed),
			"items": len(items),
		}).Debug("Feed fetched")
		allItems = append(allItems, items...)
	}

	baselineStart := periodStart.Add(-periodEnd.Sub(periodStart))

	var periodItems, baselineItems []feedItem
	for _, item := range allItems {
		if item.Published.IsZero() {
			continue
		}
		switch {
		case !item.Published.Before(periodStart) && !item.Published.After(periodEnd):
			periodItems = append(periodItems, item)
		case !item.Published.Before(baselineStart) && item.Published.Before(periodStart):
			baselineItems = append(baselineItems, item)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"total":    len(allItems),
		"period":   len(periodItems),
		"baseline": len(baselineItems),
	}).Info("Social feed items collected")

	results := make([]SocialResult, 0, len(entities))
	for _, entity := range entities {
		results = append(results, SocialResult{
			EntityKey: entity.Key,
			Signal:    buildSocialSignal(entity, periodItems, baselineItems),
		})
	}
	return results
}

func buildSocialSignal(entity TrackedEntity, periodItems, baselineItems []feedItem) contracts.SocialSignal {
	var current, baseline []feedItem
	for _, item := range periodItems {
		if mentionsEntity(item, entity) {
			current = append(current, item)
		}
	}
	for _, item := range baselineItems {
		if mentionsEntity(item, entity) {
			baseline = append(baseline, item)
		}
	}

	engagement := func(items []feedItem) float64 {
		var sum float64
		for _, m := range items {
			sum += math.Min(float64(len(m.Content)), feedContentLimit) / 100
		}
		return sum
	}

	var snippets []contracts.Snippet
	for i, item := range current {
		if i >= maxSnippetsPerEntity {
			break
		}
		text := item.Content
		if len(text) > snippetTextLimit {
			text = text[:snippetTextLimit]
		}
		snippets = append(snippets, contracts.Snippet{
			Text:           item.Title + ": " + text,
			URL:            item.Link,
			Source:         safeHostname(item.Link),
			Classification: classifySnippet(item.Title + " " + item.Content),
		})
	}

	return contracts.SocialSignal{
		MentionsCount:           float64(len(current)),
		MentionsCountBaseline:   float64(len(baseline)),
		UniqueAuthors:           float64(uniqueLinks(current)),
		UniqueAuthorsBaseline:   float64(uniqueLinks(baseline)),
		EngagementScore:         engagement(current),
		EngagementScoreBaseline: engagement(baseline),
		Snippets:                snippets,
	}
}

func uniqueLinks(items []feedItem) int {
	links := make(map[string]struct{}, len(items))
	for _, item := range items {
		links[item.Link] = struct{}{}
	}
	return len(links)
}
