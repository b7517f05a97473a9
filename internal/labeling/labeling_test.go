package labeling

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/config"
	"github.com/hunterlabs/hunter/pkg/httputil"
	"github.com/hunterlabs/hunter/pkg/logger"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no lang", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading prose", `Here is the JSON: {"a": 1}`, `{"a": 1}`},
		{"trailing prose", `{"a": 1} Hope that helps!`, `{"a": 1}`},
		{"array", `The result: [1, 2] done`, `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}

func TestTemplateLabeler(t *testing.T) {
	tl := NewTemplateLabeler()
	docs := []string{"jupiter defi aggregator momentum", "raydium liquidity growth"}

	label, ideas, err := tl.LabelNarrative(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, "Emerging jupiter Narrative", label.Title)
	assert.Contains(t, label.Summary, "2 related signals")
	assert.Len(t, label.EvidenceHints, 3)
	require.Len(t, ideas, 3)
	for _, idea := range ideas {
		assert.Contains(t, idea.Title, label.Title)
		assert.NotEmpty(t, idea.Pitch)
		assert.NotEmpty(t, idea.Validation)
	}
}

func TestTemplateLabelerEmptyDocs(t *testing.T) {
	tl := NewTemplateLabeler()
	label, _, err := tl.LabelNarrative(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Emerging Solana Narrative", label.Title)
}

func TestTemplateActionPacks(t *testing.T) {
	tl := NewTemplateLabeler()
	ideas := []contracts.Idea{{Title: "Fee Market SDK", Pitch: "p", TargetUser: "u", MVPScope: "m", Validation: "v"}}

	packs, err := tl.ActionPacks(context.Background(), ideas, "Fee Markets")
	require.NoError(t, err)
	require.Len(t, packs, 1)

	assert.Contains(t, packs[0].SpecMD, "# Fee Market SDK")
	assert.Contains(t, packs[0].SpecMD, "Fee Markets narrative")
	assert.Contains(t, packs[0].MilestonesMD, "- [ ]")

	var deps map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(packs[0].DepsJSON), &deps))
	assert.Equal(t, "solana", deps["runtime"])
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := &config.Config{
		LogLevel: "error",
		LLM: config.LLMConfig{
			APIKey:        "sk-test",
			Model:         "kimi-k2-turbo-preview",
			BaseURL:       baseURL,
			MaxConcurrent: 3,
			MaxRetries:    3,
			Temperature:   0.4,
		},
	}
	log := logger.NewNop()
	c := NewClient(cfg, httputil.New(cfg, log), log)
	c.sleep = func(time.Duration) {}
	return c
}

func llmResponse(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(b)
}

func TestLLMLabelerParsesCombinedResponse(t *testing.T) {
	combined := `{
	  "title": "Solana Fee Markets Heat Up",
	  "summary": "Local fee markets are becoming the norm.",
	  "evidenceHints": ["tx growth", "new repos"],
	  "ideas": [
	    {"title": "Fee Simulator", "pitch": "p", "targetUser": "u", "mvpScope": "m", "whyNow": "w", "validation": "v"}
	  ]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "kimi-k2-turbo-preview", req.Model)
		require.Len(t, req.Messages, 2)
		fmt.Fprint(w, llmResponse("```json\n"+combined+"\n```"))
	}))
	defer server.Close()

	labeler := NewLLMLabeler(newTestClient(t, server.URL), logger.NewNop())
	label, ideas, err := labeler.LabelNarrative(context.Background(), []string{"doc one", "doc two"})
	require.NoError(t, err)

	assert.Equal(t, "Solana Fee Markets Heat Up", label.Title)
	assert.Equal(t, []string{"tx growth", "new repos"}, label.EvidenceHints)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Fee Simulator", ideas[0].Title)
}

func TestLLMLabelerSalvagesLabelOnly(t *testing.T) {
	labelOnly := `{"title": "Restaking Arrives", "summary": "s", "evidenceHints": ["e"]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, llmResponse(labelOnly))
	}))
	defer server.Close()

	labeler := NewLLMLabeler(newTestClient(t, server.URL), logger.NewNop())
	label, ideas, err := labeler.LabelNarrative(context.Background(), []string{"doc"})
	require.NoError(t, err)

	assert.Equal(t, "Restaking Arrives", label.Title)
	// Ideas backfilled from templates
	require.Len(t, ideas, 3)
	assert.Contains(t, ideas[0].Title, "Restaking Arrives")
}

func TestLLMLabelerFallsBackOnGarbage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, llmResponse("I could not produce JSON, sorry."))
	}))
	defer server.Close()

	labeler := NewLLMLabeler(newTestClient(t, server.URL), logger.NewNop())
	label, ideas, err := labeler.LabelNarrative(context.Background(), []string{"alpha beta gamma delta"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(label.Title, "Emerging"))
	assert.Len(t, ideas, 3)
}

func TestLLMLabelerFallsBackAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	labeler := NewLLMLabeler(newTestClient(t, server.URL), logger.NewNop())
	label, _, err := labeler.LabelNarrative(context.Background(), []string{"doc"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(label.Title, "Emerging"))
	assert.Equal(t, int32(3), calls.Load(), "one call per retry attempt")
}

func TestLLMClientSucceedsFirstTry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, llmResponse("first try"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	content, err := client.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "first try", content)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLLMClientRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, llmResponse("recovered"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	content, err := client.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "recovered", content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLLMClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLLMActionPacksPadsShortBatches(t *testing.T) {
	batch := `{"packs": [{"specMd": "spec", "techMd": "tech", "milestonesMd": "miles", "depsJson": "{}"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, llmResponse(batch))
	}))
	defer server.Close()

	labeler := NewLLMLabeler(newTestClient(t, server.URL), logger.NewNop())
	ideas := []contracts.Idea{
		{Title: "One"},
		{Title: "Two"},
	}
	packs, err := labeler.ActionPacks(context.Background(), ideas, "Narrative")
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "spec", packs[0].SpecMD)
	assert.Contains(t, packs[1].SpecMD, "# Two")
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2026 07:28:00 GMT"))
}
