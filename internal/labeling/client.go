package labeling

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hunterlabs/hunter/pkg/config"
	"github.com/hunterlabs/hunter/pkg/httputil"
	"github.com/hunterlabs/hunter/pkg/logger"
)

const (
	baseRetryDelay = 1500 * time.Millisecond
	maxTokens      = 4096
)

// Client talks to an OpenAI-compatible chat completions endpoint (Moonshot
// Kimi). Concurrency across all callers is capped by a weighted semaphore;
// 429 and 5xx responses retry with exponential backoff, honoring Retry-After.
type Client struct {
	http        *httputil.Client
	logger      *logger.Logger
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxRetries  int
	sem         *semaphore.Weighted
	sleep       func(time.Duration)
}

func NewClient(cfg *config.Config, hc *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		http:        hc.DisableRetry(), // retry handled here, with Retry-After support
		logger:      log,
		apiKey:      cfg.LLM.APIKey,
		model:       cfg.LLM.Model,
		baseURL:     cfg.LLM.BaseURL,
		temperature: cfg.LLM.Temperature,
		maxRetries:  cfg.LLM.MaxRetries,
		sem:         semaphore.NewWeighted(int64(cfg.LLM.MaxConcurrent)),
		sleep:       time.Sleep,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion and returns the raw assistant content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		content, retryable, err := c.callOnce(ctx, systemPrompt, userPrompt, attempt)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable || attempt == c.maxRetries-1 {
			break
		}
	}
	return "", fmt.Errorf("llm call failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) callOnce(ctx context.Context, systemPrompt, userPrompt string, attempt int) (content string, retryable bool, err error) {
	body := chatRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	resp, err := c.http.PostJSONWithHeaders(ctx, c.baseURL+"/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		c.backoff(attempt, 0)
		return "", true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.logger.WithFields(map[string]interface{}{
			"status":  resp.StatusCode,
			"attempt": attempt + 1,
		}).Warn("LLM endpoint throttled, backing off")
		c.backoff(attempt, retryAfter)
		return "", true, fmt.Errorf("llm status %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("llm status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, fmt.Errorf("decode llm response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", false, fmt.Errorf("empty llm response")
	}
	return parsed.Choices[0].Message.Content, false, nil
}

func (c *Client) backoff(attempt int, retryAfter time.Duration) {
	delay := baseRetryDelay * (1 << attempt)
	if retryAfter > delay {
		delay = retryAfter
	}
	c.sleep(delay)
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}
