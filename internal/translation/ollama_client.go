package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"rpgm-translator/internal/textutil"

	"github.com/rs/zerolog/log"
)

// OllamaClient handles translation requests via an Ollama-compatible chat API.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float64
	maxRetries  int
	backoff     time.Duration
	prompts     *PromptBuilder
	httpClient  *http.Client
}

// ClientOption customizes an OllamaClient.
type ClientOption func(*OllamaClient)

// WithRetry sets the number of attempts and the base backoff between them.
func WithRetry(attempts int, backoff time.Duration) ClientOption {
	return func(c *OllamaClient) {
		if attempts > 0 {
			c.maxRetries = attempts
		}
		c.backoff = backoff
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(c *OllamaClient) { c.temperature = t }
}

// NewOllamaClient creates a new translation client for baseURL.
func NewOllamaClient(baseURL, model string, timeout time.Duration, opts ...ClientOption) *OllamaClient {
	c := &OllamaClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: 0.3,
		maxRetries:  3,
		backoff:     2 * time.Second,
		prompts:     NewPromptBuilder(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Ollama API request/response types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
	Error           string      `json:"error,omitempty"`
}

// Translate sends a translation request and returns the cleaned translation.
func (oc *OllamaClient) Translate(ctx context.Context, req Request) (string, error) {
	reqBody := chatRequest{
		Model: oc.model,
		Messages: []chatMessage{
			{Role: "system", Content: oc.prompts.SystemPrompt(req.SourceLang, req.TargetLang)},
			{Role: "user", Content: oc.prompts.UserPrompt(req)},
		},
		Stream:  false,
		Options: &chatOptions{Temperature: oc.temperature},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal translation request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < oc.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * oc.backoff
			log.Warn().Int("attempt", attempt+1).Dur("backoff", backoff).Err(lastErr).Msg("Retrying translation")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := oc.doRequest(ctx, bodyBytes)
		if err == nil {
			if cleaned := cleanResponse(result, req.Text); cleaned != "" {
				return cleaned, nil
			}
			err = fmt.Errorf("%w: model reply %q", ErrEmptyTranslation, textutil.Truncate(result, 60))
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var pe *ProviderError
		if errors.As(err, &pe) && !pe.Retryable() {
			return "", err
		}
	}

	return "", fmt.Errorf("translation failed after %d attempts: %w", oc.maxRetries, lastErr)
}

func (oc *OllamaClient) doRequest(ctx context.Context, bodyBytes []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oc.baseURL+"/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := oc.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if apiResp.Error != "" {
		return "", fmt.Errorf("API error: %s", apiResp.Error)
	}
	if strings.TrimSpace(apiResp.Message.Content) == "" {
		return "", ErrEmptyTranslation
	}

	log.Debug().
		Int("prompt_tokens", apiResp.PromptEvalCount).
		Int("output_tokens", apiResp.EvalCount).
		Msg("Translation complete")

	return apiResp.Message.Content, nil
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

var quotePairs = [][2]string{{`"`, `"`}, {"“", "”"}, {"「", "」"}, {"'", "'"}}

// cleanResponse drops reasoning blocks and quotes the model wrapped around
// its answer. Quotes that the source itself carries are kept.
func cleanResponse(resp, source string) string {
	out := strings.TrimSpace(thinkBlock.ReplaceAllString(resp, ""))
	src := strings.TrimSpace(source)
	for _, q := range quotePairs {
		if strings.HasPrefix(src, q[0]) && strings.HasSuffix(src, q[1]) {
			continue
		}
		if len(out) >= len(q[0])+len(q[1]) && strings.HasPrefix(out, q[0]) && strings.HasSuffix(out, q[1]) {
			out = strings.TrimSpace(out[len(q[0]) : len(out)-len(q[1])])
			break
		}
	}
	return out
}
