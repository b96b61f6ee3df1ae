// Package inference talks to a Hugging Face Inference API compatible endpoint.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/abhijeet6401/newslet/internal/analyzer"
	"github.com/abhijeet6401/newslet/internal/config"
	"github.com/abhijeet6401/newslet/pkg/httpclient"
)

const pingText = "Markets were steady today."

// ErrEmptyResult is returned when the service answers without a usable result.
var ErrEmptyResult = errors.New("inference returned no result")

type request struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type summaryResponse struct {
	SummaryText string `json:"summary_text"`
}

// Client implements analyzer.Capability.
type Client struct {
	http    httpclient.Client
	baseURL string
	token   string
	models  analyzer.ModelNames
}

// New builds a Client from cfg. A nil http client gets a resty client bounded
// by cfg.Timeout.
func New(cfg config.InferenceConfig, client httpclient.Client) *Client {
	if client == nil {
		client = httpclient.NewRestyClient(cfg.Timeout)
	}
	return &Client{
		http:    client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   strings.TrimSpace(cfg.Token),
		models: analyzer.ModelNames{
			Sentiment:  cfg.SentimentModel,
			Classifier: cfg.ClassifierModel,
			Summarizer: cfg.SummaryModel,
		},
	}
}

func (c *Client) Models() analyzer.ModelNames { return c.models }

// Ping runs a tiny sentiment call.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.Sentiment(ctx, pingText)
	return err
}

// Sentiment returns the highest scoring label.
func (c *Client) Sentiment(ctx context.Context, text string) (string, float64, error) {
	body, err := c.post(ctx, c.models.Sentiment, request{Inputs: text})
	if err != nil {
		return "", 0, err
	}

	// Text classification answers [[{label,score}...]] for one input; some
	// deployments flatten it to [{label,score}...].
	var nested [][]labelScore
	var flat []labelScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		flat = nested[0]
	} else if err := json.Unmarshal(body, &flat); err != nil {
		return "", 0, fmt.Errorf("decode sentiment response: %w", err)
	}
	if len(flat) == 0 {
		return "", 0, ErrEmptyResult
	}

	best := flat[0]
	for _, ls := range flat[1:] {
		if ls.Score > best.Score {
			best = ls
		}
	}
	return best.Label, best.Score, nil
}

// Classify runs zero-shot classification and returns labels best first.
func (c *Client) Classify(ctx context.Context, text string, labels []string) ([]string, error) {
	body, err := c.post(ctx, c.models.Classifier, request{
		Inputs:     text,
		Parameters: map[string]any{"candidate_labels": labels},
	})
	if err != nil {
		return nil, err
	}

	var resp zeroShotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode classification response: %w", err)
	}
	if len(resp.Labels) == 0 {
		return nil, ErrEmptyResult
	}
	return resp.Labels, nil
}

// Summarize returns an abstractive summary of text.
func (c *Client) Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	body, err := c.post(ctx, c.models.Summarizer, request{
		Inputs: text,
		Parameters: map[string]any{
			"max_length": maxLen,
			"min_length": minLen,
			"do_sample":  false,
		},
	})
	if err != nil {
		return "", err
	}

	var resp []summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode summary response: %w", err)
	}
	if len(resp) == 0 || strings.TrimSpace(resp[0].SummaryText) == "" {
		return "", ErrEmptyResult
	}
	return resp[0].SummaryText, nil
}

func (c *Client) post(ctx context.Context, model string, payload request) ([]byte, error) {
	if model == "" {
		return nil, errors.New("model name is empty")
	}
	payload.Options = map[string]any{"wait_for_model": true}

	headers := map[string]string{"Accept": "application/json"}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}

	resp, err := c.http.PostJSON(ctx, c.baseURL+"/models/"+model, headers, payload)
	if err != nil {
		return nil, fmt.Errorf("call model %s: %w", model, err)
	}
	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, fmt.Errorf("model %s returned status %d: %s", model, resp.StatusCode(), snippet)
	}
	return resp.Body(), nil
}

var _ analyzer.Capability = (*Client)(nil)
