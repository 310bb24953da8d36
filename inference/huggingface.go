package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/postpulse/backend/analyzer"
)

// Default Hugging Face Inference API endpoints.
const (
	DefaultCaptionURL  = "https://api-inference.huggingface.co/models/Salesforce/blip-image-captioning-large"
	DefaultClassifyURL = "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"
)

// HFConfig configures the Hugging Face client.
type HFConfig struct {
	APIKey      string
	CaptionURL  string
	ClassifyURL string
	Timeout     time.Duration
}

// HFClient calls the Hugging Face Inference API for image captioning and
// zero-shot text classification. Each call is a single attempt with a
// bounded timeout; resilience lives in the caller's fallback path.
type HFClient struct {
	apiKey      string
	captionURL  string
	classifyURL string
	client      *http.Client
}

// NewHFClient creates a client with connection pooling tuned for
// repeated calls to the same two hosts.
func NewHFClient(cfg HFConfig) *HFClient {
	if cfg.CaptionURL == "" {
		cfg.CaptionURL = DefaultCaptionURL
	}
	if cfg.ClassifyURL == "" {
		cfg.ClassifyURL = DefaultClassifyURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HFClient{
		apiKey:      cfg.APIKey,
		captionURL:  cfg.CaptionURL,
		classifyURL: cfg.ClassifyURL,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

type captionResponse struct {
	GeneratedText string `json:"generated_text"`
}

type hfErrorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Caption generates a natural-language description of the image bytes.
func (c *HFClient) Caption(ctx context.Context, image []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.captionURL, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("build caption request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	// The API returns either a one-element array or a bare object.
	var list []captionResponse
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 && list[0].GeneratedText != "" {
		return list[0].GeneratedText, nil
	}
	var single captionResponse
	if err := json.Unmarshal(body, &single); err == nil && single.GeneratedText != "" {
		return single.GeneratedText, nil
	}
	return "", fmt.Errorf("caption response missing generated_text: %s", truncateBody(body))
}

type classifyRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
}

type classifyParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

// Classify runs single-label zero-shot classification of text over the
// candidate label set.
func (c *HFClient) Classify(ctx context.Context, text string, labels []string) (analyzer.Classification, error) {
	payload, err := json.Marshal(classifyRequest{
		Inputs:     text,
		Parameters: classifyParameters{CandidateLabels: labels},
	})
	if err != nil {
		return analyzer.Classification{}, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.classifyURL, bytes.NewReader(payload))
	if err != nil {
		return analyzer.Classification{}, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return analyzer.Classification{}, err
	}

	var cls analyzer.Classification
	if err := json.Unmarshal(body, &cls); err != nil {
		return analyzer.Classification{}, fmt.Errorf("decode classify response: %w", err)
	}
	return cls, nil
}

// do executes the request and translates HTTP-level failures into the
// package's error taxonomy.
func (c *HFClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusServiceUnavailable:
		// Cold-started models answer 503 with an estimated warmup time.
		var hfErr hfErrorResponse
		if json.Unmarshal(body, &hfErr) == nil &&
			(hfErr.EstimatedTime > 0 || strings.Contains(strings.ToLower(hfErr.Error), "loading")) {
			return nil, fmt.Errorf("%w: %s", ErrModelLoading, hfErr.Error)
		}
		return nil, fmt.Errorf("service unavailable: %s", truncateBody(body))
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return nil, ErrPayloadTooLarge
	case resp.StatusCode == http.StatusUnsupportedMediaType || resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, truncateBody(body))
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncateBody(body))
	}
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
