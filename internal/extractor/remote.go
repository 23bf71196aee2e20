package extractor

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"skillalign/internal/domain"
)

// RemoteConfig configures a RemoteAnnotator.
type RemoteConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RetryCount    int
	RetryWaitTime time.Duration
}

// RemoteAnnotator calls an HTTP annotation service that speaks the SkillNER
// result shape: POST /annotate {"text": ...} -> {"results": {...}}.
type RemoteAnnotator struct {
	client *resty.Client
}

type annotateRequest struct {
	Text string `json:"text"`
}

type annotateResponse struct {
	Text    string             `json:"text"`
	Results domain.Annotations `json:"results"`
}

// NewRemoteAnnotator creates a client for the annotation service at cfg.BaseURL.
func NewRemoteAnnotator(cfg RemoteConfig) *RemoteAnnotator {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryWaitTime == 0 {
		cfg.RetryWaitTime = time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetRetryMaxWaitTime(4*cfg.RetryWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &RemoteAnnotator{client: client}
}

// Annotate sends text to the annotation service.
func (a *RemoteAnnotator) Annotate(text string) (domain.Annotations, error) {
	var result annotateResponse
	resp, err := a.client.R().
		SetBody(annotateRequest{Text: text}).
		SetResult(&result).
		Post("/annotate")
	if err != nil {
		return domain.Annotations{}, fmt.Errorf("annotate request: %w", err)
	}
	if resp.IsError() {
		return domain.Annotations{}, fmt.Errorf("annotator returned %s: %s", resp.Status(), resp.String())
	}
	return result.Results, nil
}
