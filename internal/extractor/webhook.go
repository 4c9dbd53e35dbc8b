package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lucosms-backend/internal/phone"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookPayload is posted to the extraction webhook.
type WebhookPayload struct {
	Prompt     string   `json:"prompt"`
	Candidates []string `json:"candidates"`
}

// WebhookExtractor posts the batch to an HTTP endpoint (an automation workflow or a
// model gateway) and reads canonical numbers out of whatever text comes back.
type WebhookExtractor struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

func NewWebhookExtractor(url string, timeout time.Duration, logger *zap.Logger) *WebhookExtractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookExtractor{client: client, url: url, logger: logger}
}

func (e *WebhookExtractor) ExtractCandidateNumbers(ctx context.Context, candidates []string) ([]string, error) {
	if e.url == "" {
		return nil, fmt.Errorf("failed to validate numbers: extractor URL is not configured")
	}

	payload := WebhookPayload{
		Prompt:     BuildPrompt(candidates),
		Candidates: candidates,
	}

	start := time.Now()
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(e.url)
	if err != nil {
		e.logger.Error("Extraction webhook call failed", zap.Error(err))
		return nil, fmt.Errorf("failed to validate numbers: %w", err)
	}
	if resp.IsError() {
		e.logger.Error("Extraction webhook returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("failed to validate numbers: API request failed: %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("failed to validate numbers: %w", ErrEmptyReply)
	}
	text := replyBody(body)
	if text == "" {
		// Unknown reply shape; numbers are matched anywhere in the body.
		text = string(body)
	}

	numbers := phone.FindCanonical(text)
	e.logger.Info("Extraction webhook finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("numbers", len(numbers)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return numbers, nil
}

// replyBody returns the text field of a JSON reply, or the raw body when it is not JSON.
func replyBody(body []byte) string {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	return extractText(data)
}

func extractText(data interface{}) string {
	switch v := data.(type) {
	case []interface{}:
		if len(v) > 0 {
			return extractText(v[0])
		}
	case map[string]interface{}:
		for _, key := range []string{"output", "text", "numbers", "message", "response", "body", "content"} {
			switch val := v[key].(type) {
			case string:
				if val != "" {
					return val
				}
			case []interface{}:
				return joinStrings(val)
			}
		}
		if val, ok := v["data"]; ok {
			return extractText(val)
		}
		if val, ok := v["json"]; ok {
			return extractText(val)
		}
	case string:
		return v
	}
	return ""
}

func joinStrings(items []interface{}) string {
	var out string
	for _, it := range items {
		if s, ok := it.(string); ok {
			if out != "" {
				out += ","
			}
			out += s
		}
	}
	return out
}
