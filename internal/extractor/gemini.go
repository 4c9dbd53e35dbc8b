package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lucosms-backend/internal/phone"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.0-flash"

	geminiTemperature     = 0.2
	geminiMaxOutputTokens = 1024
)

var ErrEmptyReply = errors.New("extraction service returned no content")

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiExtractor asks a Gemini model to clean up the batch.
type GeminiExtractor struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

func NewGeminiExtractor(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiExtractor(client.Models, model, logger), nil
}

func newGeminiExtractor(models contentGenerator, model string, logger *zap.Logger) *GeminiExtractor {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiExtractor{models: models, model: model, logger: logger}
}

func (e *GeminiExtractor) ExtractCandidateNumbers(ctx context.Context, candidates []string) ([]string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(BuildPrompt(candidates), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](geminiTemperature),
		MaxOutputTokens: geminiMaxOutputTokens,
	}

	e.logger.Debug("Calling Gemini for number extraction",
		zap.String("model", e.model),
		zap.Int("candidates", len(candidates)),
	)

	resp, err := e.models.GenerateContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to validate numbers: %w", err)
	}

	text, ok := replyText(resp)
	if !ok {
		return nil, fmt.Errorf("failed to validate numbers: %w", ErrEmptyReply)
	}

	numbers := phone.FindCanonical(text)
	e.logger.Info("Gemini extraction finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("numbers", len(numbers)),
	)
	return numbers, nil
}

// replyText joins the text parts of the first candidate. It reports false when
// the reply has no candidate content at all; blank text is a valid empty answer.
func replyText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return "", false
	}

	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String()), true
}
