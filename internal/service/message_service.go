package service

import (
	"context"
	"strings"
	"time"

	"lucosms-backend/internal/model"
	"lucosms-backend/internal/phone"

	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type Sender interface {
	Send(ctx context.Context, recipients []string, message string) (*model.SendResult, error)
}

type MessageStore interface {
	LogMessage(ctx context.Context, log *model.MessageLog) error
	ListMessages(ctx context.Context, limit int) ([]model.MessageLog, error)
}

type MessageService struct {
	Sender    Sender
	Store     MessageStore
	Templates *TemplateService
	logger    *zap.Logger
	now       func() time.Time
}

func NewMessageService(sender Sender, store MessageStore, templates *TemplateService, logger *zap.Logger) *MessageService {
	return &MessageService{Sender: sender, Store: store, Templates: templates, logger: logger, now: time.Now}
}

// Send delivers one message to every recipient. All recipients must normalize;
// the first rejected one is returned as a *phone.ValidationError and nothing is sent.
// With a blank message and a template id, the rendered template is sent.
func (s *MessageService) Send(ctx context.Context, req model.SendRequest) (*model.SendResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" && req.TemplateID != nil {
		if s.Templates == nil {
			return nil, ErrTemplateNotFound
		}
		rendered, err := s.Templates.Render(ctx, *req.TemplateID, req.Name)
		if err != nil {
			return nil, err
		}
		message = strings.TrimSpace(rendered)
	}
	if message == "" {
		return nil, ErrEmptyMessage
	}

	recipients, err := normalizeRecipients(req.Recipients)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	result, err := s.Sender.Send(ctx, recipients, message)
	if err != nil {
		return nil, err
	}

	entry := &model.MessageLog{
		Content:        message,
		Recipients:     recipients,
		RecipientCount: len(recipients),
		TotalCost:      result.TotalCost,
		Timestamp:      s.now(),
	}
	if err := s.Store.LogMessage(ctx, entry); err != nil {
		// Sent already; history is best effort.
		s.logger.Error("Failed to record sent message", zap.Error(err))
	}
	return result, nil
}

func (s *MessageService) History(ctx context.Context, limit int) ([]model.MessageLog, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return s.Store.ListMessages(ctx, limit)
}

func normalizeRecipients(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n, err := phone.Normalize(r)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}
