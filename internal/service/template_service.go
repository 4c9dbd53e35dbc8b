package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lucosms-backend/internal/model"

	"go.uber.org/zap"
)

const (
	maxTemplateName = 100
	defaultName     = "User"
)

type TemplateStore interface {
	CreateTemplate(ctx context.Context, t *model.Template) error
	// GetTemplate returns nil when no template has the id.
	GetTemplate(ctx context.Context, id int64) (*model.Template, error)
	ListTemplates(ctx context.Context) ([]model.Template, error)
	UpdateTemplate(ctx context.Context, t *model.Template) (bool, error)
	DeleteTemplate(ctx context.Context, id int64) (bool, error)
}

type TemplateService struct {
	Store  TemplateStore
	logger *zap.Logger
	now    func() time.Time
}

func NewTemplateService(store TemplateStore, logger *zap.Logger) *TemplateService {
	return &TemplateService{Store: store, logger: logger, now: time.Now}
}

// RenderTemplate puts name in place of the first [name] placeholder. A blank
// name becomes "User".
func RenderTemplate(content, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName
	}
	return strings.Replace(content, model.NamePlaceholder, name, 1)
}

func validateTemplate(req model.TemplateRequest) (string, string, error) {
	name := strings.TrimSpace(req.Name)
	content := strings.TrimSpace(req.Content)
	if name == "" || content == "" {
		return "", "", ErrTemplateInvalid
	}
	if utf8.RuneCountInString(name) > maxTemplateName {
		return "", "", fmt.Errorf("%w: name is longer than %d characters", ErrTemplateInvalid, maxTemplateName)
	}
	return name, content, nil
}

// List returns the templates whose name or content contains search, ignoring case.
func (s *TemplateService) List(ctx context.Context, search string) ([]model.Template, error) {
	templates, err := s.Store.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return templates, nil
	}

	out := make([]model.Template, 0, len(templates))
	for _, t := range templates {
		if strings.Contains(strings.ToLower(t.Name), search) || strings.Contains(strings.ToLower(t.Content), search) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *TemplateService) Get(ctx context.Context, id int64) (*model.Template, error) {
	t, err := s.Store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

func (s *TemplateService) Create(ctx context.Context, req model.TemplateRequest) (*model.Template, error) {
	name, content, err := validateTemplate(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &model.Template{Name: name, Content: content, CreatedAt: now, UpdatedAt: now}
	if err := s.Store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("Template created", zap.Int64("template_id", t.ID))
	return t, nil
}

func (s *TemplateService) Update(ctx context.Context, id int64, req model.TemplateRequest) (*model.Template, error) {
	name, content, err := validateTemplate(req)
	if err != nil {
		return nil, err
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = name
	t.Content = content
	t.UpdatedAt = s.now()

	updated, err := s.Store.UpdateTemplate(ctx, t)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrTemplateNotFound
	}

	s.logger.Info("Template updated", zap.Int64("template_id", id))
	return t, nil
}

func (s *TemplateService) Delete(ctx context.Context, id int64) error {
	removed, err := s.Store.DeleteTemplate(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrTemplateNotFound
	}

	s.logger.Info("Template deleted", zap.Int64("template_id", id))
	return nil
}

// Render loads a template and fills in the recipient name.
func (s *TemplateService) Render(ctx context.Context, id int64, name string) (string, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderTemplate(t.Content, name), nil
}
