package repository

import (
	"context"
	"database/sql"
	"errors"

	"lucosms-backend/internal/model"
)

type TemplateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

func (r *TemplateRepository) CreateTemplate(ctx context.Context, t *model.Template) error {
	query := `
		INSERT INTO sms_templates (name, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return r.DB.QueryRowContext(ctx, query, t.Name, t.Content, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
}

// GetTemplate returns nil when no template has the id.
func (r *TemplateRepository) GetTemplate(ctx context.Context, id int64) (*model.Template, error) {
	query := `
		SELECT id, name, content, created_at, updated_at
		FROM sms_templates
		WHERE id = $1`

	var t model.Template
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) ListTemplates(ctx context.Context) ([]model.Template, error) {
	query := `
		SELECT id, name, content, created_at, updated_at
		FROM sms_templates
		ORDER BY name, id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) UpdateTemplate(ctx context.Context, t *model.Template) (bool, error) {
	query := `
		UPDATE sms_templates
		SET name = $1, content = $2, updated_at = $3
		WHERE id = $4`

	result, err := r.DB.ExecContext(ctx, query, t.Name, t.Content, t.UpdatedAt, t.ID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id int64) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM sms_templates WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}
