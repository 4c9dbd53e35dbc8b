package model

import "time"

// NamePlaceholder is replaced with the recipient name when a template is rendered.
const NamePlaceholder = "[name]"

type Template struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TemplateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type RenderRequest struct {
	Name string `json:"name"`
}
