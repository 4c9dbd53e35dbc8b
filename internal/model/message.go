package model

import "time"

// SendRequest carries either a message body or a template to render. A non-blank
// Message wins over TemplateID.
type SendRequest struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
	TemplateID *int64   `json:"template_id,omitempty"`
	Name       string   `json:"name,omitempty"`
}

// SendResult is the SMS gateway's answer to a send request.
type SendResult struct {
	Status          string  `json:"status"`
	Message         string  `json:"message"`
	RecipientsCount int     `json:"recipients_count"`
	TotalCost       float64 `json:"total_cost"`
}

type MessageLog struct {
	ID             int64     `json:"id"`
	Content        string    `json:"content"`
	Recipients     []string  `json:"recipients"`
	RecipientCount int       `json:"recipient_count"`
	TotalCost      float64   `json:"total_cost"`
	Timestamp      time.Time `json:"timestamp"`
}
