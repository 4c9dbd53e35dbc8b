package repository

import (
	"context"
	"database/sql"

	"lucosms-backend/internal/model"

	"github.com/lib/pq"
)

type MessageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) LogMessage(ctx context.Context, log *model.MessageLog) error {
	query := `
		INSERT INTO messages_log (content, recipients, recipient_count, total_cost, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.DB.QueryRowContext(ctx, query,
		log.Content,
		pq.Array(log.Recipients),
		log.RecipientCount,
		log.TotalCost,
		log.Timestamp,
	).Scan(&log.ID)
}

// ListMessages returns the newest entries first.
func (r *MessageRepository) ListMessages(ctx context.Context, limit int) ([]model.MessageLog, error) {
	query := `
		SELECT id, content, recipients, recipient_count, total_cost, timestamp
		FROM messages_log
		ORDER BY timestamp DESC, id DESC
		LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.MessageLog{}
	for rows.Next() {
		var m model.MessageLog
		var recipients pq.StringArray
		if err := rows.Scan(&m.ID, &m.Content, &recipients, &m.RecipientCount, &m.TotalCost, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Recipients = []string(recipients)
		logs = append(logs, m)
	}
	return logs, rows.Err()
}
