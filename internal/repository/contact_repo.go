package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lucosms-backend/internal/model"
)

type ContactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

func (r *ContactRepository) ListContacts(ctx context.Context) ([]model.Contact, error) {
	query := `
		SELECT name, role, phone_number, last_active
		FROM contacts
		ORDER BY created_at ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.Name, &c.Role, &c.PhoneNumber, &c.LastActive); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) AddContact(ctx context.Context, c model.Contact) (bool, error) {
	query := `
		INSERT INTO contacts (name, role, phone_number, last_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone_number) DO NOTHING`

	res, err := r.DB.ExecContext(ctx, query, c.Name, c.Role, c.PhoneNumber, c.LastActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MergeContacts inserts the batch in one transaction. Numbers that are already
// stored are skipped; any other failure rolls the whole batch back.
func (r *ContactRepository) MergeContacts(ctx context.Context, contacts []model.Contact) ([]model.Contact, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contacts (name, role, phone_number, last_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone_number) DO NOTHING`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	added := make([]model.Contact, 0, len(contacts))
	for _, c := range contacts {
		res, err := stmt.ExecContext(ctx, c.Name, c.Role, c.PhoneNumber, c.LastActive)
		if err != nil {
			return nil, fmt.Errorf("insert %s: %w", c.PhoneNumber, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 1 {
			added = append(added, c)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return added, nil
}

func (r *ContactRepository) DeleteContact(ctx context.Context, phoneNumber string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM contacts WHERE phone_number = $1`, phoneNumber)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
