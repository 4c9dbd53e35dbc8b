package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"lucosms-backend/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestContactRepository_ListContacts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContactRepository(db)

	rows := sqlmock.NewRows([]string{"name", "role", "phone_number", "last_active"}).
		AddRow("Unknown", "N/A", "+256701234567", testNow).
		AddRow("Contact", "N/A", "+256781234567", testNow)
	mock.ExpectQuery(`SELECT name, role, phone_number, last_active\s+FROM contacts`).WillReturnRows(rows)

	contacts, err := repo.ListContacts(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "+256701234567", contacts[0].PhoneNumber)
	assert.Equal(t, "Contact", contacts[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_AddContact(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContactRepository(db)
	c := model.NewContact("", "+256701234567", testNow)

	mock.ExpectExec(`INSERT INTO contacts`).
		WithArgs("Unknown", "N/A", "+256701234567", testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO contacts`).
		WithArgs("Unknown", "N/A", "+256701234567", testNow).
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := repo.AddContact(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddContact(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, added)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_MergeContacts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContactRepository(db)
	batch := []model.Contact{
		model.NewContact(model.ImportedContactName, "+256701234567", testNow),
		model.NewContact(model.ImportedContactName, "+256781234567", testNow),
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO contacts`)
	prep.ExpectExec().WithArgs("Contact", "N/A", "+256701234567", testNow).WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WithArgs("Contact", "N/A", "+256781234567", testNow).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	added, err := repo.MergeContacts(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "+256781234567", added[0].PhoneNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_MergeContactsRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContactRepository(db)
	batch := []model.Contact{
		model.NewContact(model.ImportedContactName, "+256701234567", testNow),
		model.NewContact(model.ImportedContactName, "+256781234567", testNow),
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO contacts`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.MergeContacts(context.Background(), batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "+256781234567")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_DeleteContact(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContactRepository(db)

	mock.ExpectExec(`DELETE FROM contacts`).WithArgs("+256701234567").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM contacts`).WithArgs("+256781234567").WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.DeleteContact(context.Background(), "+256701234567")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteContact(context.Background(), "+256781234567")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_LogMessage(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(`INSERT INTO messages_log`).
		WithArgs("hello", sqlmock.AnyArg(), 2, 70.0, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	entry := &model.MessageLog{
		Content:        "hello",
		Recipients:     []string{"+256701234567", "+256781234567"},
		RecipientCount: 2,
		TotalCost:      70,
		Timestamp:      testNow,
	}
	require.NoError(t, repo.LogMessage(context.Background(), entry))
	assert.Equal(t, int64(7), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_ListMessages(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)

	rows := sqlmock.NewRows([]string{"id", "content", "recipients", "recipient_count", "total_cost", "timestamp"}).
		AddRow(int64(2), "second", "{+256701234567}", 1, 35.0, testNow).
		AddRow(int64(1), "first", "{+256701234567,+256781234567}", 2, 70.0, testNow.Add(-time.Hour))
	mock.ExpectQuery(`SELECT id, content, recipients`).WithArgs(10).WillReturnRows(rows)

	logs, err := repo.ListMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "second", logs[0].Content)
	assert.Equal(t, []string{"+256701234567", "+256781234567"}, logs[1].Recipients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryContactRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryContactRepository(model.NewContact("Jane", "+256701234567", testNow))

	added, err := repo.AddContact(ctx, model.NewContact("", "+256701234567", testNow))
	require.NoError(t, err)
	assert.False(t, added)

	merged, err := repo.MergeContacts(ctx, []model.Contact{
		model.NewContact(model.ImportedContactName, "+256701234567", testNow),
		model.NewContact(model.ImportedContactName, "+256781234567", testNow),
	})
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "+256781234567", merged[0].PhoneNumber)

	contacts, err := repo.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Jane", contacts[0].Name)

	removed, err := repo.DeleteContact(ctx, "+256701234567")
	require.NoError(t, err)
	assert.True(t, removed)

	contacts, _ = repo.ListContacts(ctx)
	assert.Len(t, contacts, 1)
}

func TestMemoryMessageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMessageRepository()

	for _, content := range []string{"a", "b", "c"} {
		require.NoError(t, repo.LogMessage(ctx, &model.MessageLog{Content: content, Timestamp: testNow}))
	}

	logs, err := repo.ListMessages(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "c", logs[0].Content)
	assert.Equal(t, int64(3), logs[0].ID)
	assert.Equal(t, "b", logs[1].Content)
}

func TestTemplateRepository_CreateTemplate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTemplateRepository(db)

	mock.ExpectQuery(`INSERT INTO sms_templates`).
		WithArgs("Greeting", "Hello [name]", testNow, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	tpl := &model.Template{Name: "Greeting", Content: "Hello [name]", CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, repo.CreateTemplate(context.Background(), tpl))
	assert.Equal(t, int64(3), tpl.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_GetTemplate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTemplateRepository(db)
	columns := []string{"id", "name", "content", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT id, name, content, created_at, updated_at\s+FROM sms_templates\s+WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(3), "Greeting", "Hello [name]", testNow, testNow))
	mock.ExpectQuery(`FROM sms_templates`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(columns))

	tpl, err := repo.GetTemplate(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, tpl)
	assert.Equal(t, "Greeting", tpl.Name)

	tpl, err = repo.GetTemplate(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, tpl)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_ListTemplates(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTemplateRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "content", "created_at", "updated_at"}).
		AddRow(int64(2), "Alert", "Meeting at 5", testNow, testNow).
		AddRow(int64(1), "Greeting", "Hello [name]", testNow, testNow)
	mock.ExpectQuery(`ORDER BY name, id`).WillReturnRows(rows)

	templates, err := repo.ListTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Alert", templates[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_UpdateAndDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE sms_templates`).
		WithArgs("Greeting", "Hi [name]", testNow, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM sms_templates WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM sms_templates`).
		WithArgs(int64(2)).
		WillReturnError(errors.New("connection reset"))

	updated, err := repo.UpdateTemplate(ctx, &model.Template{ID: 1, Name: "Greeting", Content: "Hi [name]", UpdatedAt: testNow})
	require.NoError(t, err)
	assert.True(t, updated)

	removed, err := repo.DeleteTemplate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.DeleteTemplate(ctx, 2)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryTemplateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTemplateRepository()

	for _, name := range []string{"Greeting", "Alert"} {
		require.NoError(t, repo.CreateTemplate(ctx, &model.Template{Name: name, Content: "x", CreatedAt: testNow}))
	}

	templates, err := repo.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Alert", templates[0].Name)
	assert.Equal(t, int64(2), templates[0].ID)

	updated, err := repo.UpdateTemplate(ctx, &model.Template{ID: 1, Name: "Greeting", Content: "y"})
	require.NoError(t, err)
	assert.True(t, updated)

	tpl, err := repo.GetTemplate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "y", tpl.Content)
	assert.Equal(t, testNow, tpl.CreatedAt)

	updated, _ = repo.UpdateTemplate(ctx, &model.Template{ID: 9})
	assert.False(t, updated)

	removed, _ := repo.DeleteTemplate(ctx, 1)
	assert.True(t, removed)
	tpl, _ = repo.GetTemplate(ctx, 1)
	assert.Nil(t, tpl)
}
