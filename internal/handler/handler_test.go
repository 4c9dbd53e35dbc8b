package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lucosms-backend/internal/extractor"
	"lucosms-backend/internal/lock"
	"lucosms-backend/internal/middleware"
	"lucosms-backend/internal/model"
	"lucosms-backend/internal/repository"
	"lucosms-backend/internal/service"
	"lucosms-backend/internal/sms"
	"lucosms-backend/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type switchableExtractor struct {
	err error
}

func (s *switchableExtractor) ExtractCandidateNumbers(ctx context.Context, candidates []string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return extractor.NewRuleExtractor().ExtractCandidateNumbers(ctx, candidates)
}

type testServer struct {
	router    http.Handler
	contacts  *repository.MemoryContactRepository
	extractor *switchableExtractor
	locker    *lock.LocalLocker
}

func newTestServer(t *testing.T) *testServer {
	logger := zap.NewNop()

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Recipient []string `json:"recipient"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.SendResult{
			Status:          "success",
			Message:         "queued",
			RecipientsCount: len(body.Recipient),
			TotalCost:       35 * float64(len(body.Recipient)),
		})
	}))
	t.Cleanup(gateway.Close)

	hub := websocket.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	ts := &testServer{
		contacts:  repository.NewMemoryContactRepository(),
		extractor: &switchableExtractor{},
		locker:    lock.NewLocalLocker(),
	}

	contactSvc := service.NewContactService(ts.contacts, logger)
	importSvc := service.NewImportService(contactSvc, service.NewReconciler(ts.extractor, logger), ts.locker, hub, logger)
	templateSvc := service.NewTemplateService(repository.NewMemoryTemplateRepository(), logger)
	messageSvc := service.NewMessageService(sms.NewClient(gateway.URL, "1", time.Second, logger), repository.NewMemoryMessageRepository(), templateSvc, logger)

	ts.router = NewRouter(Handlers{
		Contacts:  NewContactHandler(contactSvc, importSvc, hub, []string{"*"}, 1<<20, logger),
		Phone:     NewPhoneHandler(),
		Messages:  NewMessageHandler(messageSvc, logger),
		Templates: NewTemplateHandler(templateSvc, logger),
	}, middleware.NewMiddleware([]string{"*"}, logger))
	return ts
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (ts *testServer) do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, fileName string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAddContact(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, jsonRequest(http.MethodPost, "/api/v1/contacts", `{"phone_number":"0701234567"}`))
	require.Equal(t, http.StatusCreated, code)
	var c model.Contact
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, "+256701234567", c.PhoneNumber)
	assert.Equal(t, "Unknown", c.Name)

	code, env = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/contacts", `{"phone_number":"701234567"}`))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "number already added", env.Message)

	code, env = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/contacts", `{"phone_number":"+256201234567"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Invalid phone number format")

	code, _ = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/contacts", `not json`))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListAndDeleteContacts(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	now := time.Now()
	_, _ = ts.contacts.AddContact(ctx, model.NewContact("Jane", "+256701234567", now))
	_, _ = ts.contacts.AddContact(ctx, model.NewContact("John", "+256781234567", now))

	code, env := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/contacts?search=jan", nil))
	require.Equal(t, http.StatusOK, code)
	var contacts []model.Contact
	require.NoError(t, json.Unmarshal(env.Data, &contacts))
	require.Len(t, contacts, 1)
	assert.Equal(t, "Jane", contacts[0].Name)

	code, _ = ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/+256701234567", nil))
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/0701234567", nil))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestImportContacts(t *testing.T) {
	ts := newTestServer(t)
	_, _ = ts.contacts.AddContact(context.Background(), model.NewContact("Old", "+256781234567", time.Now()))

	csv := "name,phone\nA,0701234567\nB,701234567\nC,0781234567\nD,none\n"
	code, env := ts.do(t, uploadRequest(t, "people.csv", []byte(csv), map[string]string{"import_id": "imp-9"}))
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Imported 1 new contacts from people.csv.", env.Message)

	var res model.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "imp-9", res.ID)
	assert.Equal(t, model.ImportProgress{Total: 3, Processed: 3, Valid: 2}, res.Progress)
	require.Len(t, res.NewContacts, 1)
	assert.Equal(t, "+256701234567", res.NewContacts[0].PhoneNumber)
	assert.Equal(t, "Contact", res.NewContacts[0].Name)

	all, _ := ts.contacts.ListContacts(context.Background())
	assert.Len(t, all, 2)
}

func TestImportContacts_Failures(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/contacts/import", nil))
	assert.Equal(t, http.StatusBadRequest, code, env.Message)

	code, env = ts.do(t, uploadRequest(t, "book.xlsx", []byte("garbage"), nil))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Message, "read failed")

	code, env = ts.do(t, uploadRequest(t, "book.xls", []byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1\x00"), nil))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Message, "unsupported file type")

	ts.extractor.err = errors.New("API request failed: 500")
	code, env = ts.do(t, uploadRequest(t, "people.csv", []byte("phone\n0701234567\n"), nil))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Message, "validation failed")
	all, _ := ts.contacts.ListContacts(context.Background())
	assert.Empty(t, all)

	ts.extractor.err = nil
	unlock, err := ts.locker.TryLock(context.Background(), "contacts-import")
	require.NoError(t, err)
	defer unlock()
	code, _ = ts.do(t, uploadRequest(t, "people.csv", []byte("phone\n0701234567\n"), nil))
	assert.Equal(t, http.StatusConflict, code)
}

func TestDownloadTemplate(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/contacts/import/template", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), templateFileName)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestNormalizeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, jsonRequest(http.MethodPost, "/api/v1/phone/normalize", `{"numbers":["0701234567","+256201234567",""]}`))
	require.Equal(t, http.StatusOK, code)

	var results []NormalizeResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 3)
	assert.Equal(t, NormalizeResult{Input: "0701234567", PhoneNumber: "+256701234567", Valid: true}, results[0])
	assert.False(t, results[1].Valid)
	assert.Contains(t, results[1].Reason, "Invalid phone number format")
	assert.Equal(t, "Phone number cannot be empty", results[2].Reason)

	code, _ = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/phone/normalize", `{"numbers":[]}`))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMessages(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, jsonRequest(http.MethodPost, "/api/v1/messages", `{"recipients":["0701234567","701234567","0781234567"],"message":"Hello"}`))
	require.Equal(t, http.StatusOK, code, env.Message)
	var res model.SendResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.RecipientsCount)

	code, env = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/messages", `{"recipients":["12"],"message":"Hello"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "Invalid phone number format")

	code, _ = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/messages", `{"recipients":["0701234567"],"message":""}`))
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/messages?limit=5", nil))
	require.Equal(t, http.StatusOK, code)
	var logs []model.MessageLog
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, []string{"+256701234567", "+256781234567"}, logs[0].Recipients)
}

func TestTemplates(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, jsonRequest(http.MethodPost, "/api/v1/templates", `{"name":"Greeting","content":"Hello [name], welcome!"}`))
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created model.Template
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, int64(1), created.ID)

	code, env = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/templates", `{"name":"","content":"x"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "template name and content are required", env.Message)

	code, env = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/templates/1/render", `{"name":"Jane"}`))
	require.Equal(t, http.StatusOK, code, env.Message)
	var rendered map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &rendered))
	assert.Equal(t, "Hello Jane, welcome!", rendered["content"])

	code, env = ts.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/templates/1/render", nil))
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &rendered))
	assert.Equal(t, "Hello User, welcome!", rendered["content"])

	code, env = ts.do(t, jsonRequest(http.MethodPut, "/api/v1/templates/1", `{"name":"Greeting","content":"Hi [name]"}`))
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/messages", `{"recipients":["0701234567"],"template_id":1,"name":"Jane"}`))
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil))
	require.Equal(t, http.StatusOK, code)
	var logs []model.MessageLog
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "Hi Jane", logs[0].Content)

	code, env = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/templates?search=hi", nil))
	require.Equal(t, http.StatusOK, code)
	var list []model.Template
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	code, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/templates/abc", nil))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/templates/1", nil))
	assert.Equal(t, http.StatusOK, code)

	code, env = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/templates/1", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "template not found", env.Message)

	code, _ = ts.do(t, jsonRequest(http.MethodPost, "/api/v1/messages", `{"recipients":["0701234567"],"template_id":1}`))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}
