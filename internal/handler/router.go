package handler

import (
	"net/http"

	"lucosms-backend/internal/middleware"
	"lucosms-backend/internal/utils"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Contacts  *ContactHandler
	Phone     *PhoneHandler
	Messages  *MessageHandler
	Templates *TemplateHandler
}

func NewRouter(h Handlers, mw *middleware.Middleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(mw.RequestLogger, mw.CORS)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.SuccessResponse(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	}).Methods(http.MethodGet)

	r.HandleFunc("/ws/imports/{id}", h.Contacts.WatchImport).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(mw.RateLimitMiddleware)

	api.HandleFunc("/contacts", h.Contacts.ListContacts).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/contacts", h.Contacts.AddContact).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/contacts/import", h.Contacts.ImportContacts).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/contacts/import/template", h.Contacts.DownloadTemplate).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/contacts/{phone}", h.Contacts.DeleteContact).Methods(http.MethodDelete, http.MethodOptions)

	api.HandleFunc("/phone/normalize", h.Phone.Normalize).Methods(http.MethodPost, http.MethodOptions)

	api.HandleFunc("/messages", h.Messages.SendMessage).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/messages", h.Messages.ListMessages).Methods(http.MethodGet, http.MethodOptions)

	api.HandleFunc("/templates", h.Templates.ListTemplates).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/templates", h.Templates.CreateTemplate).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/templates/{id}", h.Templates.GetTemplate).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/templates/{id}", h.Templates.UpdateTemplate).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/templates/{id}", h.Templates.DeleteTemplate).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/templates/{id}/render", h.Templates.RenderTemplate).Methods(http.MethodPost, http.MethodOptions)

	return r
}
