package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"lucosms-backend/internal/service"
	"lucosms-backend/internal/spreadsheet"
	"lucosms-backend/internal/utils"
	"lucosms-backend/internal/websocket"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	templateFileName = "contacts_template.xlsx"
)

type ContactHandler struct {
	Contacts       *service.ContactService
	Imports        *service.ImportService
	WSHub          *websocket.Hub
	AllowedOrigins []string
	MaxUploadBytes int64
	logger         *zap.Logger
}

func NewContactHandler(contacts *service.ContactService, imports *service.ImportService, wsHub *websocket.Hub, allowedOrigins []string, maxUploadBytes int64, logger *zap.Logger) *ContactHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ContactHandler{
		Contacts:       contacts,
		Imports:        imports,
		WSHub:          wsHub,
		AllowedOrigins: allowedOrigins,
		MaxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Contacts.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, contacts, "Contacts retrieved successfully")
}

func (h *ContactHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phone_number"`
		Name        string `json:"name"`
	}
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Name) > 255 {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid contact name")
		return
	}

	contact, err := h.Contacts.AddManual(r.Context(), req.PhoneNumber, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusCreated, contact, "Contact added successfully")
}

func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["phone"]

	if err := h.Contacts.Remove(r.Context(), number); err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, nil, "Contact removed successfully")
}

// ImportContacts reads a multipart upload ("file") and runs the import.
// "import_id" lets a client watch /ws/imports/{id} before uploading and
// "dry_run=true" reports what would be imported without saving.
func (h *ContactHandler) ImportContacts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorResponse(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	dryRun, _ := strconv.ParseBool(r.FormValue("dry_run"))
	fileName := filepath.Base(header.Filename)

	result, err := h.Imports.Import(r.Context(), service.ImportRequest{
		ID:       strings.TrimSpace(r.FormValue("import_id")),
		FileName: fileName,
		Data:     data,
		DryRun:   dryRun,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, result, importMessage(len(result.NewContacts), fileName, dryRun))
}

func importMessage(n int, fileName string, dryRun bool) string {
	switch {
	case dryRun:
		return fmt.Sprintf("Found %d new contacts in %s.", n, fileName)
	case n == 0:
		return fmt.Sprintf("No new contacts found in %s.", fileName)
	default:
		return fmt.Sprintf("Imported %d new contacts from %s.", n, fileName)
	}
}

func (h *ContactHandler) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := spreadsheet.GenerateImportTemplate()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", templateFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ContactHandler) WatchImport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if strings.TrimSpace(id) == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid import id")
		return
	}

	websocket.ServeWs(h.WSHub, w, r, id, h.AllowedOrigins)
}
