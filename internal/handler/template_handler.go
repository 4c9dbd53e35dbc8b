package handler

import (
	"net/http"
	"strconv"

	"lucosms-backend/internal/model"
	"lucosms-backend/internal/service"
	"lucosms-backend/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type TemplateHandler struct {
	Templates *service.TemplateService
	logger    *zap.Logger
}

func NewTemplateHandler(templates *service.TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{Templates: templates, logger: logger}
}

func templateID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Templates.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, templates, "Templates retrieved successfully")
}

func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid template id")
		return
	}

	t, err := h.Templates.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, t, "Template retrieved successfully")
}

func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req model.TemplateRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.Templates.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusCreated, t, "Template created successfully")
}

func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid template id")
		return
	}

	var req model.TemplateRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.Templates.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, t, "Template updated successfully")
}

func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid template id")
		return
	}

	if err := h.Templates.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, nil, "Template deleted successfully")
}

// RenderTemplate returns the template content with the given name filled in, for
// seeding a message before it is edited and sent.
func (h *TemplateHandler) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid template id")
		return
	}

	var req model.RenderRequest
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	content, err := h.Templates.Render(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, map[string]string{"content": content}, "Template rendered successfully")
}
