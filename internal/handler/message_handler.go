package handler

import (
	"net/http"
	"strconv"

	"lucosms-backend/internal/model"
	"lucosms-backend/internal/service"
	"lucosms-backend/internal/utils"

	"go.uber.org/zap"
)

type MessageHandler struct {
	Messages *service.MessageService
	logger   *zap.Logger
}

func NewMessageHandler(messages *service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{Messages: messages, logger: logger}
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req model.SendRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Messages.Send(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, result, "Message sent successfully")
}

func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.Messages.History(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, logs, "Messages retrieved successfully")
}
