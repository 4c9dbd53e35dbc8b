package handler

import (
	"errors"
	"net/http"

	"lucosms-backend/internal/phone"
	"lucosms-backend/internal/service"
	"lucosms-backend/internal/sms"
	"lucosms-backend/internal/utils"

	"go.uber.org/zap"
)

// writeError maps service errors to HTTP replies. Unknown errors are logged and
// reported without detail.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var ve *phone.ValidationError
	var ie *service.ImportError

	switch {
	case errors.As(err, &ve):
		utils.ErrorResponse(w, http.StatusBadRequest, ve.Reason)
	case errors.Is(err, service.ErrAlreadyAdded), errors.Is(err, service.ErrImportInProgress):
		utils.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrContactNotFound), errors.Is(err, service.ErrTemplateNotFound):
		utils.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrNoRecipients),
		errors.Is(err, service.ErrTemplateInvalid):
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ie) && ie.Op != service.OpMerge:
		utils.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, sms.ErrSendFailed):
		utils.ErrorResponse(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("Request failed", zap.Error(err))
		utils.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
