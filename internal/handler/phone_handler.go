package handler

import (
	"errors"
	"net/http"

	"lucosms-backend/internal/phone"
	"lucosms-backend/internal/utils"
)

const maxNormalizeBatch = 1000

type NormalizeResult struct {
	Input       string `json:"input"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Valid       bool   `json:"valid"`
	Reason      string `json:"reason,omitempty"`
}

type PhoneHandler struct{}

func NewPhoneHandler() *PhoneHandler {
	return &PhoneHandler{}
}

// Normalize checks each number independently and reports the canonical form or
// the rejection reason, in request order.
func (h *PhoneHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Numbers []string `json:"numbers"`
	}
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Numbers) == 0 || len(req.Numbers) > maxNormalizeBatch {
		utils.ErrorResponse(w, http.StatusBadRequest, "Provide between 1 and 1000 numbers")
		return
	}

	utils.SuccessResponse(w, http.StatusOK, NormalizeAll(req.Numbers), "")
}

func NormalizeAll(numbers []string) []NormalizeResult {
	results := make([]NormalizeResult, len(numbers))
	for i, raw := range numbers {
		results[i] = NormalizeResult{Input: raw}
		n, err := phone.Normalize(raw)
		if err != nil {
			var ve *phone.ValidationError
			if errors.As(err, &ve) {
				results[i].Reason = ve.Reason
			} else {
				results[i].Reason = err.Error()
			}
			continue
		}
		results[i].PhoneNumber = n
		results[i].Valid = true
	}
	return results
}
