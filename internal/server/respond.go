package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/promopress/promopress/pkg/catalog/store"
	"github.com/promopress/promopress/pkg/errors"
)

// errorResponse is the machine-readable error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain error codes to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.ErrCodeInternal

	if stderrors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    string(errors.ErrCodeNotFound),
			Message: "not found",
		})
		return
	}

	if c := errors.GetCode(err); c != "" {
		code = c
	}
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDiscount, errors.ErrCodeInvalidPage,
		errors.ErrCodeInvalidPlacement, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeProductNotFound,
		errors.ErrCodeCampaignNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	writeJSON(w, status, errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
