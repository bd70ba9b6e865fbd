package util

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parcelio/fleet-core/internal/apperrors"
	log "github.com/sirupsen/logrus"
)

// Response is the JSON envelope every endpoint returns:
// {success, data?, error?: {code, message, details?}}.
type Response struct {
	Success bool               `json:"success"`
	Data    interface{}        `json:"data,omitempty"`
	Error   *apperrors.Error   `json:"error,omitempty"`
}

// Verbose controls whether collaborator failure detail is attached to error
// responses. Enabled outside production builds.
var Verbose = true

// WriteJSON writes a success envelope.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

// WriteError translates an error into the envelope's taxonomy and writes it.
// Raw collaborator errors are logged server-side and surfaced as
// OPERATION_FAILED with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.OperationFailed(err)
	}

	out := &apperrors.Error{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Err != nil {
		log.WithError(appErr.Err).WithField("code", appErr.Code).Error("collaborator failure")
		if Verbose {
			out.Message = appErr.Message + ": " + appErr.Err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus())
	json.NewEncoder(w).Encode(Response{Success: false, Error: out})
}
