package api

import (
	"encoding/json"
	"net/http"

	"lotto/domain/apperrors"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps a coded domain error to an HTTP status
func statusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrInvalidInput.Code:
		return http.StatusBadRequest
	case apperrors.ErrInvalidCredentials.Code:
		return http.StatusUnauthorized
	case apperrors.ErrInsufficientFunds.Code:
		return http.StatusPaymentRequired
	case apperrors.ErrPermissionDenied.Code:
		return http.StatusForbidden
	case apperrors.ErrTicketNotFound.Code,
		apperrors.ErrTicketNotOwned.Code,
		apperrors.ErrUserNotFound.Code:
		return http.StatusNotFound
	case apperrors.ErrTicketAlreadySold.Code,
		apperrors.ErrAlreadyClaimed.Code,
		apperrors.ErrUsernameTaken.Code:
		return http.StatusConflict
	case apperrors.ErrNoDrawYet.Code,
		apperrors.ErrInsufficientSoldTickets.Code,
		apperrors.ErrNotAWinner.Code:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err onto the error envelope. Internal failures are
// logged with their cause but returned without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := apperrors.CodeOf(err)

	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		writeJSON(w, status, ErrorResponse{Code: code, Message: "internal error"})
		return
	}

	writeJSON(w, status, ErrorResponse{Code: code, Message: err.Error()})
}
