package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func respondWithJson(w http.ResponseWriter, statusCode int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(payload); err != nil {
		log.Errorf("cannot write response, %v", err)
	}
}

func respond(w http.ResponseWriter, statusCode int, message string, data any) {
	responseBytes, err := json.Marshal(response{
		Success: statusCode < http.StatusBadRequest,
		Message: message,
		Data:    data,
	})
	if err != nil {
		log.Errorf("unable to marshal %T, %v", data, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error", spm_errors.ErrInternal)
		return
	}

	respondWithJson(w, statusCode, responseBytes)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string, err error) {
	res := response{Success: false, Message: message}
	if err != nil {
		res.Error = err.Error()
	}
	// an envelope of two strings always marshals
	responseBytes, _ := json.Marshal(res)
	respondWithJson(w, statusCode, responseBytes)
}

// handlerError writes err with the status code of its sentinel. message
// is used when the error itself should not reach the client.
func handlerError(err error, w http.ResponseWriter, message string) {
	statusCode := statusCodeOf(err)
	if statusCode == http.StatusInternalServerError {
		respondWithError(w, statusCode, message, spm_errors.ErrInternal)
		return
	}
	if errors.Is(err, spm_errors.ErrInvalidInput) {
		message = msgValidation
	}
	respondWithError(w, statusCode, message, err)
}

func statusCodeOf(err error) int {
	switch {
	case errors.Is(err, spm_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, spm_errors.ErrInvalidRequest),
		errors.Is(err, spm_errors.ErrInvalidInput),
		errors.Is(err, spm_errors.ErrInvalidSchedule):
		return http.StatusBadRequest
	case errors.Is(err, spm_errors.ErrEntityAlreadyExist):
		return http.StatusConflict
	case errors.Is(err, spm_errors.ErrTransport),
		errors.Is(err, spm_errors.ErrRemoteAPI),
		errors.Is(err, spm_errors.ErrCircuitOpen):
		return http.StatusBadGateway
	case errors.Is(err, spm_errors.ErrQueueFull),
		errors.Is(err, spm_errors.ErrQueueStopped),
		errors.Is(err, spm_errors.ErrEmailServiceStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJsonBody(body io.Reader, v any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w, %w", spm_errors.ErrInvalidRequest, err)
	}
	return nil
}

func studentIdParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w, invalid student id %q", spm_errors.ErrInvalidRequest, raw)
	}
	return id, nil
}
