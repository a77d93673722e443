package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dugod-content-service/internal/domain"
	"github.com/sirupsen/logrus"
)

type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func success(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

func successWithMessage(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Data: data, Message: message})
}

func failure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func validationFailure(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]map[string]string{"errors": fields})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCountdownNotFound), errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotNextQuestion),
		errors.Is(err, domain.ErrProgressCompleted),
		errors.Is(err, domain.ErrAlreadyAnswered):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSubmissionInProgress):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrInvalidLaunchDate),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrInvalidAnswerType),
		errors.Is(err, domain.ErrMissingExpectedAnswer),
		errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrInvalidReorder),
		errors.Is(err, domain.ErrEmptyAnswer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal errors are logged and hidden from the client.
func fail(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		requestLogger(r, log).WithError(err).Error("request failed")
		failure(w, status, "internal server error")
		return
	}
	failure(w, status, err.Error())
}
