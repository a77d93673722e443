package http

import (
	"net/http"

	"dugod-content-service/internal/app"
	"dugod-content-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// BlackboxHandler serves the Blackbox progress, answer and question routes.
type BlackboxHandler struct {
	service   *app.BlackboxService
	validator *requestValidator
	log       logrus.FieldLogger
}

func NewBlackboxHandler(service *app.BlackboxService, log logrus.FieldLogger) *BlackboxHandler {
	return &BlackboxHandler{service: service, validator: newRequestValidator(), log: log}
}

type answerRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer" validate:"required,notblank,max=1000"`
}

type questionRequest struct {
	Question   string `json:"question" validate:"required,notblank,max=1000"`
	Answer     string `json:"answer" validate:"required_if=AnswerType exact,max=1000"`
	AnswerType string `json:"answerType" validate:"required,oneof=exact any"`
	Secret     string `json:"secret" validate:"max=5000"`
	Order      *int   `json:"order" validate:"omitempty,gt=0"`
	IsActive   *bool  `json:"isActive"`
}

func (req questionRequest) input() app.QuestionInput {
	return app.QuestionInput{
		Question:   req.Question,
		Answer:     req.Answer,
		AnswerType: domain.AnswerType(req.AnswerType),
		Secret:     req.Secret,
		Order:      req.Order,
		IsActive:   req.IsActive,
	}
}

type reorderRequest struct {
	QuestionIDs []string `json:"questionIds" validate:"omitempty,dive,required"`
}

func (h *BlackboxHandler) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Progress(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	success(w, http.StatusOK, progress)
}

// SubmitAnswer reports a wrong answer as a successful request with isCorrect false.
func (h *BlackboxHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	result, err := h.service.SubmitAnswer(r.Context(), userIDFrom(r.Context()), req.QuestionID, req.Answer)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	message := "Incorrect answer"
	if result.IsCorrect {
		message = "Correct answer"
	}
	successWithMessage(w, http.StatusOK, result, message)
}

// Reset clears the caller's progress and returns the fresh snapshot.
func (h *BlackboxHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	if _, err := h.service.Reset(r.Context(), userID); err != nil {
		fail(w, r, h.log, err)
		return
	}
	progress, err := h.service.Progress(r.Context(), userID)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	successWithMessage(w, http.StatusOK, progress, "Progress reset")
}

func (h *BlackboxHandler) ResetUser(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.Reset(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	successWithMessage(w, http.StatusOK, map[string]int{"removed": removed}, "Progress reset")
}

func (h *BlackboxHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.ListQuestions(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	success(w, http.StatusOK, questions)
}

func (h *BlackboxHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	success(w, http.StatusOK, q)
}

func (h *BlackboxHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	q, err := h.service.CreateQuestion(r.Context(), req.input())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	successWithMessage(w, http.StatusCreated, q, "Question created")
}

func (h *BlackboxHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	q, err := h.service.UpdateQuestion(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	successWithMessage(w, http.StatusOK, q, "Question updated")
}

func (h *BlackboxHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, h.log, err)
		return
	}
	successWithMessage(w, http.StatusOK, nil, "Question deleted")
}

func (h *BlackboxHandler) ReorderQuestions(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.validator.decodeOptional(w, r, &req) {
		return
	}
	questions, err := h.service.ReorderQuestions(r.Context(), req.QuestionIDs)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	successWithMessage(w, http.StatusOK, questions, "Questions reordered")
}
