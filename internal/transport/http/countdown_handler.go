package http

import (
	"net/http"

	"dugod-content-service/internal/app"
	"dugod-content-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// CountdownHandler serves the countdown REST routes.
type CountdownHandler struct {
	service   *app.CountdownService
	validator *requestValidator
	log       logrus.FieldLogger
}

func NewCountdownHandler(service *app.CountdownService, log logrus.FieldLogger) *CountdownHandler {
	return &CountdownHandler{service: service, validator: newRequestValidator(), log: log}
}

type countdownRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=2000"`
	LaunchDate      string `json:"launchDate" validate:"required"`
	IsActive        bool   `json:"isActive"`
	ShowDays        *bool  `json:"showDays"`
	ShowHours       *bool  `json:"showHours"`
	ShowMinutes     *bool  `json:"showMinutes"`
	ShowSeconds     *bool  `json:"showSeconds"`
	BackgroundColor string `json:"backgroundColor" validate:"omitempty,hexcolor"`
	TextColor       string `json:"textColor" validate:"omitempty,hexcolor"`
	AccentColor     string `json:"accentColor" validate:"omitempty,hexcolor"`
	BackgroundImage string `json:"backgroundImage" validate:"omitempty,url"`
	ButtonText      string `json:"buttonText" validate:"max=100"`
	ButtonLink      string `json:"buttonLink" validate:"omitempty,url"`
	Timezone        string `json:"timezone" validate:"max=64"`
	ExpiredMessage  string `json:"expiredMessage" validate:"max=500"`
}

func (req countdownRequest) input() app.CountdownInput {
	return app.CountdownInput{
		Title:           req.Title,
		Description:     req.Description,
		LaunchDate:      req.LaunchDate,
		IsActive:        req.IsActive,
		ShowDays:        boolOr(req.ShowDays, true),
		ShowHours:       boolOr(req.ShowHours, true),
		ShowMinutes:     boolOr(req.ShowMinutes, true),
		ShowSeconds:     boolOr(req.ShowSeconds, true),
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
		AccentColor:     req.AccentColor,
		BackgroundImage: req.BackgroundImage,
		ButtonText:      req.ButtonText,
		ButtonLink:      req.ButtonLink,
		Timezone:        req.Timezone,
		ExpiredMessage:  req.ExpiredMessage,
	}
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// countdownView is a countdown with its remaining time at response time.
type countdownView struct {
	domain.Countdown
	TimeRemaining domain.TimeRemaining `json:"timeRemaining"`
	VisibleUnits  []domain.UnitValue   `json:"visibleUnits"`
}

func (h *CountdownHandler) view(c domain.Countdown) countdownView {
	remaining := h.service.RemainingOf(c)
	return countdownView{
		Countdown:     c,
		TimeRemaining: remaining,
		VisibleUnits:  remaining.Visible(c.Units()),
	}
}

// Active returns the public countdown or null when none is active.
func (h *CountdownHandler) Active(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Active(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	if c == nil {
		success(w, http.StatusOK, nil)
		return
	}
	success(w, http.StatusOK, h.view(*c))
}

func (h *CountdownHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	success(w, http.StatusOK, list)
}

func (h *CountdownHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	success(w, http.StatusOK, c)
}

func (h *CountdownHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	c, remaining, err := h.service.Remaining(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	success(w, http.StatusOK, map[string]any{
		"timeRemaining":  remaining,
		"visibleUnits":   remaining.Visible(c.Units()),
		"expiredMessage": c.ExpiredMessage,
	})
}

func (h *CountdownHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req countdownRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	c, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	successWithMessage(w, http.StatusCreated, c, "Countdown created")
}

func (h *CountdownHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req countdownRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	c, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	successWithMessage(w, http.StatusOK, c, "Countdown updated")
}

func (h *CountdownHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, h.log, err)
		return
	}
	successWithMessage(w, http.StatusOK, nil, "Countdown deleted")
}
