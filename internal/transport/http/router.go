package http

import (
	"net/http"

	"dugod-content-service/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Countdowns    *app.CountdownService
	Blackbox      *app.BlackboxService
	AnswerLimiter *RateLimiter
	Log           logrus.FieldLogger
}

// NewRouter wires every route onto a chi router.
func NewRouter(deps RouterDeps) chi.Router {
	countdowns := NewCountdownHandler(deps.Countdowns, deps.Log)
	blackbox := NewBlackboxHandler(deps.Blackbox, deps.Log)
	stream := NewWSHandler(deps.Countdowns, deps.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(instrument(deps.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/countdown", func(r chi.Router) {
		r.Get("/active", countdowns.Active)
		r.Get("/active/ws", stream.ServeWS)
		r.Get("/{id}/remaining", countdowns.Remaining)

		r.Group(func(r chi.Router) {
			r.Use(requireUser, requireAdmin)
			r.Get("/", countdowns.List)
			r.Post("/", countdowns.Create)
			r.Get("/{id}", countdowns.Get)
			r.Put("/{id}", countdowns.Update)
			r.Delete("/{id}", countdowns.Delete)
		})
	})

	r.Route("/blackbox", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/progress", blackbox.Progress)
		r.Post("/reset", blackbox.Reset)
		if deps.AnswerLimiter != nil {
			r.With(deps.AnswerLimiter.PerUser).Post("/answer", blackbox.SubmitAnswer)
		} else {
			r.Post("/answer", blackbox.SubmitAnswer)
		}

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/questions", blackbox.ListQuestions)
			r.Post("/questions", blackbox.CreateQuestion)
			r.Post("/questions/reorder", blackbox.ReorderQuestions)
			r.Get("/questions/{id}", blackbox.GetQuestion)
			r.Put("/questions/{id}", blackbox.UpdateQuestion)
			r.Delete("/questions/{id}", blackbox.DeleteQuestion)
			r.Post("/users/{userId}/reset", blackbox.ResetUser)
		})
	})

	return r
}
