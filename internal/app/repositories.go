package app

import (
	"context"

	"dugod-content-service/internal/domain"
)

// CountdownRepository persists countdowns (in-memory, Postgres).
type CountdownRepository interface {
	List(ctx context.Context) ([]domain.Countdown, error)
	Get(ctx context.Context, id string) (domain.Countdown, error)
	// Active returns the countdown flagged active, or nil when there is none.
	Active(ctx context.Context) (*domain.Countdown, error)
	// Save inserts or replaces c. Saving an active countdown deactivates every other one.
	Save(ctx context.Context, c domain.Countdown) error
	Delete(ctx context.Context, id string) error
}

// QuestionRepository persists Blackbox questions.
type QuestionRepository interface {
	List(ctx context.Context) ([]domain.Question, error)
	Get(ctx context.Context, id string) (domain.Question, error)
	Save(ctx context.Context, q domain.Question) error
	// UpdateOrders writes the Order field of each question in one step.
	UpdateOrders(ctx context.Context, questions []domain.Question) error
	// Delete removes the question together with every answer recorded for it.
	Delete(ctx context.Context, id string) error
}

// AnswerRepository persists per-user correct answers.
type AnswerRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Answer, error)
	// Record stores a; it returns domain.ErrAlreadyAnswered when the user already answered the question.
	Record(ctx context.Context, a domain.Answer) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

// SubmissionGuard serialises answer submissions per user.
type SubmissionGuard interface {
	// Acquire returns domain.ErrSubmissionInProgress while another holder exists.
	Acquire(ctx context.Context, userID string) (release func(), err error)
}
