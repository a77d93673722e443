package domain

import (
	"sort"
	"strings"
	"time"
)

// AnswerType decides how a submission is matched against a question.
type AnswerType string

const (
	// AnswerExact requires the submission to equal the expected answer, ignoring case and surrounding space.
	AnswerExact AnswerType = "exact"
	// AnswerAny accepts any non-empty submission.
	AnswerAny AnswerType = "any"
)

// Valid reports whether t is a known answer type.
func (t AnswerType) Valid() bool {
	return t == AnswerExact || t == AnswerAny
}

// Question is a Blackbox question. Order defines the global sequence; gaps are allowed.
type Question struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer,omitempty"`
	AnswerType AnswerType `json:"answerType"`
	Secret     string     `json:"secret"`
	Order      int        `json:"order"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Validate checks the invariants a stored question must hold.
func (q Question) Validate() error {
	if !q.AnswerType.Valid() {
		return ErrInvalidAnswerType
	}
	if q.AnswerType == AnswerExact && strings.TrimSpace(q.Answer) == "" {
		return ErrMissingExpectedAnswer
	}
	if q.Order <= 0 {
		return ErrInvalidOrder
	}
	return nil
}

// Public strips the expected answer and the secret.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:         q.ID,
		Question:   q.Question,
		AnswerType: q.AnswerType,
		Order:      q.Order,
	}
}

// PublicQuestion is the view of a question a user sees before answering it.
type PublicQuestion struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	AnswerType AnswerType `json:"answerType"`
	Order      int        `json:"order"`
}

// RevealedQuestion is the view of a question a user has already answered.
type RevealedQuestion struct {
	PublicQuestion
	Secret string `json:"secret"`
}

// Answer is a user's recorded correct submission for a question.
type Answer struct {
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId"`
	Answer     string    `json:"answer"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// AnsweredQuestion pairs a revealed question with the user's submission.
type AnsweredQuestion struct {
	Question   RevealedQuestion `json:"question"`
	UserAnswer string           `json:"userAnswer"`
	AnsweredAt time.Time        `json:"answeredAt"`
}

// ProgressState is the per-user position in the question sequence.
type ProgressState string

const (
	ProgressNotStarted ProgressState = "not_started"
	ProgressInProgress ProgressState = "in_progress"
	ProgressCompleted  ProgressState = "completed"
)

// Progress is a user's Blackbox progress snapshot.
type Progress struct {
	AnsweredQuestions []AnsweredQuestion `json:"answeredQuestions"`
	NextQuestion      *PublicQuestion    `json:"nextQuestion"`
	TotalQuestions    int                `json:"totalQuestions"`
	AnsweredCount     int                `json:"answeredCount"`
	RemainingCount    int                `json:"remainingCount"`
	State             ProgressState      `json:"state"`
}

// AnswerResult is the outcome of a submission. Secret is only set when the answer was correct.
type AnswerResult struct {
	IsCorrect bool   `json:"isCorrect"`
	Secret    string `json:"secret,omitempty"`
}

// SortQuestions orders questions by Order, then creation time, then id.
func SortQuestions(questions []Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Order != questions[j].Order {
			return questions[i].Order < questions[j].Order
		}
		if !questions[i].CreatedAt.Equal(questions[j].CreatedAt) {
			return questions[i].CreatedAt.Before(questions[j].CreatedAt)
		}
		return questions[i].ID < questions[j].ID
	})
}

// BuildProgress derives a user's progress from the question set and the user's answers.
// The next question is the lowest-order active question without an answer.
func BuildProgress(questions []Question, answers []Answer) Progress {
	sorted := make([]Question, len(questions))
	copy(sorted, questions)
	SortQuestions(sorted)

	byQuestion := make(map[string]Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	progress := Progress{AnsweredQuestions: []AnsweredQuestion{}}
	for _, q := range sorted {
		answer, answered := byQuestion[q.ID]
		if answered {
			progress.AnsweredQuestions = append(progress.AnsweredQuestions, AnsweredQuestion{
				Question:   RevealedQuestion{PublicQuestion: q.Public(), Secret: q.Secret},
				UserAnswer: answer.Answer,
				AnsweredAt: answer.AnsweredAt,
			})
		}
		if !q.IsActive {
			continue
		}
		progress.TotalQuestions++
		if answered {
			progress.AnsweredCount++
			continue
		}
		if progress.NextQuestion == nil {
			next := q.Public()
			progress.NextQuestion = &next
		}
	}
	progress.RemainingCount = progress.TotalQuestions - progress.AnsweredCount

	switch {
	case progress.NextQuestion == nil:
		progress.State = ProgressCompleted
	case progress.AnsweredCount == 0:
		progress.State = ProgressNotStarted
	default:
		progress.State = ProgressInProgress
	}
	return progress
}

// NormalizeAnswer trims a submission and rejects blank input.
func NormalizeAnswer(raw string) (string, error) {
	answer := strings.TrimSpace(raw)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// MatchAnswer reports whether submitted satisfies q.
func MatchAnswer(q Question, submitted string) bool {
	answer, err := NormalizeAnswer(submitted)
	if err != nil {
		return false
	}
	switch q.AnswerType {
	case AnswerAny:
		return true
	case AnswerExact:
		return strings.EqualFold(answer, strings.TrimSpace(q.Answer))
	default:
		return false
	}
}

// NextOrder returns the order a newly appended question should get.
func NextOrder(questions []Question) int {
	max := 0
	for _, q := range questions {
		if q.Order > max {
			max = q.Order
		}
	}
	return max + 1
}

// Reorder renumbers questions. With an empty ids list the current sequence is compacted
// to 1..n; otherwise ids must list every active question exactly once and sets their order.
// Inactive questions keep their relative order after the active ones.
// It returns only the questions whose order changed.
func Reorder(questions []Question, ids []string) ([]Question, error) {
	sorted := make([]Question, len(questions))
	copy(sorted, questions)
	SortQuestions(sorted)

	var active, inactive []Question
	for _, q := range sorted {
		if q.IsActive {
			active = append(active, q)
		} else {
			inactive = append(inactive, q)
		}
	}

	if len(ids) > 0 {
		if len(ids) != len(active) {
			return nil, ErrInvalidReorder
		}
		byID := make(map[string]Question, len(active))
		for _, q := range active {
			byID[q.ID] = q
		}
		ordered := make([]Question, 0, len(ids))
		for _, id := range ids {
			q, ok := byID[id]
			if !ok {
				return nil, ErrInvalidReorder
			}
			delete(byID, id)
			ordered = append(ordered, q)
		}
		active = ordered
	}

	changed := make([]Question, 0, len(sorted))
	order := 1
	for _, group := range [][]Question{active, inactive} {
		for _, q := range group {
			if q.Order != order {
				q.Order = order
				changed = append(changed, q)
			}
			order++
		}
	}
	return changed, nil
}
