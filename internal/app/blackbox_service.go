package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"dugod-content-service/internal/domain"
	"dugod-content-service/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// QuestionInput carries the editable fields of a question. Nil Order and IsActive keep
// the current value on update and default to "append" and true on create.
type QuestionInput struct {
	Question   string
	Answer     string
	AnswerType domain.AnswerType
	Secret     string
	Order      *int
	IsActive   *bool
}

// BlackboxService enforces the sequential question gate.
type BlackboxService struct {
	questions QuestionRepository
	answers   AnswerRepository
	cache     Cache
	guard     SubmissionGuard
	log       logrus.FieldLogger
	now       func() time.Time
	sf        singleflight.Group
}

func NewBlackboxService(questions QuestionRepository, answers AnswerRepository, cache Cache, guard SubmissionGuard, log logrus.FieldLogger) *BlackboxService {
	return NewBlackboxServiceWithClock(questions, answers, cache, guard, log, time.Now)
}

// NewBlackboxServiceWithClock allows deterministic timestamps in tests.
func NewBlackboxServiceWithClock(questions QuestionRepository, answers AnswerRepository, cache Cache, guard SubmissionGuard, log logrus.FieldLogger, now func() time.Time) *BlackboxService {
	return &BlackboxService{
		questions: questions,
		answers:   answers,
		cache:     cache,
		guard:     guard,
		log:       log.WithField("component", "blackbox"),
		now:       now,
	}
}

// Progress returns the user's progress snapshot.
func (s *BlackboxService) Progress(ctx context.Context, userID string) (domain.Progress, error) {
	questions, answers, err := s.load(ctx, userID)
	if err != nil {
		return domain.Progress{}, err
	}
	return domain.BuildProgress(questions, answers), nil
}

// SubmitAnswer checks answer against the user's next question. A wrong answer changes nothing;
// a correct one is recorded and reveals the question's secret.
func (s *BlackboxService) SubmitAnswer(ctx context.Context, userID, questionID, answer string) (domain.AnswerResult, error) {
	normalized, err := domain.NormalizeAnswer(answer)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	release, err := s.guard.Acquire(ctx, userID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	defer release()

	questions, answers, err := s.load(ctx, userID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	progress := domain.BuildProgress(questions, answers)
	if progress.NextQuestion == nil {
		metrics.BlackboxAnswers.WithLabelValues("rejected").Inc()
		return domain.AnswerResult{}, domain.ErrProgressCompleted
	}
	if progress.NextQuestion.ID != questionID {
		metrics.BlackboxAnswers.WithLabelValues("rejected").Inc()
		invalidate(ctx, s.cache, &s.sf, s.log, answersKey(userID))
		return domain.AnswerResult{}, domain.ErrNotNextQuestion
	}

	question, ok := findQuestion(questions, questionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrQuestionNotFound
	}
	if !domain.MatchAnswer(question, normalized) {
		metrics.BlackboxAnswers.WithLabelValues("incorrect").Inc()
		return domain.AnswerResult{IsCorrect: false}, nil
	}

	err = s.answers.Record(ctx, domain.Answer{
		UserID:     userID,
		QuestionID: questionID,
		Answer:     normalized,
		AnsweredAt: s.now().UTC(),
	})
	invalidate(ctx, s.cache, &s.sf, s.log, answersKey(userID))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyAnswered) {
			metrics.BlackboxAnswers.WithLabelValues("rejected").Inc()
		}
		return domain.AnswerResult{}, err
	}

	metrics.BlackboxAnswers.WithLabelValues("correct").Inc()
	s.log.WithFields(logrus.Fields{"user_id": userID, "question_id": questionID}).Info("question answered")
	return domain.AnswerResult{IsCorrect: true, Secret: question.Secret}, nil
}

// Reset clears every answer of the user.
func (s *BlackboxService) Reset(ctx context.Context, userID string) (int, error) {
	removed, err := s.answers.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	invalidate(ctx, s.cache, &s.sf, s.log, answersKey(userID))
	s.log.WithFields(logrus.Fields{"user_id": userID, "removed": removed}).Info("progress reset")
	return removed, nil
}

// ListQuestions returns every question in sequence order.
func (s *BlackboxService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.cachedQuestions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	domain.SortQuestions(out)
	return out, nil
}

func (s *BlackboxService) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	return s.questions.Get(ctx, id)
}

func (s *BlackboxService) CreateQuestion(ctx context.Context, in QuestionInput) (domain.Question, error) {
	now := s.now().UTC()
	q := domain.Question{
		ID:        uuid.NewString(),
		IsActive:  true,
		CreatedAt: now,
	}
	if in.Order == nil {
		existing, err := s.questions.List(ctx)
		if err != nil {
			return domain.Question{}, err
		}
		q.Order = domain.NextOrder(existing)
	}
	applyQuestionInput(&q, in)
	q.UpdatedAt = now
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}

	if err := s.questions.Save(ctx, q); err != nil {
		return domain.Question{}, err
	}
	invalidate(ctx, s.cache, &s.sf, s.log, questionsKey)
	s.log.WithFields(logrus.Fields{"question_id": q.ID, "order": q.Order}).Info("question created")
	return q, nil
}

func (s *BlackboxService) UpdateQuestion(ctx context.Context, id string, in QuestionInput) (domain.Question, error) {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	applyQuestionInput(&q, in)
	q.UpdatedAt = s.now().UTC()
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}

	if err := s.questions.Save(ctx, q); err != nil {
		return domain.Question{}, err
	}
	invalidate(ctx, s.cache, &s.sf, s.log, questionsKey)
	s.log.WithField("question_id", q.ID).Info("question updated")
	return q, nil
}

func (s *BlackboxService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, &s.sf, s.log, questionsKey)
	s.log.WithField("question_id", id).Info("question deleted")
	return nil
}

// ReorderQuestions renumbers the sequence; see domain.Reorder. Recorded answers are untouched.
func (s *BlackboxService) ReorderQuestions(ctx context.Context, ids []string) ([]domain.Question, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, err
	}
	changed, err := domain.Reorder(questions, ids)
	if err != nil {
		return nil, err
	}
	if len(changed) > 0 {
		if err := s.questions.UpdateOrders(ctx, changed); err != nil {
			return nil, err
		}
		invalidate(ctx, s.cache, &s.sf, s.log, questionsKey)
	}
	s.log.WithField("changed", len(changed)).Info("questions reordered")

	byID := make(map[string]int, len(changed))
	for _, q := range changed {
		byID[q.ID] = q.Order
	}
	for i := range questions {
		if order, ok := byID[questions[i].ID]; ok {
			questions[i].Order = order
		}
	}
	domain.SortQuestions(questions)
	return questions, nil
}

func (s *BlackboxService) load(ctx context.Context, userID string) ([]domain.Question, []domain.Answer, error) {
	questions, err := s.cachedQuestions(ctx)
	if err != nil {
		return nil, nil, err
	}
	answers, err := readThrough(ctx, s.cache, &s.sf, s.log, answersKey(userID), func(ctx context.Context) ([]domain.Answer, error) {
		return s.answers.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, nil, err
	}
	return questions, answers, nil
}

func (s *BlackboxService) cachedQuestions(ctx context.Context) ([]domain.Question, error) {
	return readThrough(ctx, s.cache, &s.sf, s.log, questionsKey, s.questions.List)
}

func findQuestion(questions []domain.Question, id string) (domain.Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

func applyQuestionInput(q *domain.Question, in QuestionInput) {
	q.Question = strings.TrimSpace(in.Question)
	q.Answer = strings.TrimSpace(in.Answer)
	q.AnswerType = in.AnswerType
	q.Secret = in.Secret
	if in.Order != nil {
		q.Order = *in.Order
	}
	if in.IsActive != nil {
		q.IsActive = *in.IsActive
	}
}
