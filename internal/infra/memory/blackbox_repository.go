package memory

import (
	"context"
	"sync"

	"dugod-content-service/internal/domain"
)

// BlackboxStore keeps questions and answers together so deleting a question
// can drop its answers atomically. It implements both app.QuestionRepository
// (through Questions) and app.AnswerRepository (through Answers).
type BlackboxStore struct {
	mu        sync.RWMutex
	questions map[string]domain.Question
	// answers[userID][questionID]
	answers map[string]map[string]domain.Answer
}

func NewBlackboxStore(seed ...domain.Question) *BlackboxStore {
	s := &BlackboxStore{
		questions: make(map[string]domain.Question),
		answers:   make(map[string]map[string]domain.Answer),
	}
	for _, q := range seed {
		s.questions[q.ID] = q
	}
	return s
}

// Questions returns the question repository view of the store.
func (s *BlackboxStore) Questions() *QuestionRepository {
	return &QuestionRepository{store: s}
}

// Answers returns the answer repository view of the store.
func (s *BlackboxStore) Answers() *AnswerRepository {
	return &AnswerRepository{store: s}
}

type QuestionRepository struct {
	store *BlackboxStore
}

func (r *QuestionRepository) List(_ context.Context) ([]domain.Question, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Question, 0, len(r.store.questions))
	for _, q := range r.store.questions {
		out = append(out, q)
	}
	domain.SortQuestions(out)
	return out, nil
}

func (r *QuestionRepository) Get(_ context.Context, id string) (domain.Question, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	q, ok := r.store.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (r *QuestionRepository) Save(_ context.Context, q domain.Question) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.questions[q.ID] = q
	return nil
}

func (r *QuestionRepository) UpdateOrders(_ context.Context, questions []domain.Question) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, q := range questions {
		if _, ok := r.store.questions[q.ID]; !ok {
			return domain.ErrQuestionNotFound
		}
	}
	for _, q := range questions {
		current := r.store.questions[q.ID]
		current.Order = q.Order
		r.store.questions[q.ID] = current
	}
	return nil
}

func (r *QuestionRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(r.store.questions, id)
	for _, byQuestion := range r.store.answers {
		delete(byQuestion, id)
	}
	return nil
}

type AnswerRepository struct {
	store *BlackboxStore
}

func (r *AnswerRepository) ListByUser(_ context.Context, userID string) ([]domain.Answer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	byQuestion := r.store.answers[userID]
	out := make([]domain.Answer, 0, len(byQuestion))
	for _, a := range byQuestion {
		out = append(out, a)
	}
	return out, nil
}

func (r *AnswerRepository) Record(_ context.Context, a domain.Answer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.questions[a.QuestionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	byQuestion, ok := r.store.answers[a.UserID]
	if !ok {
		byQuestion = make(map[string]domain.Answer)
		r.store.answers[a.UserID] = byQuestion
	}
	if _, exists := byQuestion[a.QuestionID]; exists {
		return domain.ErrAlreadyAnswered
	}
	byQuestion[a.QuestionID] = a
	return nil
}

func (r *AnswerRepository) DeleteByUser(_ context.Context, userID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	removed := len(r.store.answers[userID])
	delete(r.store.answers, userID)
	return removed, nil
}
