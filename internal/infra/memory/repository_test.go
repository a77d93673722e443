package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dugod-content-service/internal/domain"
)

func TestCountdownRepositoryKeepsSingleActive(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewCountdownRepository(
		domain.Countdown{ID: "c1", Title: "Launch", IsActive: true, CreatedAt: now},
	)

	if err := repo.Save(ctx, domain.Countdown{ID: "c2", Title: "Relaunch", IsActive: true, CreatedAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	active, err := repo.Active(ctx)
	if err != nil || active == nil || active.ID != "c2" {
		t.Fatalf("expected c2 active, got %+v err=%v", active, err)
	}
	first, _ := repo.Get(ctx, "c1")
	if first.IsActive {
		t.Fatalf("expected c1 to be deactivated")
	}

	list, _ := repo.List(ctx)
	if len(list) != 2 || list[0].ID != "c2" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	if err := repo.Delete(ctx, "c2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if active, _ := repo.Active(ctx); active != nil {
		t.Fatalf("expected no active countdown, got %+v", active)
	}
	if err := repo.Delete(ctx, "c2"); !errors.Is(err, domain.ErrCountdownNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAnswerRepositoryRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewBlackboxStore(sampleQuestions()...)
	answers := store.Answers()

	if err := answers.Record(ctx, domain.Answer{UserID: "u1", QuestionID: "q1", Answer: "Paris"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := answers.Record(ctx, domain.Answer{UserID: "u1", QuestionID: "q1", Answer: "Paris"}); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	if err := answers.Record(ctx, domain.Answer{UserID: "u1", QuestionID: "nope"}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected unknown question, got %v", err)
	}

	removed, err := answers.DeleteByUser(ctx, "u1")
	if err != nil || removed != 1 {
		t.Fatalf("expected one removed answer, got %d err=%v", removed, err)
	}
	list, _ := answers.ListByUser(ctx, "u1")
	if len(list) != 0 {
		t.Fatalf("expected no answers, got %+v", list)
	}
}

func TestDeletingQuestionDropsAnswers(t *testing.T) {
	ctx := context.Background()
	store := NewBlackboxStore(sampleQuestions()...)
	_ = store.Answers().Record(ctx, domain.Answer{UserID: "u1", QuestionID: "q1"})
	_ = store.Answers().Record(ctx, domain.Answer{UserID: "u2", QuestionID: "q1"})

	if err := store.Questions().Delete(ctx, "q1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, user := range []string{"u1", "u2"} {
		list, _ := store.Answers().ListByUser(ctx, user)
		if len(list) != 0 {
			t.Fatalf("expected answers for %s removed, got %+v", user, list)
		}
	}
}

func TestUpdateOrdersOnlyTouchesOrder(t *testing.T) {
	ctx := context.Background()
	store := NewBlackboxStore(sampleQuestions()...)
	questions := store.Questions()

	if err := questions.UpdateOrders(ctx, []domain.Question{{ID: "q1", Order: 9}}); err != nil {
		t.Fatalf("update orders: %v", err)
	}
	q, _ := questions.Get(ctx, "q1")
	if q.Order != 9 || q.Secret != "s1" {
		t.Fatalf("unexpected question after reorder: %+v", q)
	}

	list, _ := questions.List(ctx)
	if list[0].ID != "q2" {
		t.Fatalf("expected q2 first after reorder, got %s", list[0].ID)
	}
	if err := questions.UpdateOrders(ctx, []domain.Question{{ID: "missing", Order: 1}}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
