package domain_test

import (
	"testing"
	"time"

	"dugod-content-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionSet() []domain.Question {
	return []domain.Question{
		{ID: "q3", Question: "Third", AnswerType: domain.AnswerAny, Secret: "s3", Order: 3, IsActive: true},
		{ID: "q1", Question: "First", Answer: "Paris", AnswerType: domain.AnswerExact, Secret: "s1", Order: 1, IsActive: true},
		{ID: "q2", Question: "Second", Answer: "42", AnswerType: domain.AnswerExact, Secret: "s2", Order: 2, IsActive: true},
	}
}

func TestBuildProgressNotStarted(t *testing.T) {
	p := domain.BuildProgress(questionSet(), nil)

	require.NotNil(t, p.NextQuestion)
	assert.Equal(t, "q1", p.NextQuestion.ID)
	assert.Equal(t, 3, p.TotalQuestions)
	assert.Equal(t, 0, p.AnsweredCount)
	assert.Equal(t, 3, p.RemainingCount)
	assert.Equal(t, domain.ProgressNotStarted, p.State)
	assert.Empty(t, p.AnsweredQuestions)
}

func TestBuildProgressAfterFirstAnswer(t *testing.T) {
	answeredAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := domain.BuildProgress(questionSet(), []domain.Answer{
		{UserID: "u1", QuestionID: "q1", Answer: "paris", AnsweredAt: answeredAt},
	})

	require.NotNil(t, p.NextQuestion)
	assert.Equal(t, 2, p.NextQuestion.Order)
	assert.Equal(t, 1, p.AnsweredCount)
	assert.Equal(t, 2, p.RemainingCount)
	assert.Equal(t, domain.ProgressInProgress, p.State)

	require.Len(t, p.AnsweredQuestions, 1)
	assert.Equal(t, "s1", p.AnsweredQuestions[0].Question.Secret)
	assert.Equal(t, "paris", p.AnsweredQuestions[0].UserAnswer)
	assert.True(t, answeredAt.Equal(p.AnsweredQuestions[0].AnsweredAt))
}

func TestBuildProgressCompleted(t *testing.T) {
	p := domain.BuildProgress(questionSet(), []domain.Answer{
		{QuestionID: "q1"}, {QuestionID: "q2"}, {QuestionID: "q3"},
	})
	require.Len(t, p.AnsweredQuestions, 3)
	assert.Equal(t, "q1", p.AnsweredQuestions[0].Question.ID)

	assert.Nil(t, p.NextQuestion)
	assert.Equal(t, 0, p.RemainingCount)
	assert.Equal(t, domain.ProgressCompleted, p.State)
	assert.Len(t, p.AnsweredQuestions, 3)
}

func TestBuildProgressNextIsMinimumUnansweredOrder(t *testing.T) {
	questions := []domain.Question{
		{ID: "a", Order: 40, IsActive: true, AnswerType: domain.AnswerAny},
		{ID: "b", Order: 7, IsActive: false, AnswerType: domain.AnswerAny},
		{ID: "c", Order: 12, IsActive: true, AnswerType: domain.AnswerAny},
		{ID: "d", Order: 3, IsActive: true, AnswerType: domain.AnswerAny},
		{ID: "e", Order: 25, IsActive: true, AnswerType: domain.AnswerAny},
	}
	answered := []domain.Answer{{QuestionID: "d"}, {QuestionID: "e"}}

	p := domain.BuildProgress(questions, answered)
	require.NotNil(t, p.NextQuestion)
	assert.Equal(t, "c", p.NextQuestion.ID)

	answeredSet := map[string]bool{"d": true, "e": true}
	for _, q := range questions {
		if q.IsActive && !answeredSet[q.ID] && q.ID != p.NextQuestion.ID {
			assert.Less(t, p.NextQuestion.Order, q.Order)
		}
	}
	assert.Equal(t, 4, p.TotalQuestions)
}

func TestNextQuestionHidesAnswerAndSecret(t *testing.T) {
	p := domain.BuildProgress(questionSet(), nil)
	assert.Equal(t, domain.PublicQuestion{ID: "q1", Question: "First", AnswerType: domain.AnswerExact, Order: 1}, *p.NextQuestion)
}

func TestMatchAnswerExactIgnoresCaseAndSpace(t *testing.T) {
	q := domain.Question{Answer: "Paris", AnswerType: domain.AnswerExact}
	for _, in := range []string{"Paris", "paris", " PARIS ", "\tpArIs\n"} {
		assert.True(t, domain.MatchAnswer(q, in), in)
	}
	for _, in := range []string{"Pari", "Paris!", "", "   "} {
		assert.False(t, domain.MatchAnswer(q, in), in)
	}
}

func TestMatchAnswerAny(t *testing.T) {
	q := domain.Question{AnswerType: domain.AnswerAny}
	for _, in := range []string{"x", "anything at all", " 0 "} {
		assert.True(t, domain.MatchAnswer(q, in), in)
	}
	assert.False(t, domain.MatchAnswer(q, ""))
	assert.False(t, domain.MatchAnswer(q, " \t "))

	_, err := domain.NormalizeAnswer("  ")
	assert.ErrorIs(t, err, domain.ErrEmptyAnswer)
}

func TestQuestionValidate(t *testing.T) {
	assert.NoError(t, domain.Question{AnswerType: domain.AnswerAny, Order: 1}.Validate())
	assert.ErrorIs(t, domain.Question{AnswerType: "fuzzy", Order: 1}.Validate(), domain.ErrInvalidAnswerType)
	assert.ErrorIs(t, domain.Question{AnswerType: domain.AnswerExact, Order: 1}.Validate(), domain.ErrMissingExpectedAnswer)
	assert.ErrorIs(t, domain.Question{AnswerType: domain.AnswerAny}.Validate(), domain.ErrInvalidOrder)
}

func TestReorderCompactsGaps(t *testing.T) {
	questions := []domain.Question{
		{ID: "a", Order: 10, IsActive: true},
		{ID: "b", Order: 5, IsActive: false},
		{ID: "c", Order: 30, IsActive: true},
		{ID: "d", Order: 1, IsActive: true},
	}
	changed, err := domain.Reorder(questions, nil)
	require.NoError(t, err)

	orders := map[string]int{}
	for _, q := range changed {
		orders[q.ID] = q.Order
	}
	assert.Equal(t, map[string]int{"a": 2, "c": 3, "b": 4}, orders)
}

func TestReorderExplicitList(t *testing.T) {
	changed, err := domain.Reorder(questionSet(), []string{"q3", "q1", "q2"})
	require.NoError(t, err)

	orders := map[string]int{}
	for _, q := range changed {
		orders[q.ID] = q.Order
	}
	assert.Equal(t, map[string]int{"q3": 1, "q1": 2, "q2": 3}, orders)
}

func TestReorderRejectsPartialOrUnknownLists(t *testing.T) {
	_, err := domain.Reorder(questionSet(), []string{"q1", "q2"})
	assert.ErrorIs(t, err, domain.ErrInvalidReorder)

	_, err = domain.Reorder(questionSet(), []string{"q1", "q2", "zz"})
	assert.ErrorIs(t, err, domain.ErrInvalidReorder)

	_, err = domain.Reorder(questionSet(), []string{"q1", "q1", "q2"})
	assert.ErrorIs(t, err, domain.ErrInvalidReorder)
}

func TestNextOrder(t *testing.T) {
	assert.Equal(t, 1, domain.NextOrder(nil))
	assert.Equal(t, 4, domain.NextOrder(questionSet()))
}
