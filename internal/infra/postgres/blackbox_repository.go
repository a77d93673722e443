package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dugod-content-service/internal/domain"
	"dugod-content-service/internal/metrics"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	questionColumns = `id, question, answer, answer_type, secret, sort_order, is_active, created_at, updated_at`

	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// QuestionRepository stores Blackbox questions in Postgres.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func (r *QuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	defer metrics.RecordDBOperation("list", "blackbox_questions", time.Now())
	rows, err := r.pool.Query(ctx, `SELECT `+questionColumns+` FROM blackbox_questions ORDER BY sort_order, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	out := []domain.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *QuestionRepository) Get(ctx context.Context, id string) (domain.Question, error) {
	defer metrics.RecordDBOperation("get", "blackbox_questions", time.Now())
	q, err := scanQuestion(r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM blackbox_questions WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

func (r *QuestionRepository) Save(ctx context.Context, q domain.Question) error {
	defer metrics.RecordDBOperation("save", "blackbox_questions", time.Now())
	_, err := r.pool.Exec(ctx, `INSERT INTO blackbox_questions (`+questionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			question=EXCLUDED.question, answer=EXCLUDED.answer, answer_type=EXCLUDED.answer_type,
			secret=EXCLUDED.secret, sort_order=EXCLUDED.sort_order, is_active=EXCLUDED.is_active,
			updated_at=EXCLUDED.updated_at`,
		q.ID, q.Question, q.Answer, string(q.AnswerType), q.Secret, q.Order, q.IsActive, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (r *QuestionRepository) UpdateOrders(ctx context.Context, questions []domain.Question) error {
	defer metrics.RecordDBOperation("reorder", "blackbox_questions", time.Now())
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(`UPDATE blackbox_questions SET sort_order=$2, updated_at=NOW() WHERE id=$1`, q.ID, q.Order)
	}
	results := tx.SendBatch(ctx, batch)
	for range questions {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("update order: %w", err)
		}
		if tag.RowsAffected() == 0 {
			results.Close()
			return domain.ErrQuestionNotFound
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	defer metrics.RecordDBOperation("delete", "blackbox_questions", time.Now())
	// blackbox_answers rows go with it through ON DELETE CASCADE
	tag, err := r.pool.Exec(ctx, `DELETE FROM blackbox_questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// AnswerRepository stores per-user answers in Postgres.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

func (r *AnswerRepository) ListByUser(ctx context.Context, userID string) ([]domain.Answer, error) {
	defer metrics.RecordDBOperation("list", "blackbox_answers", time.Now())
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, question_id, answer, answered_at FROM blackbox_answers WHERE user_id=$1 ORDER BY answered_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	out := []domain.Answer{}
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.UserID, &a.QuestionID, &a.Answer, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.AnsweredAt = a.AnsweredAt.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnswerRepository) Record(ctx context.Context, a domain.Answer) error {
	defer metrics.RecordDBOperation("record", "blackbox_answers", time.Now())
	_, err := r.pool.Exec(ctx,
		`INSERT INTO blackbox_answers (user_id, question_id, answer, answered_at) VALUES ($1,$2,$3,$4)`,
		a.UserID, a.QuestionID, a.Answer, a.AnsweredAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return domain.ErrAlreadyAnswered
		case foreignKeyViolation:
			return domain.ErrQuestionNotFound
		}
	}
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

func (r *AnswerRepository) DeleteByUser(ctx context.Context, userID string) (int, error) {
	defer metrics.RecordDBOperation("reset", "blackbox_answers", time.Now())
	tag, err := r.pool.Exec(ctx, `DELETE FROM blackbox_answers WHERE user_id=$1`, userID)
	if err != nil {
		return 0, fmt.Errorf("reset answers: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	var answerType string
	err := row.Scan(&q.ID, &q.Question, &q.Answer, &answerType, &q.Secret, &q.Order, &q.IsActive, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return domain.Question{}, err
	}
	q.AnswerType = domain.AnswerType(answerType)
	q.CreatedAt = q.CreatedAt.UTC()
	q.UpdatedAt = q.UpdatedAt.UTC()
	return q, nil
}
