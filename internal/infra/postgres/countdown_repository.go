package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dugod-content-service/internal/domain"
	"dugod-content-service/internal/metrics"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const countdownColumns = `id, title, description, launch_date, is_active, status,
	show_days, show_hours, show_minutes, show_seconds,
	background_color, text_color, accent_color, background_image,
	button_text, button_link, timezone, expired_message, created_at, updated_at`

// CountdownRepository stores countdowns in Postgres.
type CountdownRepository struct {
	pool *pgxpool.Pool
}

func NewCountdownRepository(pool *pgxpool.Pool) *CountdownRepository {
	return &CountdownRepository{pool: pool}
}

func (r *CountdownRepository) List(ctx context.Context) ([]domain.Countdown, error) {
	defer metrics.RecordDBOperation("list", "countdowns", time.Now())
	rows, err := r.pool.Query(ctx, `SELECT `+countdownColumns+` FROM countdowns ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list countdowns: %w", err)
	}
	defer rows.Close()

	out := []domain.Countdown{}
	for rows.Next() {
		c, err := scanCountdown(rows)
		if err != nil {
			return nil, fmt.Errorf("scan countdown: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CountdownRepository) Get(ctx context.Context, id string) (domain.Countdown, error) {
	defer metrics.RecordDBOperation("get", "countdowns", time.Now())
	c, err := scanCountdown(r.pool.QueryRow(ctx, `SELECT `+countdownColumns+` FROM countdowns WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Countdown{}, domain.ErrCountdownNotFound
	}
	if err != nil {
		return domain.Countdown{}, fmt.Errorf("get countdown: %w", err)
	}
	return c, nil
}

func (r *CountdownRepository) Active(ctx context.Context) (*domain.Countdown, error) {
	defer metrics.RecordDBOperation("active", "countdowns", time.Now())
	c, err := scanCountdown(r.pool.QueryRow(ctx, `SELECT `+countdownColumns+` FROM countdowns WHERE is_active LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active countdown: %w", err)
	}
	return &c, nil
}

func (r *CountdownRepository) Save(ctx context.Context, c domain.Countdown) error {
	defer metrics.RecordDBOperation("save", "countdowns", time.Now())
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if c.IsActive {
		if _, err := tx.Exec(ctx,
			`UPDATE countdowns SET is_active=FALSE, updated_at=$2 WHERE is_active AND id<>$1`,
			c.ID, c.UpdatedAt); err != nil {
			return fmt.Errorf("deactivate countdowns: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `INSERT INTO countdowns (`+countdownColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		ON CONFLICT (id) DO UPDATE SET
			title=EXCLUDED.title, description=EXCLUDED.description, launch_date=EXCLUDED.launch_date,
			is_active=EXCLUDED.is_active, status=EXCLUDED.status,
			show_days=EXCLUDED.show_days, show_hours=EXCLUDED.show_hours,
			show_minutes=EXCLUDED.show_minutes, show_seconds=EXCLUDED.show_seconds,
			background_color=EXCLUDED.background_color, text_color=EXCLUDED.text_color,
			accent_color=EXCLUDED.accent_color, background_image=EXCLUDED.background_image,
			button_text=EXCLUDED.button_text, button_link=EXCLUDED.button_link,
			timezone=EXCLUDED.timezone, expired_message=EXCLUDED.expired_message,
			updated_at=EXCLUDED.updated_at`,
		c.ID, c.Title, c.Description, c.LaunchDate, c.IsActive, string(c.Status),
		c.ShowDays, c.ShowHours, c.ShowMinutes, c.ShowSeconds,
		c.BackgroundColor, c.TextColor, c.AccentColor, c.BackgroundImage,
		c.ButtonText, c.ButtonLink, c.Timezone, c.ExpiredMessage, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save countdown: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *CountdownRepository) Delete(ctx context.Context, id string) error {
	defer metrics.RecordDBOperation("delete", "countdowns", time.Now())
	tag, err := r.pool.Exec(ctx, `DELETE FROM countdowns WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete countdown: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCountdownNotFound
	}
	return nil
}

func scanCountdown(row pgx.Row) (domain.Countdown, error) {
	var c domain.Countdown
	var status string
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.LaunchDate, &c.IsActive, &status,
		&c.ShowDays, &c.ShowHours, &c.ShowMinutes, &c.ShowSeconds,
		&c.BackgroundColor, &c.TextColor, &c.AccentColor, &c.BackgroundImage,
		&c.ButtonText, &c.ButtonLink, &c.Timezone, &c.ExpiredMessage, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Countdown{}, err
	}
	c.Status = domain.CountdownStatus(status)
	c.LaunchDate = c.LaunchDate.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
