package app

import (
	"context"
	"strings"
	"time"

	"dugod-content-service/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CountdownInput carries the editable fields of a countdown.
type CountdownInput struct {
	Title           string
	Description     string
	LaunchDate      string
	IsActive        bool
	ShowDays        bool
	ShowHours       bool
	ShowMinutes     bool
	ShowSeconds     bool
	BackgroundColor string
	TextColor       string
	AccentColor     string
	BackgroundImage string
	ButtonText      string
	ButtonLink      string
	Timezone        string
	ExpiredMessage  string
}

// CountdownService contains the countdown use cases.
type CountdownService struct {
	repo   CountdownRepository
	cache  Cache
	ticker *Ticker
	log    logrus.FieldLogger
	now    func() time.Time
	sf     singleflight.Group
}

func NewCountdownService(repo CountdownRepository, cache Cache, ticker *Ticker, log logrus.FieldLogger) *CountdownService {
	return NewCountdownServiceWithClock(repo, cache, ticker, log, time.Now)
}

// NewCountdownServiceWithClock allows deterministic timestamps in tests.
func NewCountdownServiceWithClock(repo CountdownRepository, cache Cache, ticker *Ticker, log logrus.FieldLogger, now func() time.Time) *CountdownService {
	return &CountdownService{
		repo:   repo,
		cache:  cache,
		ticker: ticker,
		log:    log.WithField("component", "countdown"),
		now:    now,
	}
}

type activeEntry struct {
	Countdown *domain.Countdown `json:"countdown"`
}

// Active returns the countdown currently designated for public display, or nil.
func (s *CountdownService) Active(ctx context.Context) (*domain.Countdown, error) {
	entry, err := readThrough(ctx, s.cache, &s.sf, s.log, activeCountdownKey, func(ctx context.Context) (activeEntry, error) {
		c, err := s.repo.Active(ctx)
		return activeEntry{Countdown: c}, err
	})
	if err != nil {
		return nil, err
	}
	if entry.Countdown == nil {
		return nil, nil
	}
	c := s.withStatus(*entry.Countdown)
	return &c, nil
}

func (s *CountdownService) Get(ctx context.Context, id string) (domain.Countdown, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Countdown{}, err
	}
	return s.withStatus(c), nil
}

func (s *CountdownService) List(ctx context.Context) ([]domain.Countdown, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = s.withStatus(list[i])
	}
	return list, nil
}

// Remaining returns the remaining time for a countdown together with its display toggles.
func (s *CountdownService) Remaining(ctx context.Context, id string) (domain.Countdown, domain.TimeRemaining, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return domain.Countdown{}, domain.TimeRemaining{}, err
	}
	return c, c.RemainingAt(s.now()), nil
}

func (s *CountdownService) Create(ctx context.Context, in CountdownInput) (domain.Countdown, error) {
	now := s.now().UTC()
	c := domain.Countdown{ID: uuid.NewString(), CreatedAt: now}
	if err := applyCountdownInput(&c, in); err != nil {
		return domain.Countdown{}, err
	}
	c.UpdatedAt = now
	c.Status = c.StatusAt(now)

	if err := s.repo.Save(ctx, c); err != nil {
		return domain.Countdown{}, err
	}
	invalidate(ctx, s.cache, &s.sf, s.log, activeCountdownKey)
	s.log.WithFields(logrus.Fields{"countdown_id": c.ID, "active": c.IsActive}).Info("countdown created")
	return c, nil
}

func (s *CountdownService) Update(ctx context.Context, id string, in CountdownInput) (domain.Countdown, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Countdown{}, err
	}
	if err := applyCountdownInput(&c, in); err != nil {
		return domain.Countdown{}, err
	}
	now := s.now().UTC()
	c.UpdatedAt = now
	c.Status = c.StatusAt(now)

	if err := s.repo.Save(ctx, c); err != nil {
		return domain.Countdown{}, err
	}
	invalidate(ctx, s.cache, &s.sf, s.log, activeCountdownKey)
	s.log.WithFields(logrus.Fields{"countdown_id": c.ID, "active": c.IsActive}).Info("countdown updated")
	return c, nil
}

func (s *CountdownService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, &s.sf, s.log, activeCountdownKey)
	s.log.WithField("countdown_id", id).Info("countdown deleted")
	return nil
}

// Watch streams the remaining time of the active countdown until it expires or ctx is done.
func (s *CountdownService) Watch(ctx context.Context) (domain.Countdown, <-chan domain.TimeRemaining, error) {
	c, err := s.Active(ctx)
	if err != nil {
		return domain.Countdown{}, nil, err
	}
	if c == nil {
		return domain.Countdown{}, nil, domain.ErrCountdownNotFound
	}
	return *c, s.ticker.Watch(ctx, c.LaunchDate), nil
}

// RemainingOf computes the remaining time of c on the service clock.
func (s *CountdownService) RemainingOf(c domain.Countdown) domain.TimeRemaining {
	return c.RemainingAt(s.now())
}

func (s *CountdownService) withStatus(c domain.Countdown) domain.Countdown {
	c.Status = c.StatusAt(s.now())
	return c
}

func applyCountdownInput(c *domain.Countdown, in CountdownInput) error {
	launch, err := domain.ParseLaunchDate(in.LaunchDate)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.ErrEmptyTitle
	}
	c.Title = title
	c.Description = in.Description
	c.LaunchDate = launch
	c.IsActive = in.IsActive
	c.ShowDays = in.ShowDays
	c.ShowHours = in.ShowHours
	c.ShowMinutes = in.ShowMinutes
	c.ShowSeconds = in.ShowSeconds
	c.BackgroundColor = in.BackgroundColor
	c.TextColor = in.TextColor
	c.AccentColor = in.AccentColor
	c.BackgroundImage = in.BackgroundImage
	c.ButtonText = in.ButtonText
	c.ButtonLink = in.ButtonLink
	c.Timezone = in.Timezone
	c.ExpiredMessage = in.ExpiredMessage
	return nil
}
