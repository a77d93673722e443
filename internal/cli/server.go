package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dugod-content-service/internal/app"
	"dugod-content-service/internal/config"
	"dugod-content-service/internal/domain"
	"dugod-content-service/internal/infra/memory"
	"dugod-content-service/internal/infra/postgres"
	infraredis "dugod-content-service/internal/infra/redis"
	transport "dugod-content-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type repositories struct {
	countdowns app.CountdownRepository
	questions  app.QuestionRepository
	answers    app.AnswerRepository
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	repos := repositories{}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		repos.countdowns = postgres.NewCountdownRepository(pool)
		repos.questions = postgres.NewQuestionRepository(pool)
		repos.answers = postgres.NewAnswerRepository(pool)
		log.Info("using postgres storage")
	} else {
		store := memory.NewBlackboxStore(sampleQuestions(time.Now().UTC())...)
		repos.countdowns = memory.NewCountdownRepository(sampleCountdown(time.Now().UTC()))
		repos.questions = store.Questions()
		repos.answers = store.Answers()
		log.Warn("postgres not configured, using in-memory storage with demo data")
	}

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	lockTTL := config.TTLDuration(cfg.Blackbox.SubmitLockTTL, 10*time.Second)

	var cache app.Cache
	var guard app.SubmissionGuard
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		cache = infraredis.NewCache(client, cacheTTL)
		guard = infraredis.NewSubmissionGuard(client, lockTTL)
		log.WithField("addr", cfg.Redis.Addr).Info("using redis cache")
	} else {
		cache = memory.NewCache(cacheTTL)
		guard = memory.NewSubmissionGuard()
	}

	ticker := app.NewTicker(config.TTLDuration(cfg.Countdown.TickInterval, app.DefaultTickInterval))
	countdowns := app.NewCountdownService(repos.countdowns, cache, ticker, log)
	blackbox := app.NewBlackboxService(repos.questions, repos.answers, cache, guard, log)

	limiter := transport.NewRateLimiter(rate.Limit(cfg.Blackbox.AnswerRate), cfg.Blackbox.AnswerBurst)
	defer limiter.Stop()

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.RouterDeps{
			Countdowns:    countdowns,
			Blackbox:      blackbox,
			AnswerLimiter: limiter,
			Log:           log,
		}),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}
	shutdownTimeout := config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", finalPort).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// sampleQuestions seeds the in-memory store so the service is usable without a database.
func sampleQuestions(now time.Time) []domain.Question {
	return []domain.Question{
		{ID: "q1", Question: "What is the capital of France?", Answer: "Paris", AnswerType: domain.AnswerExact, Secret: "The first key is under the mat.", Order: 1, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: "q2", Question: "Describe your favourite colour.", AnswerType: domain.AnswerAny, Secret: "The second key opens the blue door.", Order: 2, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: "q3", Question: "What is 6 x 7?", Answer: "42", AnswerType: domain.AnswerExact, Secret: "You made it to the end.", Order: 3, IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
}

func sampleCountdown(now time.Time) domain.Countdown {
	return domain.Countdown{
		ID:             "launch",
		Title:          "Launch",
		LaunchDate:     now.Add(7 * 24 * time.Hour).Truncate(time.Hour),
		IsActive:       true,
		ShowDays:       true,
		ShowHours:      true,
		ShowMinutes:    true,
		ShowSeconds:    true,
		ExpiredMessage: "We are live!",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
