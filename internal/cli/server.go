package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"peco-service/internal/app"
	"peco-service/internal/config"
	"peco-service/internal/content"
	"peco-service/internal/infra/memory"
	pgstore "peco-service/internal/infra/postgres"
	redisstore "peco-service/internal/infra/redis"
	"peco-service/internal/logging"
	"peco-service/internal/metrics"
	transport "peco-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backends are the storage implementations picked from config. Postgres and Redis are
// optional; without them everything runs in memory on the built-in catalog.
type backends struct {
	quizzes    app.QuizRepository
	sessions   app.SessionRepository
	kv         app.Store
	lessons    app.LessonRepository
	flashcards app.FlashcardRepository
	challenges app.ChallengeCatalog
	closers    []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*backends, error) {
	b := &backends{
		flashcards: memory.NewFlashcardStore(content.Flashcards()),
		challenges: memory.NewChallengeCatalog(content.Challenges()),
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(content.Quizzes())
	b.lessons = memory.NewLessonStore(content.Lessons())
	if cfg.Postgres.URL != "" {
		db := openBun(cfg.Postgres.URL)
		b.closers = append(b.closers, func() { _ = db.Close() })
		if err := runMigrations(ctx, db, log); err != nil {
			b.close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)

		pgLoader := pgstore.NewQuizLoader(pool)
		if err := pgLoader.Seed(ctx, content.Quizzes()); err != nil {
			b.close()
			return nil, err
		}
		lessons := pgstore.NewLessonStore(db)
		if err := lessons.SeedLessons(ctx, content.Lessons()); err != nil {
			b.close()
			return nil, err
		}
		loader, b.lessons = pgLoader, lessons
		log.Info("using postgres for quizzes and lessons")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			b.close()
			return nil, err
		}
		redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		b.quizzes = redisstore.NewQuizRepository(client, loader, quizTTL)
		b.sessions = redisstore.NewSessionStore(client, redisTTL)
		b.kv = redisstore.NewKVStore(client, 0)
		log.WithField("addr", cfg.Redis.Addr).Info("using redis for caching and user state")
	} else {
		b.quizzes = memory.NewQuizRepository(loader, quizTTL)
		b.sessions = memory.NewSessionStore()
		b.kv = memory.NewKVStore()
	}
	return b, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New("peco", cfg.Log.Level)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	m := metrics.New("peco")
	leaderboard := app.NewLeaderboard()
	stats := app.NewStatsService(b.kv, leaderboard, log)
	flashcards := app.NewFlashcardService(b.flashcards, b.kv, log)
	challenges := app.NewChallengeService(b.challenges, b.kv, stats, log)
	retention := config.TTLDuration(cfg.Quiz.Retention, 10*time.Minute)
	quizzes := app.NewQuizService(b.sessions, b.quizzes,
		app.WithStats(stats),
		app.WithMetrics(m),
		app.WithLogger(log),
		app.WithAutoAdvance(config.TTLDuration(cfg.Quiz.AutoAdvance, 2500*time.Millisecond)),
		app.WithTickInterval(config.TTLDuration(cfg.Quiz.TickInterval, time.Second)),
		app.WithRetention(retention),
	)
	stopJanitor := quizzes.StartJanitor(time.Minute)
	defer stopJanitor()

	svc := transport.Services{
		Auth:       app.NewAuthService(b.kv, cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TTL, 24*time.Hour), log),
		Quizzes:    quizzes,
		Lessons:    app.NewLessonService(b.lessons, log),
		Challenges: challenges,
		Flashcards: flashcards,
		Dashboard:  app.NewDashboardService(stats, flashcards, challenges, leaderboard),
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(svc, transport.Options{
			CORSOrigins: cfg.Server.CORSOrigins,
			Metrics:     m,
			Log:         log,
		}),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.WithField("port", finalPort).Info("starting peco service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
