package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"peco-service/internal/app"
	"peco-service/internal/content"
	"peco-service/internal/domain"
	"peco-service/internal/infra/postgres"
	pgmigrations "peco-service/internal/infra/postgres/migrations"
	infraredis "peco-service/internal/infra/redis"
	"peco-service/internal/logging"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := migrateDB(t, ctx, pgURL)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := postgres.NewQuizLoader(pool)
	if err := loader.Seed(ctx, content.Quizzes()); err != nil {
		t.Fatalf("seed quizzes: %v", err)
	}
	// Seeding twice must not duplicate or fail.
	if err := loader.Seed(ctx, content.Quizzes()); err != nil {
		t.Fatalf("reseed quizzes: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	log := logging.Discard()
	kv := infraredis.NewKVStore(redisClient, 0)
	leaderboard := app.NewLeaderboard()
	stats := app.NewStatsService(kv, leaderboard, log)
	service := app.NewQuizService(
		infraredis.NewSessionStore(redisClient, 5*time.Minute),
		infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute),
		app.WithScheduler(app.NewManualScheduler()),
		app.WithStats(stats),
		app.WithLogger(log),
	)

	summaries, err := service.ListQuizzes(ctx)
	if err != nil || len(summaries) != 1 || summaries[0].QuestionCount != 5 {
		t.Fatalf("expected one seeded quiz, got %+v (%v)", summaries, err)
	}

	state, err := service.Start(ctx, content.PunjabQuizID, "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	answers := []domain.Answer{
		{ChoiceID: "a"},
		{ChoiceID: "a"},
		{Matches: map[string]string{"plastic": "item1", "organic": "item2", "paper": "item3", "glass": "item4"}},
		{ChoiceID: "c"},
		{ChoiceID: "a"},
	}
	for i, a := range answers {
		if _, err := service.Answer(ctx, state.SessionID, "u1", a); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if i < len(answers)-1 {
			if _, err := service.Next(ctx, state.SessionID, "u1", i); err != nil {
				t.Fatalf("next %d: %v", i, err)
			}
		}
	}
	result, err := service.Submit(ctx, state.SessionID, "u1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 4 || result.PointsEarned != 550 || result.Percentage != 80 {
		t.Fatalf("unexpected result %+v", result)
	}

	persisted, err := stats.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if persisted.Points != 550 {
		t.Fatalf("expected 550 points persisted in redis, got %d", persisted.Points)
	}
	if n, err := redisClient.Exists(ctx, "peco:quiz:"+content.PunjabQuizID).Result(); err != nil || n != 1 {
		t.Fatalf("expected quiz cached in redis, got %d (%v)", n, err)
	}
}

func TestLessonStoreAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	db := migrateDB(t, ctx, pgURL)
	defer db.Close()

	store := postgres.NewLessonStore(db)
	if err := store.SeedLessons(ctx, content.Lessons()); err != nil {
		t.Fatalf("seed lessons: %v", err)
	}
	svc := app.NewLessonService(store, logging.Discard())

	list, err := svc.List(ctx, domain.LessonFilter{Status: domain.LessonPublished}, domain.SortConfig{Key: "title", Direction: "asc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 3 {
		t.Fatalf("expected 3 published lessons, got %d", list.Total)
	}

	created, err := svc.Create(ctx, domain.Lesson{Title: "Composting at Home", Category: "Waste Management", Difficulty: "beginner", EstimatedTime: 15})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created.Title = "Composting at School"
	if _, err := svc.Update(ctx, created.ID, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil || got.Title != "Composting at School" || got.Status != domain.LessonDraft {
		t.Fatalf("unexpected stored lesson %+v (%v)", got, err)
	}

	n, err := svc.Bulk(ctx, app.BulkDuplicate, []string{created.ID}, false)
	if err != nil || n != 1 {
		t.Fatalf("duplicate: %d (%v)", n, err)
	}
	if _, err := svc.Bulk(ctx, app.BulkDelete, []string{created.ID}, true); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, domain.ErrLessonNotFound) {
		t.Fatalf("expected lesson not found after delete, got %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != len(content.Lessons())+1 {
		t.Fatalf("expected the duplicate to remain, got %+v", stats)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "peco", "POSTGRES_PASSWORD": "pecopass", "POSTGRES_DB": "peco"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://peco:pecopass@%s:%s/peco?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
