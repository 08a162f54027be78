package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/attempt"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/postgres"
	"quiz-attempt-service/internal/infra/postgres/migrations"
	infraredis "quiz-attempt-service/internal/infra/redis"
)

var student = domain.Principal{UserID: "u1", Role: domain.RoleStudent}

func TestAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db, err := postgres.Open(postgres.DriverPostgres, pgURL)
	require.NoError(t, err)
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	require.NoError(t, postgres.NewContentStore(db).SaveQuiz(ctx, sampleQuiz()))
	policy := postgres.NewPolicyStore(db, domain.RoleAdmin)
	require.NoError(t, policy.UpsertUser(ctx, domain.User{ID: "u1", DisplayName: "Alice", Role: domain.RoleStudent}))
	require.NoError(t, policy.Assign(ctx, "u1", "quiz-1", time.Now()))

	pool, err := pgxpool.Connect(ctx, pgURL)
	require.NoError(t, err)
	defer pool.Close()

	loaded, err := postgres.NewQuizLoader(pool).LoadQuiz(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, sampleQuiz(), loaded)

	redisClient, err := redisClientFromURL(redisURL)
	require.NoError(t, err)
	defer redisClient.Close()

	service := app.NewAttemptService(
		infraredis.NewQuizRepository(redisClient, postgres.NewQuizLoader(pool), 5*time.Minute),
		infraredis.NewAttemptStore(redisClient, 5*time.Minute),
		postgres.NewSubmissionStore(db),
		policy,
	)

	// first attempt: every answer wrong
	finishAttempt(t, ctx, service, attempt.Setup{QuestionCount: 3}, "-o1")
	sub, err := service.Submission(ctx, student, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, 0, sub.CorrectAnswers)
	assert.Len(t, sub.Answers, 3)

	// retake with two questions, all right: the row is overwritten, answers replaced
	completion := finishAttempt(t, ctx, service, attempt.Setup{QuestionCount: 2}, "-o2")
	assert.True(t, completion.Persisted)
	assert.Equal(t, attempt.Result{CorrectAnswers: 2, TotalQuestions: 2, Percentage: 100}, completion.Result)

	sub, err = service.Submission(ctx, student, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Score)
	assert.Equal(t, 2, sub.TotalQuestions)
	assert.Len(t, sub.Answers, 2)
}

func finishAttempt(t *testing.T, ctx context.Context, service *app.AttemptService, setup attempt.Setup, suffix string) *app.Completion {
	t.Helper()
	session, err := service.Start(ctx, student, "quiz-1", setup)
	require.NoError(t, err)
	for {
		q, ok := session.Current()
		require.True(t, ok)
		_, err := service.Select(ctx, student, session.ID, q.ID+suffix)
		require.NoError(t, err)
		result, err := service.Advance(ctx, student, session.ID)
		require.NoError(t, err)
		if result.Completion != nil {
			return result.Completion
		}
		session = result.Session
	}
}

// sampleQuiz marks "<q>-o2" correct on every question.
func sampleQuiz() domain.Quiz {
	quiz := domain.Quiz{ID: "quiz-1", Title: "Arithmetic", Description: "Warm-up", Active: true}
	for i := 1; i <= 3; i++ {
		qid := fmt.Sprintf("q%d", i)
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:         qid,
			Text:       "Question " + qid,
			Difficulty: domain.DifficultyMedium,
			Options: []domain.Option{
				{ID: qid + "-o1", Text: "wrong"},
				{ID: qid + "-o2", Text: "right", Correct: true},
				{ID: qid + "-o3", Text: "also wrong"},
			},
		})
	}
	return quiz
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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
