package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	sloggin "github.com/samber/slog-gin"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/events"
	"quiz-attempt-service/internal/infra/memory"
	mongoloader "quiz-attempt-service/internal/infra/mongo"
	"quiz-attempt-service/internal/infra/postgres"
	redisstore "quiz-attempt-service/internal/infra/redis"
	"quiz-attempt-service/internal/infra/sqs"
	"quiz-attempt-service/internal/metrics"
	transport "quiz-attempt-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz attempt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// accessDirectory is satisfied by both policy backends.
type accessDirectory interface {
	app.AccessPolicy
	auth.Directory
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := slog.Default()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var db *bun.DB
	if cfg.Database.URL != "" {
		db, err = openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := runMigrations(ctx, db); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	loader, closeLoader, err := newQuizLoader(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeLoader()

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, config.TTLDuration(cfg.Redis.TTL, quizTTL))
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	attemptTTL := config.TTLDuration(cfg.Attempt.TTL, 2*time.Hour)
	var attempts app.AttemptStore
	if redisClient != nil {
		attempts = redisstore.NewAttemptStore(redisClient, attemptTTL)
	} else {
		attempts = memory.NewAttemptStore(attemptTTL)
	}

	barred := lo.Map(cfg.Policy.BarredRoles, func(r string, _ int) domain.Role { return domain.Role(r) })
	var submissions app.SubmissionStore
	var policy accessDirectory
	if db != nil {
		submissions = postgres.NewSubmissionStore(db)
		policy = postgres.NewPolicyStore(db, barred...)
	} else {
		log.Warn("no database configured, submissions are kept in memory")
		submissions = memory.NewSubmissionStore()
		policy = demoPolicy(barred)
	}

	publishers := []events.Publisher{events.NewLogPublisher(log)}
	if cfg.Events.SQSQueueURL != "" {
		publisher, err := sqs.NewFromRegion(ctx, cfg.Events.SQSRegion, cfg.Events.SQSQueueURL)
		if err != nil {
			return err
		}
		publishers = append(publishers, publisher)
	}
	dispatcher := events.NewDispatcher(log, publishers...)
	defer dispatcher.Wait()

	service := app.NewAttemptService(quizRepo, attempts, submissions, policy,
		app.WithEvents(dispatcher),
		app.WithLogger(log),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      newRouter(cfg, log, policy, service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz attempt service", "address", server.Addr, "quiz_source", cfg.Quiz.Source)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
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

func newRouter(cfg config.Config, log *slog.Logger, dir auth.Directory, service *app.AttemptService) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(sloggin.New(log))
	engine.Use(gin.Recovery())
	engine.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	authMiddleware := auth.Middleware(dir)
	api := engine.Group("/api", authMiddleware)
	transport.NewAttemptHandler(service).Register(api)
	engine.GET("/ws", authMiddleware, transport.NewWSHandler(service).ServeWS)
	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "User-Agent", "Referer", auth.HeaderUserID},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// newQuizLoader picks the content backend named by quiz.source.
func newQuizLoader(ctx context.Context, cfg config.Config, db *bun.DB) (memory.QuizLoader, func(), error) {
	noop := func() {}
	switch cfg.Quiz.Source {
	case config.SourceDatabase:
		if db == nil {
			return nil, noop, errors.New("quiz.source database requires database.url")
		}
		return postgres.NewContentStore(db), noop, nil
	case config.SourcePostgres:
		pool, err := pgxpool.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.NewQuizLoader(pool), pool.Close, nil
	case config.SourceMongo:
		loader, client, err := mongoloader.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, noop, err
		}
		return loader, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return memory.NewStaticQuizLoader(demoQuizzes()), noop, nil
	}
}

// demoPolicy serves the demo users when no database is configured.
func demoPolicy(barred []domain.Role) *memory.Policy {
	policy := memory.NewPolicy(barred...)
	for _, user := range demoUsers() {
		policy.AddUser(user)
	}
	for userID, quizIDs := range demoAssignments() {
		for _, quizID := range quizIDs {
			policy.Assign(userID, quizID)
		}
	}
	return policy
}
