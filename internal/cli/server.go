package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/adameda/revisia/internal/app"
	"github.com/adameda/revisia/internal/config"
	"github.com/adameda/revisia/internal/infra/gemini"
	"github.com/adameda/revisia/internal/infra/memory"
	infrapg "github.com/adameda/revisia/internal/infra/postgres"
	infraredis "github.com/adameda/revisia/internal/infra/redis"
	transport "github.com/adameda/revisia/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var (
		writer    app.QuizWriter
		documents app.DocumentSource
		results   app.ResultStore
		quizzes   app.QuestionRepository
	)
	if pool != nil {
		store := infrapg.NewQuizStore(pool)
		writer, documents = store, store
		results = infrapg.NewResultStore(pool)
		if redisClient != nil {
			quizzes = infraredis.NewQuizRepository(redisClient, store, quizTTL)
		} else {
			quizzes = memory.NewQuizRepository(store, quizTTL)
		}
	} else {
		store := memory.NewStore()
		seedDemoDocument(store)
		writer, documents = store, store
		results = memory.NewResultStore()
		quizzes = memory.NewQuizRepository(store, quizTTL)
	}

	dailyQuota := config.CountOr(cfg.Quota.Daily, 10)
	var quota app.QuotaStore
	if redisClient != nil {
		quota = infraredis.NewQuotaStore(redisClient, dailyQuota)
	} else {
		quota = memory.NewQuotaStore(dailyQuota)
	}

	var generator app.QuizGenerator
	if cfg.Generator.Endpoint != "" {
		generator = gemini.NewClient(
			cfg.Generator.Endpoint,
			cfg.Generator.APIKey,
			cfg.Generator.Model,
			config.TTLDuration(cfg.Generator.Timeout, 60*time.Second),
		)
	} else {
		log.Printf("no generator endpoint configured, using stub generator")
		generator = memory.StubGenerator{}
	}

	service := app.NewQuizService(quizzes, writer, documents, results, quota, generator,
		config.CountOr(cfg.Quiz.Questions, 30))
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting revisia on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedDemoDocument gives the in-memory mode something to generate from.
func seedDemoDocument(store *memory.Store) {
	store.AddDocument("demo-doc", `Photosynthesis is the process by which green
plants convert sunlight into chemical energy. Chlorophyll inside chloroplasts
absorbs light, splitting water molecules and releasing oxygen. The resulting
energy carriers drive the Calvin cycle, which fixes carbon dioxide into
glucose that fuels the plant's growth.`)
}
