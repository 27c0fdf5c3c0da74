package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rsouza-dev/leadforge/internal/config"
	"github.com/rsouza-dev/leadforge/internal/infra/cache"
	"github.com/rsouza-dev/leadforge/internal/infra/database"
	"github.com/rsouza-dev/leadforge/internal/infra/http/handlers"
	"github.com/rsouza-dev/leadforge/internal/infra/http/middleware"
	"github.com/rsouza-dev/leadforge/internal/infra/mail"
	"github.com/rsouza-dev/leadforge/internal/infra/queue"
	"github.com/rsouza-dev/leadforge/internal/infra/scheduler"
	"github.com/rsouza-dev/leadforge/internal/infra/worker"
	"github.com/rsouza-dev/leadforge/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.LoadAll()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	db, err := database.NewDBConnection(cfg.Database.PostgresURL)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("rabbitmq connection failed", "err", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	var rdb *redis.Client
	var scores cache.ScoreCache
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		scores = cache.NewRedisScoreCache(rdb, cfg.Redis.TTL)
	}

	// Repositories
	leadRepo := database.NewLeadRepository(db)
	engagementRepo := database.NewEngagementRepository(db)
	historyRepo := database.NewStatusHistoryRepository(db)
	sequenceRepo := database.NewSequenceRepository(db)
	enrollmentRepo := database.NewEnrollmentRepository(db)
	workflowRepo := database.NewWorkflowRepository(db)
	executionLogRepo := database.NewExecutionLogRepository(db)
	scheduledJobRepo := database.NewScheduledJobRepository(db)
	dripRepo := database.NewDripRepository(db)

	// Automation core
	statusWorkflow := usecase.NewStatusWorkflow(leadRepo, historyRepo, log)
	detector := usecase.NewInactivityDetector(leadRepo, engagementRepo, log)
	enrollments := usecase.NewEnrollmentManager(enrollmentRepo, log)
	producer := queue.NewProducer(rabbitMQ.Ch)
	executor := usecase.NewWorkflowExecutor(
		workflowRepo, sequenceRepo, detector, enrollments, executionLogRepo, producer, log,
	)

	// Scheduler: one process hosts every timer. Running a second instance
	// would double-fire every schedule.
	sched := scheduler.New(executor, scheduledJobRepo, log)
	sched.Start()
	defer sched.Stop()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	sched.RestoreFromStore(bootCtx)
	bootCancel()

	// Drip dispatch worker
	mailSender := mail.NewEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	dripWorker := worker.NewDripWorker(dripRepo, mailSender, statusWorkflow, cfg.Drip.Interval, cfg.Drip.BatchSize, log).
		WithSentHook(middleware.RecordDripEmail)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go dripWorker.Start(ctx)

	// Handlers
	leadHandler := handlers.NewLeadHandler(leadRepo, statusWorkflow, engagementRepo, scores)
	trackingHandler := handlers.NewTrackingHandler(engagementRepo, leadRepo, statusWorkflow, scores, log)
	workflowHandler := handlers.NewWorkflowHandler(executor, sched)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, rdb)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/leads", leadHandler.CaptureLead)
	r.Put("/leads/{leadID}/status", leadHandler.UpdateStatus)
	r.Get("/leads/{leadID}/score", leadHandler.GetScore)

	r.Get("/t/open/{messageID}", trackingHandler.HandleOpen)
	r.Get("/t/click/{messageID}", trackingHandler.HandleClick)

	r.Post("/workflows/{workflowID}/run", workflowHandler.RunNow)
	r.Post("/owners/{ownerID}/workflows/run", workflowHandler.RunAll)
	r.Put("/owners/{ownerID}/workflows/schedule", workflowHandler.SetSchedule)
	r.Delete("/owners/{ownerID}/workflows/schedule", workflowHandler.RemoveSchedule)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		log.Info("leadforge api listening", "addr", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
