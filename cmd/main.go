package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/api"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/config"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/database/memdb"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/email"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/codeforces_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/reminder_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/scheduler_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/student_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/sync_service"
	"github.com/anvaygupta1940/Student-Progress-Management/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

var (
	apiConfig *api.Api
)

// background components stopped on shutdown, in order
type app struct {
	queue     *sync_service.Queue
	email     *email.EmailService
	scheduler *scheduler_service.Scheduler
	limiter   *middleware.RateLimiter
	pool      *pgxpool.Pool
}

func initLogger(cfg *config.Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("invalid log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func initDatabase(ctx context.Context, cfg *config.Config) (database.Querier, *pgxpool.Pool) {
	if cfg.DBURL == "" {
		log.Warn("DB_URL not set, using the in-memory store. data is lost on restart")
		return memdb.New(), nil
	}

	// create a connection pool to the database
	pool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		panic(err)
	}
	if err = pool.Ping(ctx); err != nil {
		panic(err)
	}

	// get the query tool with this connection
	return database.New(pool), pool
}

func initCodeforcesClient(cfg *config.Config) *codeforces_service.Client {
	log.Info("initializing codeforces client")
	client, err := codeforces_service.NewClient(codeforces_service.Config{
		BaseURL:            cfg.CodeforcesAPIBase,
		MaxAttempts:        cfg.CFMaxAttempts,
		RetryBaseDelay:     cfg.CFRetryBaseDelay,
		RequestTimeout:     cfg.CFRequestTimeout,
		MinRequestInterval: cfg.CFMinRequestInterval,
		BreakerFailures:    cfg.CFBreakerFailures,
		BreakerCooldown:    cfg.CFBreakerCooldown,
	})
	if err != nil {
		panic(err)
	}
	return client
}

func initSyncService(cfg *config.Config, db database.Querier) *sync_service.SyncService {
	log.Info("initializing sync service")
	ss := &sync_service.SyncService{
		DB:                   db,
		CF:                   initCodeforcesClient(cfg),
		FleetPacing:          cfg.FleetPacing,
		SubmissionFetchCount: cfg.SubmissionFetchCount,
		DefaultProblemRating: cfg.DefaultProblemRating,
	}
	ss.Start()
	return ss
}

func initEmailService(cfg *config.Config) *email.EmailService {
	log.Info("initializing email service")
	es := &email.EmailService{
		Sender:  cfg.SenderEmail,
		Workers: cfg.EmailWorkers,
	}
	if cfg.SenderEmail != "" {
		es.Dialer = email.NewSMTPDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderEmailPassword)
	}
	es.Start()
	return es
}

func initApi(ctx context.Context, cfg *config.Config, a *app) *api.Api {
	log.Info("initializing api config")
	db, pool := initDatabase(ctx, cfg)
	a.pool = pool

	ss := initSyncService(cfg, db)
	log.Info("sync service created")

	a.queue = &sync_service.Queue{
		Syncer:      ss,
		QueueBuffer: cfg.BackgroundQueueSize,
		CacheSize:   cfg.SyncResultCacheSize,
	}
	if err := a.queue.Start(ctx); err != nil {
		panic(err)
	}
	log.Info("background sync queue created")

	students := &student_service.StudentService{
		DB:             db,
		Queue:          a.queue,
		InactivityDays: cfg.InactivityDays,
	}
	students.Start()
	log.Info("student service created")

	a.email = initEmailService(cfg)
	reminders := &reminder_service.ReminderService{
		DB:             db,
		Sender:         a.email,
		Pacing:         cfg.ReminderPacing,
		InactivityDays: cfg.InactivityDays,
	}
	reminders.Start()
	log.Info("reminder service created")

	a.scheduler = &scheduler_service.Scheduler{
		Fleet:     ss,
		Reminders: reminders,
		Schedule:  cfg.SyncSchedule,
		Timezone:  cfg.SyncTimezone,
	}
	if err := a.scheduler.Start(ctx); err != nil {
		panic(err)
	}
	log.Info("scheduler created")

	return &api.Api{
		StudentServiceConfig:   students,
		SyncServiceConfig:      ss,
		ReminderServiceConfig:  reminders,
		SchedulerServiceConfig: a.scheduler,
		StartTime:              time.Now(),
	}
}

func setup(ctx context.Context, cfg *config.Config) *app {
	initLogger(cfg)
	service.InitializeServices()

	a := &app{}
	apiConfig = initApi(ctx, cfg, a)

	a.limiter = &middleware.RateLimiter{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	}
	if err := a.limiter.Start(); err != nil {
		panic(err)
	}
	return a
}

func setCors(router *chi.Mux, cfg *config.Config) {
	router.Use(
		cors.Handler(
			cors.Options{
				AllowedOrigins:   []string{cfg.FrontendURL},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type"},
				AllowCredentials: true,
				ExposedHeaders:   []string{"Content-Disposition"},
				MaxAge:           300,
			},
		),
	)
	log.Info("cors options has been set")
}

func (a *app) shutdown() {
	a.scheduler.Stop()
	a.queue.Stop()
	a.email.Stop()
	if a.pool != nil {
		a.pool.Close()
	}
	log.Info("background services stopped")
}

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := setup(ctx, cfg)

	// initialize a new router
	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(a.limiter.Handler)
	setCors(router, cfg)

	// mount v1 router
	v1router := NewV1Router()
	router.Mount("/v1", v1router)
	log.Info("v1 router has been mounted")

	router.Handle("/metrics", promhttp.Handler())

	// find the address to start the server
	apiAddress := cfg.APIURL + ":" + cfg.Port

	log.Infof("starting server on %s", apiAddress)
	// create a server object to listen to all requests
	srv := http.Server{
		Handler:           router,
		Addr:              apiAddress,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server cannot be started. Error: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server did not shut down cleanly, %v", err)
	}
	a.shutdown()
}
