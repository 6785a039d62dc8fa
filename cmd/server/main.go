package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/kashishkhatter/interviewer-cw/internal/config"
	"github.com/kashishkhatter/interviewer-cw/internal/database"
	"github.com/kashishkhatter/interviewer-cw/internal/handlers"
	"github.com/kashishkhatter/interviewer-cw/internal/logger"
	"github.com/kashishkhatter/interviewer-cw/internal/middleware"
	"github.com/kashishkhatter/interviewer-cw/internal/provider"
	"github.com/kashishkhatter/interviewer-cw/internal/queue"
	"github.com/kashishkhatter/interviewer-cw/internal/services/ai"
	"github.com/kashishkhatter/interviewer-cw/internal/session"
	"github.com/kashishkhatter/interviewer-cw/internal/telemetry"
	"github.com/kashishkhatter/interviewer-cw/internal/token"
)

const serviceName = "interviewer-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for AI API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry (optional)
	otelActive := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				otelActive = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Redis backs both the session cache and the rate limiter
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// RabbitMQ for asynchronous feedback jobs. Retry with backoff to ride
	// out broker startup; without a URL the server generates feedback inline.
	var jobQueue queue.JobQueue
	if cfg.RabbitMQURL != "" {
		jobQueue = connectQueue(cfg.RabbitMQURL, zapLogger)
		if jobQueue != nil {
			defer func() {
				if err := jobQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
		}
	} else {
		zapLogger.Warn("rabbitmq_not_configured_feedback_generated_inline")
	}

	// Repositories
	interviewRepo := database.NewInterviewRepository(db)
	questionRepo := database.NewQuestionSetRepository(db)
	answerRepo := database.NewAnswerRepository(db)
	ratelimitRepo := database.NewRatelimitConfigRepository(db)

	// Token path: verifier, session cache, resolver
	verifier := token.NewVerifier([]byte(cfg.JWTSecret), zapLogger)
	sessionStore := session.NewRedisStore(redisClient, session.DefaultTTL)
	resolver := session.NewResolver(verifier, sessionStore, zapLogger)

	// Managed path: OIDC provider when configured, signed-out fake otherwise
	var capability provider.Capability
	var oidcProvider *provider.OIDC
	if cfg.OIDCIssuerURL != "" {
		oidcProvider, err = provider.NewOIDC(context.Background(), provider.Config{
			IssuerURL:    cfg.OIDCIssuerURL,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/callback",
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_initialize_oidc_provider", zap.Error(err))
		}
		capability = oidcProvider
		zapLogger.Info("oidc_provider_initialized", zap.String("issuer", cfg.OIDCIssuerURL))
	} else {
		capability = &provider.Static{}
		zapLogger.Warn("oidc_not_configured_managed_path_disabled")
	}

	gate := middleware.NewGate(capability, zapLogger)
	gate.AllowPath("/auth/callback")

	aiProvider := ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)

	// Handlers
	verifyHandler := handlers.NewVerifyHandler(verifier)
	authHandler := handlers.NewAuthHandler(resolver, oidcProvider)
	interviewHandler := handlers.NewInterviewHandler(interviewRepo, aiProvider)
	questionHandler := handlers.NewQuestionSetHandler(questionRepo, aiProvider)
	answerHandler := handlers.NewAnswerHandler(answerRepo, aiProvider, jobQueue, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, redisClient, jobQueue)

	// Router and middleware chain
	r := mux.NewRouter()

	if otelActive {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	// Session resolution must run before the gate: a share-link token in the
	// URL is persisted and redirected here, so the gate only ever sees the
	// cookie form.
	r.Use(resolver.Middleware())
	r.Use(gate.Middleware())

	rateLimitMW, err := middleware.RateLimitFromDB(redisClient, ratelimitRepo, "5-S")
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Public endpoints
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.VersionHandler).Methods("GET")

	openAPIPath := filepath.Join("api", "openapi", "openapi.yaml")
	handlers.NewOpenAPIHandler(openAPIPath).RegisterRoutes(r)

	// Managed sign-in pages
	if oidcProvider != nil {
		r.HandleFunc("/sign-in", oidcProvider.BeginLogin).Methods("GET")
		r.HandleFunc("/auth/callback", func(w http.ResponseWriter, req *http.Request) {
			oidcProvider.HandleCallback(w, req, session.DefaultLandingPath)
		}).Methods("GET")
	}

	// Auth API: verification is public (it is how share-link clients check
	// tokens), identity and sign-out require a resolved identity
	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.Use(rateLimitMW)
	verifyHandler.RegisterRoutes(authRouter)

	protectedAuthRouter := r.PathPrefix("/api/auth").Subrouter()
	protectedAuthRouter.Use(rateLimitMW)
	protectedAuthRouter.Use(middleware.RequireIdentity(verifier, capability, zapLogger))
	authHandler.RegisterRoutes(protectedAuthRouter)

	// Domain API
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)
	apiRouter.Use(middleware.RequireIdentity(verifier, capability, zapLogger))

	interviewsRouter := apiRouter.PathPrefix("/interviews").Subrouter()
	interviewHandler.RegisterRoutes(interviewsRouter)
	answerHandler.RegisterRoutes(interviewsRouter)

	questionsRouter := apiRouter.PathPrefix("/questions").Subrouter()
	questionHandler.RegisterRoutes(questionsRouter)

	// Preflight requests short-circuit after the CORS middleware
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// DLQ garbage collector: hourly sweep, 24h retention
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour)
		go func() {
			if err := dlqGC.Start(bgCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector")
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectQueue dials RabbitMQ with exponential backoff. Returns nil if the
// broker stays unreachable; the server then falls back to inline feedback.
func connectQueue(amqpURL string, zapLogger *zap.Logger) queue.JobQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return jobQueue
		}

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Error("rabbitmq_unreachable_after_retries", zap.Int("max_retries", maxRetries))
	return nil
}
