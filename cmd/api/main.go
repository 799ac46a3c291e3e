package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/harentsoaR/ayursutra-api/internal/config"
	"github.com/harentsoaR/ayursutra-api/internal/handlers"
	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/messaging"
	"github.com/harentsoaR/ayursutra-api/internal/middleware"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
	"github.com/harentsoaR/ayursutra-api/internal/store"
	"github.com/harentsoaR/ayursutra-api/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal(err, "failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Console: cfg.Environment == "development",
	})
	if !dotenv {
		log.Info("No .env file found, relying on environment variables.")
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal(err, "failed to load timezone")
	}
	models.SetDateLocation(loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Document store ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var backend store.Store
	if cfg.Demo() {
		log.Warn("MONGO_URI is not set, running in demo mode on the in-memory store")
		backend = store.NewMemory()
	} else {
		mongoStore, err := store.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
		if err != nil {
			log.Fatal(err, "Failed to connect to MongoDB")
		}
		log.Info("Successfully connected to MongoDB!", "database", cfg.Mongo.Database)
		backend = mongoStore
	}
	st := store.NewInstrumented(backend, reg)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Error(err, "failed to close store")
		}
	}()

	// --- Change broker ---
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		redisBroker, err := messaging.NewRedisBroker(ctx, messaging.RedisConfig{URL: cfg.Redis.URL, PoolSize: cfg.Redis.PoolSize}, log.Zerolog())
		if err != nil {
			log.Fatal(err, "Failed to connect to Redis")
		}
		broker = redisBroker
	} else {
		log.Info("REDIS_URL is not set, change events stay in process")
		broker = messaging.NewMemoryBroker()
	}
	defer broker.Close()

	// --- Initialize Services ---
	var sms services.SMSSender
	if cfg.Textbelt.APIKey != "" {
		sms = services.NewTextbeltSender(cfg.Textbelt.URL, cfg.Textbelt.APIKey)
	}
	svc := services.New(services.Deps{
		Store:    st,
		Broker:   broker,
		Logger:   log,
		SMS:      sms,
		Location: loc,
	})

	secret := cfg.JWT.Secret
	if secret == "" {
		if !cfg.Demo() {
			log.Fatal(errors.New("JWT_SECRET is NOT SET"), "refusing to start without a signing key")
		}
		secret = uuid.NewString()
		log.Warn("JWT_SECRET is NOT SET, using a random key; tokens will not survive a restart")
	}
	tokens, err := utils.NewTokenIssuer(secret, cfg.JWT.TTL)
	if err != nil {
		log.Fatal(err, "failed to create token issuer")
	}

	var mailer services.Mailer = services.NewLogMailer(log)
	if cfg.SMTP.Host != "" {
		mailer = services.NewSMTPMailer(services.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	auth := services.NewAuthService(st, svc.Users, tokens, mailer, log, services.AuthConfig{
		RecentLoginWindow: cfg.Auth.RecentLoginWindow,
		ResetTokenTTL:     cfg.Auth.ResetTokenTTL,
		ResetURL:          cfg.Auth.ResetURL,
		PasswordCost:      cfg.Auth.PasswordCost,
	})
	chatbot := services.NewChatbotService(services.ChatbotConfig{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
	}, log)

	// --- Gin Router ---
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handlers.NewHandler(svc, auth, chatbot, log)
	h.Development = cfg.Environment == "development"
	router := handlers.NewRouter(h, handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AuthLimit: middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.Limits.AuthPerSecond),
			Burst: cfg.Limits.AuthBurst,
		},
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	// Open notification streams end when shutdown starts.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelRequests)

	go func() {
		log.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "demo", cfg.Demo())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "graceful shutdown failed")
	}
}
