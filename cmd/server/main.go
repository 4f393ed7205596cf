package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dndsim/internal/api"
	"dndsim/internal/auth"
	"dndsim/internal/config"
	"dndsim/internal/dm"
	"dndsim/internal/models"
	"dndsim/internal/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.IsProd())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := openDB(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := models.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	st := store.New(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	authSvc := auth.NewService(st, tokens)

	// The narrator strategy is picked once here, not per request. Without
	// an API key the relay runs scripted-only.
	var primary dm.Narrator
	if cfg.OpenAIKey != "" {
		primary = dm.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel)
		logger.Info("chat relay using OpenAI narrator", zap.String("model", cfg.OpenAIModel))
	} else {
		logger.Info("no OpenAI API key configured, chat relay is scripted-only")
	}
	relay := dm.NewRelay(primary, dm.NewScripted(), cfg.ChatTimeout, logger)

	handler := api.NewHandler(st, authSvc, relay, logger, cfg.Env, cfg.IsProd())
	router := api.NewRouter(handler, tokens, cfg.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}
}

func newLogger(isProd bool) (*zap.Logger, error) {
	if isProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Info
	if cfg.IsProd() {
		logLevel = gormlogger.Warn
	}

	// TranslateError maps driver unique-violation errors onto
	// gorm.ErrDuplicatedKey so the store can surface them as conflicts.
	return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logLevel,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
}
