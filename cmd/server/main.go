package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sahelys/sahelys-backend/api"
	"github.com/sahelys/sahelys-backend/api/auth"
	"github.com/sahelys/sahelys-backend/env"
	"github.com/sahelys/sahelys-backend/isoweek"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func main() {
	cfg := env.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(cfg *env.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		zapCfg := zap.NewProductionConfig()
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
			return zapCfg.Build()
		}
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *env.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := client.Disconnect(shutdownCtx); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return err
	}
	logger.Info("connected to mongodb", zap.String("database", cfg.DatabaseName))

	mongoService := mongosvc.New(client.Database(cfg.DatabaseName))
	if err := mongoService.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongoService.EnsureAdminUser(ctx, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
		return err
	}

	userService := mongosvc.NewUserService(mongoService)
	reportService := mongosvc.NewReportService(mongoService)
	commentService := mongosvc.NewCommentService(mongoService, reportService)
	messageService := mongosvc.NewMessageService(mongoService)
	statsService := mongosvc.NewStatsService(mongoService)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAlgorithm, time.Duration(cfg.JWTExpirationHours)*time.Hour)

	formatter, err := isoweek.LoadFormatter(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to UTC", zap.String("timezone", cfg.Timezone))
		formatter = isoweek.NewFormatter(time.UTC)
	}

	router := api.NewRouter(api.Services{
		Users:    userService,
		Reports:  reportService,
		Comments: commentService,
		Messages: messageService,
		Stats:    statsService,
	}, jwtManager, formatter, logger, cfg.Debug)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
