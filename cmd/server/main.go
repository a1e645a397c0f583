package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"
	"storefront-be/internal/notify"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/review"
	"storefront-be/internal/transport"
	"storefront-be/internal/upload"

	"go.uber.org/zap"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

var (
	initDBFunc      = db.NewDatabase
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

// app holds the wired HTTP handler and everything that must be released on
// shutdown.
type app struct {
	handler    http.Handler
	dispatcher *notify.Dispatcher
	limiter    *middleware.Limiter
	closers    []func()
}

// close drains pending notifications, then releases the remaining resources.
func (a *app) close(ctx context.Context) {
	if err := a.dispatcher.Close(ctx); err != nil {
		logger.L().Warn("notifications dropped on shutdown", zap.Error(err))
	}
	stats := a.dispatcher.Stats()
	logger.L().Info("notification totals",
		zap.Uint64("enqueued", stats.Enqueued),
		zap.Uint64("delivered", stats.Delivered),
		zap.Uint64("failed", stats.Failed),
		zap.Uint64("dropped", stats.Dropped),
	)
	a.limiter.Stop()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	database, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	a, err := newServer(cfg, database)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		logger.L().Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("http shutdown", zap.Error(err))
	}
	a.close(shutdownCtx)

	return serveErr
}

// newServer wires repositories, services and sinks onto database.
func newServer(cfg *config.Config, database *sql.DB) (*app, error) {
	a := &app{}

	secret, err := jwtSecret(cfg)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokens(secret, tokenTTL)
	if err != nil {
		return nil, err
	}

	uploader, err := newUploader(cfg)
	if err != nil {
		return nil, err
	}

	sinks, closers, err := newSinks(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closers...)
	a.dispatcher = notify.NewDispatcher(cfg.NotifyQueueSize, sinks...)

	productSvc := product.NewService(product.NewRepository(database), uploader)
	orderSvc := order.NewService(order.NewRepository(database), productSvc, a.dispatcher)
	reviewSvc := review.NewService(review.NewRepository(database))
	authSvc := auth.NewService(cfg.AdminPasswordHash, tokens)

	a.limiter = middleware.NewLimiter()
	a.handler = transport.NewRouter(transport.Services{
		Products: productSvc,
		Orders:   orderSvc,
		Reviews:  reviewSvc,
		Auth:     authSvc,
	}, transport.RouterConfig{
		CORSOrigins:   cfg.CORSOrigins,
		Limiter:       a.limiter,
		Notifications: a.dispatcher.Stats,
	})

	return a, nil
}

func newUploader(cfg *config.Config) (product.ImageUploader, error) {
	if !cfg.CloudinaryEnabled() {
		logger.L().Warn("cloudinary not configured, image uploads disabled")
		return upload.Disabled{}, nil
	}
	cld, err := upload.NewCloudinary(upload.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryFolder,
	})
	if err != nil {
		return nil, err
	}
	return cld, nil
}

// newSinks picks the notification sinks the configuration allows. The log
// sink is used when nothing else is configured.
func newSinks(cfg *config.Config) ([]notify.Sink, []func(), error) {
	var (
		sinks   []notify.Sink
		closers []func()
	)

	if cfg.MailEnabled() {
		sinks = append(sinks, notify.NewEmailSink(notify.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.GmailUser,
			Password: cfg.GmailPass,
			To:       cfg.NotifyEmail,
			BaseURL:  cfg.PublicBaseURL,
		}))
	}

	if len(cfg.KafkaBrokers) > 0 {
		sink, closeFn, err := notify.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, sink)
		closers = append(closers, closeFn)
	}

	if len(sinks) == 0 {
		sinks = append(sinks, notify.LogSink{})
	}
	return sinks, closers, nil
}

// jwtSecret returns the configured secret. Outside production a random one is
// generated, so tokens do not survive a restart.
func jwtSecret(cfg *config.Config) (string, error) {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret, nil
	}
	if cfg.IsProduction() {
		return "", auth.ErrMissingSecret
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	logger.L().Warn("JWT_SECRET not set, using an ephemeral secret")
	return hex.EncodeToString(buf), nil
}
