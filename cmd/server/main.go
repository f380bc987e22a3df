package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	_ "github.com/tiu-access/visit-access/docs"
	"github.com/tiu-access/visit-access/internal/api"
	"github.com/tiu-access/visit-access/internal/api/handler"
	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
	"github.com/tiu-access/visit-access/internal/core/service"
	"github.com/tiu-access/visit-access/internal/infrastructure/broker/rabbitmq"
	mongodb "github.com/tiu-access/visit-access/internal/infrastructure/db/mongo"
	redisdb "github.com/tiu-access/visit-access/internal/infrastructure/db/redis"
	"github.com/tiu-access/visit-access/internal/infrastructure/notify"
	"github.com/tiu-access/visit-access/internal/infrastructure/queue"
	"github.com/tiu-access/visit-access/internal/pkg/cipher"
	"github.com/tiu-access/visit-access/internal/pkg/config"
	"github.com/tiu-access/visit-access/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Visit Access API
// @version                     1.0
// @description                 Third-party facility visit requests, review and guest passes.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	envFile := pflag.String("env-file", ".env", "optional dotenv file loaded before the environment")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, *envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "visit-access",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	store, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "visit-access",
	})
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()
	db := store.DB

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		ClientName: "visit-access",
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	users := mongodb.NewUserRepository(db)
	roles := mongodb.NewRoleRepository(db)
	tokens := mongodb.NewTokenRepository(db)
	requests := mongodb.NewRequestRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, roles, tokens, requests); err != nil {
		return err
	}
	if err := roles.EnsureRoles(ctx, domain.AllRoles()); err != nil {
		return err
	}

	encoder, err := cipher.NewEncoder(cfg.Auth.PasswordScheme, cfg.Auth.CryptToken)
	if err != nil {
		return err
	}

	// --- Notifications ---
	var notifier ports.Notifier = notify.NewLogNotifier(logger.Component("notify"))
	if cfg.SMTP.Host != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	deliverer := queue.NewDeliverer(notifier, redisdb.NewDeliveryLog(rdb), cfg.Notify.MaxAttempts, logger.Component("deliverer"))

	var (
		notifications ports.NotificationQueue
		drain         func(context.Context) error
	)
	switch cfg.Notify.Transport {
	case config.TransportRabbitMQ:
		publisher := rabbitmq.NewPublisher(cfg.Notify.RabbitMQURL, cfg.Notify.Queue, logger.Component("rabbitmq"))
		consumer := rabbitmq.NewConsumer(cfg.Notify.RabbitMQURL, cfg.Notify.Queue, deliverer, logger.Component("rabbitmq"))
		go consumer.Run(ctx)
		notifications = publisher
		drain = func(context.Context) error { return publisher.Close() }
	default:
		// Workers outlive the signal context so queued mail is drained on shutdown.
		workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
		defer cancelWorkers()
		dispatcher := queue.NewDispatcher(cfg.Notify.Workers, deliverer, logger.Component("dispatcher"))
		dispatcher.Start(workerCtx)
		notifications = dispatcher
		drain = dispatcher.Shutdown
	}

	// --- Core services ---
	issuer := redisdb.NewCredentialIssuer(rdb, cfg.Credentials.Secret, cfg.PublicBaseURL, cfg.Credentials.TTL)
	roleService := service.NewRoleService(roles, users, logger.Component("roles"))
	tokenService := service.NewTokenService(tokens, logger.Component("tokens"))
	accountService := service.NewAccountService(users, roles, tokenService, encoder, notifications, cfg.PublicBaseURL, logger.Component("accounts"))
	authService := service.NewAuthService(users, encoder, cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	requestService := service.NewRequestService(
		requests,
		users,
		issuer,
		notifications,
		redisdb.NewEventPublisher(rdb),
		service.RequestServiceOptions{BaseURL: cfg.PublicBaseURL, PhoneRegion: cfg.Requests.PhoneRegion},
		logger.Component("requests"),
	)

	// --- HTTP ---
	e := api.NewRouter(api.Services{
		Auth:        authService,
		Accounts:    accountService,
		Roles:       roleService,
		Requests:    requestService,
		Credentials: issuer,
	}, api.RouterOptions{
		JWTSecret: cfg.Auth.JWTSecret,
		Health: map[string]handler.Check{
			"mongodb": store.Ping,
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Logger: logger.Component("http"),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("notify", cfg.Notify.Transport).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := drain(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("notification queue shutdown")
	}
	return nil
}
