package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/sirupsen/logrus"

	"snapshare/internal/config"
	"snapshare/internal/database"
	"snapshare/internal/handler"
	"snapshare/internal/logger"
	"snapshare/internal/queue"
	"snapshare/internal/redis"
	"snapshare/internal/repository"
	"snapshare/internal/service"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 15 * time.Second

	// activityStreamMaxLen caps stream:activity approximately.
	activityStreamMaxLen = 100000
)

// Run wires every component from the environment and serves until ctx is
// cancelled, then drains in-flight requests.
func Run(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	// 2. Token service fails fast on a missing secret
	tokenService, err := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	// 3. Connect to Database
	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// 4. Optional infrastructure
	var publisher queue.Publisher
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Healthcheck(pingCtx)
		cancel()
		if err != nil {
			return err
		}
		publisher = queue.NewPublisher(client, log, activityStreamMaxLen)
		log.Info("Activity stream enabled")
	} else {
		log.Warn("REDIS_URL not set, activity events are disabled")
	}

	var mediaService *service.MediaService
	if cfg.R2Enabled() {
		mediaService, err = service.NewMediaService(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to create media service: %w", err)
		}
	} else {
		log.Warn("R2 storage not configured, image uploads are disabled")
	}

	// 5. Services and handlers
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	userService := service.NewUserService(userRepo, log)
	followService := service.NewFollowService(userRepo, publisher, log)
	postService := service.NewPostService(postRepo, mediaService, publisher, log)
	interactionService := service.NewInteractionService(postRepo, publisher, log)

	router := NewRouter(RouterConfig{
		AuthHandler:        handler.NewAuthHandler(userService, tokenService, mediaService, log),
		UserHandler:        handler.NewUserHandler(userService, followService, log),
		FollowHandler:      handler.NewFollowHandler(followService, log),
		PostHandler:        handler.NewPostHandler(postService, mediaService, log),
		InteractionHandler: handler.NewInteractionHandler(interactionService, log),
		Tokens:             tokenService,
		Logger:             log,
	})

	// 6. Serve
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return serve(ctx, srv, log)
}

func serve(ctx context.Context, srv *stdhttp.Server, log logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
