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

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/sigil/adapters/events"
	"github.com/layer-3/sigil/adapters/store"
	"github.com/layer-3/sigil/adapters/verifier"
	"github.com/layer-3/sigil/config"
	"github.com/layer-3/sigil/service"
	sigilhttp "github.com/layer-3/sigil/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP authentication API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		return serve(cfg, logger)
	},
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	authService := service.NewAuthService(
		verifier.NewCosmosVerifier(logger),
		verifier.NewEthereumVerifier(logger, cfg.Auth.Ethereum.LenientRecovery),
		logger,
	)
	authService.SetChallengeTTL(cfg.Auth.ChallengeTTL)

	if cfg.Auth.Ethereum.LenientRecovery {
		logger.Warn("lenient Ethereum recovery is enabled; signatures from any address will be accepted")
	}

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	if cfg.Replay.Enabled {
		switch cfg.Replay.Backend {
		case "redis":
			authService.SetNonceLedger(store.NewRedisStore(redisClient))
		default:
			authService.SetNonceLedger(store.NewMemoryStore(time.Minute))
		}
		logger.Info("nonce ledger enabled", zap.String("backend", cfg.Replay.Backend))
	}

	publisher, err := newPublisher(cfg, redisClient)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
		authService.SetEventPublisher(events.NewWatermillPublisher(publisher, cfg.Events.Topic))
	}

	router := sigilhttp.SetupRouter(authService, logger, sigilhttp.RouterConfig{
		CORSOrigins:  cfg.Server.CORSOrigins,
		RateLimitRPS: cfg.Server.RateLimitRPS,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sigil listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
		return err
	}

	return nil
}

// newPublisher returns nil when event publishing is disabled
func newPublisher(cfg *config.Config, redisClient *redis.Client) (message.Publisher, error) {
	logger := watermill.NewStdLogger(false, false)

	switch cfg.Events.Backend {
	case "redis":
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("create redis publisher: %w", err)
		}
		return publisher, nil
	case "gochannel":
		return gochannel.NewGoChannel(gochannel.Config{}, logger), nil
	default:
		return nil, nil
	}
}
