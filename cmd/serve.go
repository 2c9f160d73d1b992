package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotbook/cmd/bootstrap"
	"slotbook/config"
	"slotbook/cron"
	"slotbook/handlers"
	"slotbook/middleware"
	"slotbook/routes"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var (
		migrateUp   bool
		embedWorker bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.AppConfig
			logger := utils.GetLogger()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if migrateUp {
				if _, err := bootstrap.Migrate(ctx, cfg); err != nil {
					return err
				}
			}

			store, err := bootstrap.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				if err := store.Close(closeCtx); err != nil {
					logger.Warn("Store close failed", zap.Error(err))
				}
			}()

			cacheClient, err := utils.NewCacheClient(ctx)
			if err != nil {
				logger.Warn("Redis cache unavailable, serving catalog from the store", zap.Error(err))
				cacheClient = nil
			} else {
				defer cacheClient.Close()
			}

			dispatcher, closeDispatcher, err := bootstrap.NewDispatcher(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDispatcher()

			services := bootstrap.NewServices(store, cacheClient, dispatcher, cfg)

			var redisClients []*redis.Client
			if cacheClient != nil {
				redisClients = append(redisClients, cacheClient)
			}
			health := utils.NewHealthMonitor(store, redisClients...)
			health.Start(ctx, 30*time.Second)

			if embedWorker && cfg.NotifyMode == bootstrap.NotifyQueue {
				sender, err := bootstrap.NewSender(ctx, cfg)
				if err != nil {
					return err
				}
				go func() {
					if err := cron.RunNotificationWorker(ctx, sender); err != nil {
						logger.Error("Embedded worker stopped", zap.Error(err))
					}
				}()
			}

			hb := handlers.NewHandlerBundle(
				services.Providers,
				services.Catalog,
				services.Ledger,
				services.Bookings,
				health,
				config.Location(),
			)

			if config.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()
			router.Use(gin.Recovery())
			router.Use(utils.ErrorHandler())
			router.Use(middleware.RequestLogger(logger))
			routes.RegisterRoutes(router, hb, routes.Options{
				JWTSecret:         cfg.JWTSecret,
				AdminTokenHash:    cfg.AdminTokenHash,
				MaxRequestsPerMin: cfg.MaxRequestsPerMin,
			})

			srv := &http.Server{
				Addr:              "0.0.0.0:" + cfg.AppPort,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed to start: %w", err)
				}
			case <-ctx.Done():
			}

			logger.Info("Server is shutting down")
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			logger.Info("Server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply migrations / indexes on startup")
	cmd.Flags().BoolVar(&embedWorker, "worker", false, "also run the notification worker in this process (queue mode)")
	return cmd
}
