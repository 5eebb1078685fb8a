package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/releaseboard/pkg/cli/config"
	httpctrl "github.com/secmon-lab/releaseboard/pkg/controller/http"
	"github.com/secmon-lab/releaseboard/pkg/service/metrics"
	"github.com/secmon-lab/releaseboard/pkg/service/worker"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var enableMetrics bool
	var retryInterval time.Duration
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var authCfg config.Auth
	var slackCfg config.Slack
	var redisCfg config.Redis

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RELEASEBOARD_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL for links in notifications (e.g., https://your-domain.com)",
			Sources:     cli.EnvVars("RELEASEBOARD_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics on /metrics",
			Value:       true,
			Sources:     cli.EnvVars("RELEASEBOARD_METRICS"),
			Destination: &enableMetrics,
		},
		&cli.DurationFlag{
			Name:        "delivery-retry-interval",
			Usage:       "Interval for re-sending failed Slack notifications (0 to disable)",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("RELEASEBOARD_DELIVERY_RETRY_INTERVAL"),
			Destination: &retryInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, redisCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			tuning, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load tuning configuration")
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(context.Background()); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			authUC, err := authCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthn() {
				logging.Default().Warn("Running in no-authn mode (development only)")
			}

			locker, closeLocker, err := redisCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure dedup lock")
			}
			defer closeLocker()

			ucOpts := []usecase.Option{
				usecase.WithTuning(tuning),
				usecase.WithAuth(authUC),
				usecase.WithLocker(locker),
			}

			notifier, err := slackCfg.Configure(baseURL)
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack notifier")
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				logging.Default().Info("Slack notification delivery enabled")
			} else {
				logging.Default().Info("Slack Bot Token not configured, notifications are stored only")
			}

			var httpOpts []httpctrl.Options
			if enableMetrics {
				ucOpts = append(ucOpts, usecase.WithMetrics(metrics.New(prometheus.DefaultRegisterer)))
				httpOpts = append(httpOpts, httpctrl.WithMetricsHandler(promhttp.Handler()))
			}

			uc := usecase.New(repo, ucOpts...)

			if notifier != nil && retryInterval > 0 {
				retryWorker := worker.NewDeliveryRetryWorker(uc.Notification, retryInterval,
					worker.WithLocker(locker),
				)
				if err := retryWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start delivery retry worker")
				}
				defer retryWorker.Stop()
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"tuning", tuning,
					"repository", repoCfg,
					"auth", authCfg,
					"slack", slackCfg,
					"redis", redisCfg,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				if err := uc.Drain(shutdownCtx); err != nil {
					logging.Default().Warn("pending notification deliveries abandoned", "error", err.Error())
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
