package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"calculator/internal/api"
	"calculator/internal/api/handler/v1handler"
	"calculator/internal/config"
	"calculator/internal/session"
	"calculator/pkg/display"
	"calculator/pkg/logger"
	"calculator/pkg/metrics"
	"calculator/pkg/storage/memory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// getStorage creates the session storage and returns it along with a cleanup
// function stopping its expiry loop.
func getStorage(ctx context.Context, cfg *config.Config) (*memory.Memory, func()) {
	st := memory.New(ctx, memory.Options{
		TTL:           cfg.Calculator.SessionTTL,
		MaxSessions:   cfg.Calculator.MaxSessions,
		SweepInterval: cfg.Calculator.SweepInterval,
	})

	return st, func() {
		logger.Info(ctx, "closing session storage...")
		if err := st.Close(); err != nil {
			logger.Warn(ctx, "could not close session storage", zap.Error(err))
		}
	}
}

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(ctx, deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the calculator API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			formatter, err := newFormatter(cfg.Calculator.Locale)
			if err != nil {
				logger.Fatal(ctx, "invalid display locale", zap.Error(err))
			}

			mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}

			st, closeStrg := getStorage(ctx, cfg)
			defer closeStrg()

			calcMetrics, err := metrics.NewCalculator(mp, st.SessionCount)
			if err != nil {
				logger.Fatal(ctx, "could not create calculator metrics", zap.Error(err))
			}
			httpMetrics, err := metrics.NewHTTP(mp)
			if err != nil {
				logger.Fatal(ctx, "could not create http metrics", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps: v1handler.Deps{
					Sessions: session.New(session.Deps{
						Storage: st,
						Metrics: calcMetrics,
					}, session.NewOptions(cfg)),
					Renderer: display.NewRenderer(formatter),
				},
				Gatherer:    prometheus.DefaultGatherer,
				HTTPMetrics: httpMetrics,
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not shut down meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}
