package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/seitsubo413/XQsim-library/internal/adapters/http"
	"github.com/seitsubo413/XQsim-library/internal/adapters/memory"
	redisAdapter "github.com/seitsubo413/XQsim-library/internal/adapters/redis"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trace HTTP server",
	Long: `Starts the trace service in server mode, exposing POST /trace plus
retrieval, health, and metrics endpoints. Results persist in Redis when
a redis address is configured, in process memory otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, logger, err := buildService(cmd)
		if err != nil {
			return err
		}

		var store ports.TraceStore
		if cfg.RedisAddr != "" {
			rs := redisAdapter.New(cfg.RedisAddr, "", 0)
			defer rs.Close()
			store = rs
			logger.Info("using redis trace store", "addr", cfg.RedisAddr)
		} else {
			store = memory.New()
			logger.Info("using in-memory trace store")
		}

		server := httpAdapter.NewServer(svc,
			httpAdapter.WithStore(store),
			httpAdapter.WithLogger(logger),
		)
		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: server.Handler(),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return err

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// In-flight trace runs get the grace period before the listener
			// is torn out from under them.
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown incomplete, closing", "err", err)
				return srv.Close()
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
