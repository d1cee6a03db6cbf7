package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mintsim/arena-api/internal/api"
	"github.com/mintsim/arena-api/internal/config"
	"github.com/mintsim/arena-api/internal/db"
	"github.com/mintsim/arena-api/internal/logger"
	"github.com/mintsim/arena-api/internal/metrics"
	"github.com/mintsim/arena-api/internal/notify"
	"github.com/mintsim/arena-api/internal/repository/dao"
	"github.com/mintsim/arena-api/internal/service"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

type eventNotifier interface {
	service.EventNotifier
	Close() error
}

func runServe(cmd *cobra.Command, args []string) error {
	conf, err := bootstrap()
	if err != nil {
		return err
	}
	defer zap.L().Sync() //nolint:errcheck

	config.Watch(cfgFile, func(level string) {
		logger.SetLevel(level)
		zap.L().Info("log level reloaded", zap.String("level", level))
	})

	gormDB, err := openDatabase(conf)
	if err != nil {
		return err
	}
	defer db.Close(gormDB) //nolint:errcheck

	if conf.Database.AutoMigrate {
		if err = dao.InitTables(gormDB); err != nil {
			return fmt.Errorf("failed to migrate tables -> %w", err)
		}
	}
	if err = dao.CheckSchema(gormDB); err != nil {
		return fmt.Errorf("failed to verify schema -> %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	n := newNotifier(conf.Kafka, m)
	defer n.Close() //nolint:errcheck

	s := api.NewServer(conf, gormDB, m, n)
	routes := s.Router.Routes()
	for _, r := range routes {
		zap.L().Debug("route", zap.String("method", r.Method), zap.String("path", r.Path))
	}
	zap.L().Info("routes mounted", zap.Int("count", len(routes)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}

func newNotifier(conf *config.KafkaConfig, m *metrics.Metrics) eventNotifier {
	if conf == nil || !conf.Enabled || len(conf.Brokers) == 0 {
		zap.L().Info("event notifications disabled")
		return notify.Nop{}
	}

	zap.L().Info("publishing event notifications to kafka",
		zap.Strings("brokers", conf.Brokers),
		zap.String("topic", conf.Topic),
	)

	return notify.NewKafkaNotifier(conf, m)
}
