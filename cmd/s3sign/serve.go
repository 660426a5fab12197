package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wzshiming/s3sign/pkg/auth"
	"github.com/wzshiming/s3sign/pkg/config"
	"github.com/wzshiming/s3sign/pkg/server"
	"github.com/wzshiming/s3sign/pkg/storage"
)

func newServeCommand(opts *options) *cobra.Command {
	var (
		addr         string
		dataFile     string
		buckets      []string
		strictDelete bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local S3-compatible server that verifies signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg.Server
			if addr != "" {
				cfg.Address = addr
			}
			if dataFile != "" {
				cfg.DataFile = dataFile
			}

			store, err := storage.NewStorage(cfg.DataFile)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, b := range buckets {
				if err := store.CreateBucket(b); err != nil && err != storage.ErrBucketAlreadyExists {
					return err
				}
			}

			var serverOpts []server.Option
			if strictDelete {
				serverOpts = append(serverOpts, server.WithStrictDelete())
			}
			handler := newServeHandler(cfg, store, prometheus.DefaultRegisterer, opts.logger, serverOpts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return listenAndServe(ctx, cfg.Address, handler, opts.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&dataFile, "data", "", "Database file (default from config)")
	cmd.Flags().StringSliceVar(&buckets, "bucket", nil, "Bucket to create on startup, may be repeated")
	cmd.Flags().BoolVar(&strictDelete, "strict-delete", false, "Answer 404 NoSuchKey when deleting a missing object")
	return cmd
}

// newServeHandler assembles the verifier, the object handler, metrics and access logging
func newServeHandler(cfg config.ServerConfig, store *storage.Storage, reg prometheus.Registerer, logger *logrus.Logger, opts ...server.Option) http.Handler {
	opts = append([]server.Option{
		server.WithRegion(cfg.Region),
		server.WithLogger(logger),
	}, opts...)
	var s3 http.Handler = server.NewS3Handler(store, opts...)

	if len(cfg.AccessKeys) == 0 {
		logger.Warn("Running without authentication (no access keys configured)")
	} else {
		authenticator := auth.NewAWS4Authenticator()
		for _, k := range cfg.AccessKeys {
			authenticator.AddCredentials(k.AccessKey, k.SecretKey)
			logger.WithField("access_key", k.AccessKey).Info("Added credentials")
		}
		s3 = authenticator.AuthMiddleware(s3)
	}
	s3 = server.RequestID(s3)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "s3sign",
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "Total number of S3 requests, partitioned by status code and method.",
	}, []string{"code", "method"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "s3sign",
		Subsystem: "server",
		Name:      "request_duration_seconds",
		Help:      "Histogram of S3 request latencies.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if r, ok := reg.(*prometheus.Registry); ok {
		gatherer = r
	}
	reg.MustRegister(requests, duration)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", promhttp.InstrumentHandlerCounter(requests, promhttp.InstrumentHandlerDuration(duration, s3)))

	access := logger.WriterLevel(logrus.InfoLevel)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger),
		handlers.PrintRecoveryStack(logger.IsLevelEnabled(logrus.DebugLevel)),
	)
	return recovery(handlers.CombinedLoggingHandler(access, mux))
}

func listenAndServe(ctx context.Context, addr string, handler http.Handler, logger *logrus.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting S3-compatible server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
