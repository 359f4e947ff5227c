package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/training-dashboard/internal/adapter"
	"github.com/example/training-dashboard/internal/application"
	"github.com/example/training-dashboard/internal/config"
	httptransport "github.com/example/training-dashboard/internal/http"
	"github.com/example/training-dashboard/internal/logging"
	"github.com/example/training-dashboard/internal/persistence/csvstore"
	"github.com/example/training-dashboard/internal/persistence/memory"
)

var version = "dev"

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "trainingd",
		Short:         "Serve the training records dashboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.Options{EnvFile: envFile, Flags: cmd.Flags()})
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger := logging.New(out, cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}

	root.Flags().StringVar(&envFile, "config", "", "dotenv file to load before reading the environment")
	root.Flags().String("addr", "", "listen address, overrides TRAINING_HTTP_ADDR")
	root.Flags().String("records-file", "", "CSV file holding training records, overrides TRAINING_RECORDS_FILE")
	root.Flags().String("log-level", "", "log level (debug, info, warn, error), overrides TRAINING_LOG_LEVEL")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

// app holds the wired service and its HTTP handler.
type app struct {
	service *application.Service
	records *csvstore.Store
	handler http.Handler
}

// build opens the record file, wires the stores into the service, ensures a
// bootstrap administrator exists and assembles the router.
func build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	records, report, err := csvstore.Open(ctx, cfg.RecordsFile, csvstore.Options{
		Durability: durability(cfg.Durability),
		LoadPolicy: loadPolicy(cfg.LoadPolicy),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	logger.Info("records ready", "path", cfg.RecordsFile, "loaded", report.Loaded, "skipped", len(report.Skipped), "next_id", report.NextID)

	service := application.NewServiceWithLogger(application.ServiceDeps{
		Accounts:            adapter.Accounts(memory.NewAccountStore()),
		Sessions:            adapter.Sessions(memory.NewSessionStore()),
		Records:             adapter.Records(records),
		IDGenerator:         uuid.NewString,
		TokenGenerator:      func() string { return randomHex(32) },
		Now:                 time.Now,
		SessionTTL:          cfg.SessionTTL,
		RefreshSessionRoles: cfg.RefreshSessionRoles,
	}, logger)

	if _, err := service.BootstrapAdmin(ctx, application.BootstrapParams{
		Username: cfg.BootstrapUsername,
		Password: cfg.BootstrapPassword,
	}); err != nil {
		return nil, fmt.Errorf("bootstrap administrator: %w", err)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(service, logger),
		Accounts: httptransport.NewAccountHandler(service, logger),
		Records:  httptransport.NewRecordHandler(service, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.CORS(cfg.CORSOrigins),
		},
	})

	return &app{service: service, records: records, handler: router}, nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("training API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func durability(value string) csvstore.Durability {
	if value == config.DurabilityStrict {
		return csvstore.Strict
	}
	return csvstore.BestEffort
}

func loadPolicy(value string) csvstore.LoadPolicy {
	if value == config.LoadPolicyAbort {
		return csvstore.AbortOnMalformed
	}
	return csvstore.SkipMalformed
}

// randomHex returns n random bytes hex encoded. crypto/rand.Read does not
// fail on supported platforms.
func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
