package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hyperengineering/showcase/internal/api"
	"github.com/hyperengineering/showcase/internal/catalog"
	"github.com/hyperengineering/showcase/internal/config"
	"github.com/hyperengineering/showcase/internal/contact"
	"github.com/hyperengineering/showcase/internal/metrics"
	"github.com/hyperengineering/showcase/internal/snapshot"
	"github.com/hyperengineering/showcase/internal/store"
	"github.com/hyperengineering/showcase/internal/worker"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "showcase",
	Short:         "Showcase - portfolio site service",
	Long:          "Serves the project catalog and the contact form pipeline over HTTP.",
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	slog.SetDefault(newLogger(os.Stdout, cfg.Log))
	slog.Info("logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	// Store (migrations, WAL mode)
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		slog.Info("metrics initialized")
	}

	cat := catalog.Default()
	slog.Info("catalog loaded", "projects", cat.Len())

	// Forms outlive the signal context so requests drained by
	// srv.Shutdown can still complete their submissions.
	formsCtx, cancelForms := context.WithCancel(context.Background())
	defer cancelForms()
	forms := newFormRegistry(formsCtx, cfg, db, m)
	slog.Info("form registry initialized",
		"submit_delay", time.Duration(cfg.Contact.SubmitDelay).String())

	handler := api.NewHandler(cat, forms, db, m, cfg.Catalog.PreviewCap, Version)

	var snapshots *worker.SnapshotWorker
	if cfg.Snapshot.Interval > 0 {
		uploader, err := snapshot.NewUploader(cfg.Snapshot.Storage)
		if err != nil {
			db.Close()
			return err
		}
		handler.WithSnapshots(uploader, cfg.Snapshot.Path)
		snapshots = worker.NewSnapshotWorker(db, uploader, cfg.Snapshot.Path,
			time.Duration(cfg.Snapshot.Interval))
		slog.Info("snapshots enabled",
			"path", cfg.Snapshot.Path,
			"bucket", cfg.Snapshot.Storage.Bucket,
			"interval", time.Duration(cfg.Snapshot.Interval).String())
	}
	var metricsHandler http.Handler
	if m != nil {
		metricsHandler = m.Handler()
	}
	router := api.NewRouter(handler, metricsHandler)
	slog.Info("router initialized")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	var wg sync.WaitGroup
	sweeper := worker.NewFormSweeper(forms,
		time.Duration(cfg.Forms.SweepInterval),
		time.Duration(cfg.Forms.IdleTTL),
		sweepObserver(m))
	startWorker(ctx, &wg, "form-sweeper", sweeper.Run)
	if snapshots != nil {
		startWorker(ctx, &wg, "snapshot", snapshots.Run)
	}

	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected result of Shutdown().
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	drain(shutdownCtx, srv, forms)
	cancelForms()

	wg.Wait()

	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// drain stops the server, letting in-flight requests finish against live
// forms, then shuts the registry down. Pending submissions that remain are
// aborted without a notification; completions already notifying are waited
// for so none reaches the store after it closes.
func drain(ctx context.Context, srv *http.Server, forms *contact.Registry) {
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	forms.Shutdown()
}

// newLogger builds the process logger from the log settings.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// newFormRegistry wires the contact pipeline: simulated delivery, then
// fan-out of the success notification to the log, the notification store
// and, when enabled, the metrics counter.
func newFormRegistry(ctx context.Context, cfg *config.Config, s store.Store, m *metrics.Metrics) *contact.Registry {
	sinks := contact.Notifiers{contact.LogNotifier{}, store.Sink(s)}
	opts := []contact.Option{contact.WithSuccessMessage(cfg.Contact.SuccessMessage)}
	if m != nil {
		sinks = append(sinks, m.Notifier())
		opts = append(opts, contact.WithObserver(m))
	}
	submitter := contact.SimulatedSubmitter{Delay: time.Duration(cfg.Contact.SubmitDelay)}
	return contact.NewRegistry(ctx, submitter, sinks, opts...)
}

// sweepObserver avoids handing a typed nil to the sweeper.
func sweepObserver(m *metrics.Metrics) worker.SweepObserver {
	if m == nil {
		return nil
	}
	return m
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
