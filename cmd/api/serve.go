package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"example.com/notes-api/internal/auth"
	"example.com/notes-api/internal/config"
	"example.com/notes-api/internal/db"
	"example.com/notes-api/internal/events"
	"example.com/notes-api/internal/memstore"
	"example.com/notes-api/internal/metrics"
	"example.com/notes-api/internal/notes"
	"example.com/notes-api/internal/service"
	"example.com/notes-api/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, config.Load(), slog.Default())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// backend is the storage the service and accounts run on.
type backend struct {
	notes    service.NoteRepo
	tags     service.TagRepo
	users    auth.UserRepo
	sessions auth.SessionRepo
	close    func()
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (backend, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on exit")
		mem := memstore.New()
		return backend{notes: mem, tags: mem, users: mem, sessions: mem, close: func() {}}, nil
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL, db.Up); err != nil {
			return backend{}, err
		}
		log.Info("migrations applied")
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL, db.Options{
		MaxOpen:     cfg.MaxOpenConns,
		MaxIdle:     cfg.MaxIdleConns,
		MaxLifetime: cfg.ConnMaxLifetime,
		MaxIdleTime: cfg.ConnMaxIdleTime,
	})
	if err != nil {
		return backend{}, err
	}
	repo, err := notes.NewRepository(ctx, conn.SQL)
	if err != nil {
		_ = conn.Close()
		return backend{}, err
	}
	accounts := notes.NewAccountRepository(conn.SQL)
	return backend{
		notes:    repo,
		tags:     repo,
		users:    accounts,
		sessions: accounts,
		close: func() {
			_ = repo.Close()
			_ = conn.Close()
		},
	}, nil
}

func newPublisher(cfg config.Config, m *metrics.Metrics, log *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Discard
	}
	log.Info("publishing change events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return events.Instrument(events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), m.ObserveEvent)
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdownTracing, err := tracing.Init(cfg.TracingEndpoint, "notes-api")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("shutdown tracer provider", "err", err)
		}
	}()

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.close()

	m := metrics.New()
	pub := newPublisher(cfg, m, log)
	defer pub.Close()

	svc := service.New(be.notes, be.tags, pub, log)
	accounts := auth.New(be.users, be.sessions, cfg.SessionTTL)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           notes.NewHandlers(svc, accounts, notes.WithLogger(log), notes.WithMetrics(m)).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("notes API listening", "addr", cfg.HTTPAddr, "store", cfg.Store)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
