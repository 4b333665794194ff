package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jbake1990/biteswipe/catalog"
	"github.com/jbake1990/biteswipe/cliparse"
	"github.com/jbake1990/biteswipe/memstore"
	"github.com/jbake1990/biteswipe/redistore"
	"github.com/jbake1990/biteswipe/router"
	"github.com/jbake1990/biteswipe/sqlstore"
	"github.com/jbake1990/biteswipe/store"
)

func main() {
	// Load .env if present; real env vars win
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded .env file")
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Open the coordination store
	st, err := openStore(cfg)
	if err != nil {
		slog.Error("store initialization failed", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("Store ready", "backend", cfg.StoreBackend)

	// Create router
	mux := router.NewRouter(st, catalog.NewFixture())

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func openStore(cfg cliparse.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case cliparse.BackendRedis:
		return redistore.Open(cfg.RedisURL)

	case cliparse.BackendSQLite, cliparse.BackendPostgres:
		driver := "sqlite"
		dsn := cfg.DatabaseURL
		if cfg.StoreBackend == cliparse.BackendPostgres {
			driver = "postgres"
		} else if !filepath.IsAbs(dsn) {
			// Relative sqlite files live under the data directory
			dsn = filepath.Join(cfg.DataDir, dsn)
		}
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, err
		}
		if err := sqlstore.CreateSchema(db); err != nil {
			return nil, err
		}
		return sqlstore.Open(db)

	default:
		return memstore.New(), nil
	}
}
