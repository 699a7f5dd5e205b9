package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"static-drop/internal/db"
	"static-drop/internal/server"
)

func main() {
	if err := server.ValidateAllConfiguration(); err != nil {
		log.Printf("service=backend msg=%q err=%v", "invalid_configuration", err)
		os.Exit(1)
	}
	server.WarnOnOptionalMissingConfig()

	addr := "0.0.0.0:" + getenvDefault("PORT", "5000")

	build := server.BuildInfo{
		Version: getenvDefault("DROP_VERSION", "dev"),
		Commit:  getenvDefault("DROP_COMMIT", "unknown"),
	}

	root, err := filepath.Abs(getenvDefault("DROP_ROOT", "."))
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "bad_root", err)
		os.Exit(1)
	}

	// The local uploads directory always exists, even when uploads go to S3.
	disk, err := server.NewDiskStore(filepath.Join(root, "data"))
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "uploads_dir_failed", err)
		os.Exit(1)
	}
	var store server.Store = disk

	if os.Getenv("DROP_S3_ENDPOINT") != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ms, err := server.NewMinioStore(ctx, server.MinioConfig{
			Endpoint:  os.Getenv("DROP_S3_ENDPOINT"),
			AccessKey: os.Getenv("DROP_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("DROP_S3_SECRET_KEY"),
			Bucket:    os.Getenv("DROP_S3_BUCKET"),
			Prefix:    getenvDefault("DROP_S3_PREFIX", "data/"),
		})
		cancel()
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "minio_connect_failed", err)
			os.Exit(1)
		}
		store = ms
		log.Printf("service=backend msg=%q bucket=%s", "using_minio_store", os.Getenv("DROP_S3_BUCKET"))
	}

	// Optional upload ledger
	var (
		dbConn *sql.DB
		ledger server.Ledger
	)
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		dbConn, err = server.OpenDB(dsn)
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "db_connect_failed", err)
			os.Exit(1)
		}
		defer func() { _ = dbConn.Close() }()

		log.Printf("service=backend msg=%q", "running_migrations")
		if err := db.RunMigrations(dbConn); err != nil {
			log.Printf("service=backend msg=%q err=%v", "migration_failed", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "migrations_complete")
		ledger = server.NewPGLedger(dbConn)
	}

	maxUpload, _ := strconv.ParseInt(getenvDefault("DROP_MAX_UPLOAD_BYTES", "0"), 10, 64)

	srv, err := server.New(server.Config{
		Addr:           addr,
		AdminAddr:      os.Getenv("DROP_ADMIN_ADDR"),
		Root:           root,
		Store:          store,
		Ledger:         ledger,
		DB:             dbConn,
		MaxUploadBytes: maxUpload,
		Build:          build,
	})
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "server_init_failed", err)
		os.Exit(1)
	}

	// Start the HTTP server in a background goroutine so we can wait for signals.
	errCh := make(chan error, 1)
	go func() {
		log.Printf("service=backend msg=%q addr=%s root=%s version=%s commit=%s",
			"starting", addr, root, build.Version, build.Commit)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("service=backend msg=%q signal=%s", "shutting_down", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("service=backend msg=%q err=%v", "shutdown_error", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "shutdown_complete")
	case err := <-errCh:
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "server_error", err)
			os.Exit(1)
		}
	}
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
