package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	ledgerPoolSize        = 5
	ledgerConnMaxLifetime = 30 * time.Minute
	ledgerConnectTimeout  = 2 * time.Second
)

// OpenDB opens the PostgreSQL pool backing the upload ledger.
func OpenDB(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	configureLedgerPool(db)

	// Validate connectivity immediately.
	ctx, cancel := context.WithTimeout(context.Background(), ledgerConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping ledger database: %w", err)
	}

	return db, nil
}

// configureLedgerPool sizes the pool for one INSERT per upload.
func configureLedgerPool(db *sql.DB) {
	db.SetMaxOpenConns(ledgerPoolSize)
	db.SetMaxIdleConns(ledgerPoolSize)
	db.SetConnMaxLifetime(ledgerConnMaxLifetime)
}
