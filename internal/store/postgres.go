package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"chess-trainer-bot/internal/config"
	"chess-trainer-bot/internal/domain"
	"chess-trainer-bot/internal/logger"
)

const connectTimeout = 5 * time.Second

// PostgresStore keeps the dataset document in a single row, honouring the
// same one-document-per-save contract as the file store.
type PostgresStore struct {
	db *sqlx.DB
}

// Connect opens the database connection, configures the pool, and
// verifies connectivity.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		logger.Store.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("host", cfg.Host),
			slog.String("db", cfg.Name),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxConnections)
	}

	logger.Store.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("host", cfg.Host),
		slog.String("db", cfg.Name),
		slog.Duration("duration", time.Since(start).Round(time.Millisecond)),
	)
	return db, nil
}

// NewPostgresStore wraps an open connection as a dataset store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load reads the dataset row. An absent row yields a fresh dataset.
func (s *PostgresStore) Load() (*domain.Dataset, error) {
	var raw []byte
	err := s.db.Get(&raw, `SELECT document FROM dataset WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Store.Info("dataset row absent, starting empty",
			slog.String("event", "store.load"),
		)
		return domain.NewDataset(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset row: %w", err)
	}

	ds := domain.NewDataset()
	if err := json.Unmarshal(raw, ds); err != nil {
		return nil, fmt.Errorf("parse dataset row: %w: %v", ErrCorrupt, err)
	}
	if ds.Parents == nil {
		ds.Parents = map[string]string{}
	}
	return ds, nil
}

// Save upserts the dataset row in one statement.
func (s *PostgresStore) Save(ds *domain.Dataset) error {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	_, err := s.db.Exec(`
		INSERT INTO dataset (id, document, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		buf.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("write dataset row: %w", err)
	}
	return nil
}
