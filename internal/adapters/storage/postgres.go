package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/tx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultListLimit число запусков, которое отдает ListRuns без явного лимита
const DefaultListLimit = 50

const schema = `
	CREATE SCHEMA IF NOT EXISTS sync;
	CREATE TABLE IF NOT EXISTS sync.import_runs (
		id          UUID PRIMARY KEY,
		kind        TEXT        NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		succeeded   BOOLEAN     NOT NULL DEFAULT FALSE,
		errors      JSONB       NOT NULL DEFAULT '[]'::jsonb
	);
	CREATE INDEX IF NOT EXISTS import_runs_started_at_idx ON sync.import_runs (started_at DESC);
`

// RunStorage журнал запусков импорта в PostgreSQL
type RunStorage struct {
	pool      *pgxpool.Pool
	txManager tx.TxManager
}

// NewRunStorage подключается к БД и создает таблицу журнала, если ее нет
func NewRunStorage(ctx context.Context, connectionString string, logger interfaces.LoggerPort) (*RunStorage, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewRunStorageWithPool(ctx, pool, logger)
}

// NewRunStorageWithPool использует готовый пул
func NewRunStorageWithPool(ctx context.Context, pool *pgxpool.Pool, logger interfaces.LoggerPort) (*RunStorage, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &RunStorage{pool: pool, txManager: tx.NewTxManager(pool, logger)}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RunStorage) migrate(ctx context.Context) error {
	return s.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := s.getExecutor(ctx).Exec(ctx, schema); err != nil {
			return fmt.Errorf("failed to create import_runs table: %w", err)
		}
		return nil
	})
}

type executor interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// getExecutor возвращает транзакцию из контекста или пул
func (s *RunStorage) getExecutor(ctx context.Context) executor {
	if t, ok := tx.GetTxFromContext(ctx); ok {
		return t
	}
	return s.pool
}

// SaveRun вставляет запуск или обновляет его итог
func (s *RunStorage) SaveRun(ctx context.Context, run *interfaces.ImportRun) error {
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	encoded, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("failed to encode run errors: %w", err)
	}

	query := `
		INSERT INTO sync.import_runs (id, kind, started_at, finished_at, succeeded, errors)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			finished_at = $4,
			succeeded = $5,
			errors = $6
	`
	if _, err := s.getExecutor(ctx).Exec(ctx, query,
		run.ID, run.Kind, run.StartedAt, run.FinishedAt, run.Succeeded, encoded); err != nil {
		return fmt.Errorf("failed to save import run: %w", err)
	}
	return nil
}

// ListRuns возвращает последние запуски, новые первыми
func (s *RunStorage) ListRuns(ctx context.Context, limit int) ([]*interfaces.ImportRun, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, kind, started_at, finished_at, succeeded, errors
		FROM sync.import_runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := s.getExecutor(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*interfaces.ImportRun, 0, limit)
	for rows.Next() {
		var (
			run      interfaces.ImportRun
			id       string
			finished *time.Time
			encoded  []byte
		)
		if err := rows.Scan(&id, &run.Kind, &run.StartedAt, &finished, &run.Succeeded, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan import run row: %w", err)
		}
		run.ID = id
		run.FinishedAt = finished
		if err := json.Unmarshal(encoded, &run.Errors); err != nil {
			return nil, fmt.Errorf("failed to decode run errors: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating import run rows: %w", err)
	}
	return runs, nil
}

func (s *RunStorage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *RunStorage) Close() error {
	s.pool.Close()
	return nil
}
