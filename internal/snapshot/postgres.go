package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic-scheduler/internal/model"
)

// Schema creates the single-row table holding the document.
const Schema = `CREATE TABLE IF NOT EXISTS clinic_snapshot (
	id         INT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const snapshotRow = 1

func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresRepo keeps the snapshot as a jsonb document in clinic_snapshot.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

func (r *PostgresRepo) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate clinic_snapshot: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Load(ctx context.Context) (*model.State, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx,
		`SELECT doc FROM clinic_snapshot WHERE id = $1`, snapshotRow,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return Decode(bytes.NewReader(doc))
}

func (r *PostgresRepo) Save(ctx context.Context, st *model.State) error {
	var buf bytes.Buffer
	if err := Encode(&buf, st); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO clinic_snapshot (id, doc, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		snapshotRow, buf.String(),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return tx.Commit(ctx)
}
