// Package postgres stores geocoded district coordinates in Postgres so
// several api/worker replicas share one cache instead of one CSV file each.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

type GeocodeRepository struct {
	db *sql.DB
}

func NewGeocodeRepository(db *sql.DB) *GeocodeRepository {
	return &GeocodeRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *GeocodeRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	district TEXT PRIMARY KEY,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *GeocodeRepository) Get(ctx context.Context, district string) (domain.Coordinates, bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT latitude, longitude
FROM geocode_cache
WHERE district = $1
`, district)

	var coords domain.Coordinates
	if err := row.Scan(&coords.Latitude, &coords.Longitude); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Coordinates{}, false, nil
		}
		return domain.Coordinates{}, false, fmt.Errorf("get geocode entry: %w", err)
	}
	return coords, true, nil
}

func (r *GeocodeRepository) Put(ctx context.Context, district string, coords domain.Coordinates) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO geocode_cache (district, latitude, longitude, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (district) DO UPDATE
SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, updated_at = EXCLUDED.updated_at
`, district, coords.Latitude, coords.Longitude, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put geocode entry: %w", err)
	}
	return nil
}

func (r *GeocodeRepository) All(ctx context.Context) (map[string]domain.Coordinates, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT district, latitude, longitude
FROM geocode_cache
`)
	if err != nil {
		return nil, fmt.Errorf("list geocode entries: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates)
	for rows.Next() {
		var district string
		var coords domain.Coordinates
		if err := rows.Scan(&district, &coords.Latitude, &coords.Longitude); err != nil {
			return nil, fmt.Errorf("scan geocode entry: %w", err)
		}
		out[district] = coords
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate geocode entries: %w", err)
	}
	return out, nil
}
