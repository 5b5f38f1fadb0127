package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		cuisines TEXT NOT NULL DEFAULT '',
		aggregate_rating NUMERIC(3,1) NOT NULL DEFAULT 0,
		votes INTEGER NOT NULL DEFAULT 0,
		latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		geo_status TEXT NOT NULL DEFAULT 'PENDING'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurants_geo_status ON restaurants (geo_status)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurants_lat_lng ON restaurants (latitude, longitude)`,
}

// Migrate creates the schema if it does not exist. Safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
