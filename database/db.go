package database

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Connect opens the store named by url: postgres:// or postgresql:// URLs use
// lib/pq; "sqlite:<path>" or a bare file path uses the embedded SQLite driver.
func Connect(url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	driver, dsn := driverFor(url)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		log.WithError(err).Warn("database ping failed, proceeding carefully")
	}

	if driver == "postgres" {
		// Serverless Postgres suspends idle compute; don't hold idle connections.
		db.SetMaxIdleConns(0)
		db.SetMaxOpenConns(10)
	} else {
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			log.WithError(err).Warn("sqlite: enabling WAL failed")
		}
	}

	log.WithField("driver", driver).Info("connected to database")
	return db, nil
}

func driverFor(url string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url
	case strings.HasPrefix(url, "sqlite:"):
		return "sqlite", strings.TrimPrefix(url, "sqlite:")
	default:
		return "sqlite", url
	}
}
