package database

import (
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres (Supabase) in production
	_ "github.com/mattn/go-sqlite3"    // local development and tests
	"subrelay/internal/platform/config"
)

// Driver picks the database/sql driver from the URL scheme: postgres URLs use
// pgx, everything else is treated as a sqlite path.
func Driver(rawURL string) string {
	if strings.HasPrefix(rawURL, "postgres://") || strings.HasPrefix(rawURL, "postgresql://") {
		return "pgx"
	}
	return "sqlite3"
}

// DSN returns the connection string for the driver, injecting the service
// credential into postgres URLs that do not already carry one. A password with
// no user to attach it to is an error.
func DSN(cfg config.DatabaseConfig) (string, error) {
	dsn := cfg.URL
	if Driver(dsn) == "sqlite3" {
		return strings.TrimPrefix(dsn, "file:"), nil
	}

	if cfg.Password == "" {
		return dsn, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if u.User == nil || u.User.Username() == "" {
		return "", errors.New("database password is set but the postgres URL names no user")
	}
	if _, set := u.User.Password(); !set {
		u.User = url.UserPassword(u.User.Username(), cfg.Password)
	}
	return u.String(), nil
}

func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(Driver(cfg.URL), dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
