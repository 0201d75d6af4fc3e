package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tourstats/internal/config"
	"tourstats/internal/store"
)

// openDatabase establishes a database connection and retries until the instance responds.
func openDatabase(ctx context.Context, databaseURL string) (*sql.DB, store.Dialect, error) {
	driver, dsn, dialect, err := driverDSN(databaseURL)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	const (
		pingTimeout    = 5 * time.Second
		maxWait        = 30 * time.Second
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, dialect, nil
		}

		// Respect caller cancellation.
		if ctx.Err() != nil {
			break
		}

		if time.Now().After(deadline) {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	_ = db.Close()
	return nil, "", fmt.Errorf("ping database: %w", lastErr)
}

// driverDSN resolves a DATABASE_URL into the driver name, the DSN that driver
// understands and the placeholder dialect used for writes.
func driverDSN(databaseURL string) (driver, dsn string, dialect store.Dialect, err error) {
	driver, err = config.DatabaseDriver(databaseURL)
	if err != nil {
		return "", "", "", err
	}

	if driver == "mysql" {
		dsn, err = toMySQLDSN(databaseURL)
		if err != nil {
			return "", "", "", err
		}
		return driver, dsn, store.DialectMySQL, nil
	}

	return driver, databaseURL, store.DialectPostgres, nil
}

// toMySQLDSN converts mysql://user:pw@host:port/db into the go-sql-driver form.
func toMySQLDSN(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}

	user := ""
	pass := ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	host := u.Host
	name := strings.TrimPrefix(u.Path, "/")
	if user == "" || host == "" || name == "" {
		return "", errors.New("database url must include user, host and database name")
	}

	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", user, pass, host, name), nil
}
