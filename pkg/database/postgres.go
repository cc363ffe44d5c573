package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

// NewPostgres opens the pool and pings it. Sessions carry the service name and the
// configured statement and lock timeouts; an advisory lock wait past LockTimeout
// fails with lock_not_available.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", postgresDSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// postgresDSN renders a lib/pq keyword/value string. Keys lib/pq does not know, such
// as the timeouts, travel to the server as run-time parameters.
func postgresDSN(cfg config.DatabaseConfig) string {
	params := []string{
		"host=" + dsnValue(cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + dsnValue(cfg.User),
		"password=" + dsnValue(cfg.Password),
		"dbname=" + dsnValue(cfg.Name),
		"sslmode=" + dsnValue(cfg.SSLMode),
		"application_name=" + config.ServiceName,
	}
	if cfg.StatementTimeout > 0 {
		params = append(params, fmt.Sprintf("statement_timeout=%d", cfg.StatementTimeout.Milliseconds()))
	}
	if cfg.LockTimeout > 0 {
		params = append(params, fmt.Sprintf("lock_timeout=%d", cfg.LockTimeout.Milliseconds()))
	}
	return strings.Join(params, " ")
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
	return "'" + escaped + "'"
}
