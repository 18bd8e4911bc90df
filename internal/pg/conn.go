package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
)

// Pool: настройки пула соединений к хостинговой базе.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	PingTimeout time.Duration
}

func DefaultPool() Pool {
	return Pool{MaxOpen: 10, MaxIdle: 5, MaxLifetime: 30 * time.Minute, PingTimeout: 5 * time.Second}
}

// Open открывает пул и сразу проверяет доступность базы.
func Open(ctx context.Context, url string, p Pool) (*sql.DB, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("pg: empty database url")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(p.MaxLifetime)
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)

	ctx, cancel := context.WithTimeout(ctx, p.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return db, nil
}
