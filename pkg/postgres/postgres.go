package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options - параметры пула соединений
type Options struct {
	MaxConns        int32
	MaxConnIdleTime time.Duration
}

// NewPool создает пул соединений PostgreSQL и проверяет его ping-ом.
// Одно соединение из пула уходит под LISTEN, поэтому MaxConns не бывает меньше 2.
func NewPool(ctx context.Context, dsn string, opts Options) (*pgxpool.Pool, error) {
	cfgPool, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе конфигурации postgres: %w", err)
	}
	if opts.MaxConns > 0 {
		cfgPool.MaxConns = max(opts.MaxConns, 2)
	}
	if opts.MaxConnIdleTime > 0 {
		cfgPool.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, cfgPool)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("не удалось выполнить ping к postgres: %w", err)
	}

	return dbpool, nil
}
