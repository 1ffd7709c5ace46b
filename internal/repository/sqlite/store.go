// Package sqlite - хранилище инцидентов на SQLite для локального запуска и тестов.
// После каждой зафиксированной записи публикует событие в feed.Broker.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shenikar/guardian_response/internal/clock"
	"github.com/shenikar/guardian_response/internal/feed"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schemaSQL string

// время хранится текстом фиксированной ширины в UTC, чтобы сортировка строк совпадала с хронологией
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

type Store struct {
	db     *sql.DB
	broker *feed.Broker
	clock  clock.Clock
	logger *logrus.Logger
}

// Open открывает или создаёт базу: WAL, busy timeout 5s, внешние ключи, схема.
// broker может быть nil, тогда события не публикуются.
func Open(path string, broker *feed.Broker, logger *logrus.Logger, opts ...Option) (*Store, error) {
	// внешние ключи и таймаут в DSN действуют на каждое новое соединение пула
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite допускает одного писателя
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:     db,
		broker: broker,
		clock:  clock.Real(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) publish(ev models.ChangeEvent) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(ev)
	s.logger.WithFields(logrus.Fields{
		"store":       "sqlite",
		"kind":        ev.Kind,
		"incident_id": ev.ID,
	}).Debug("Change event published")
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", v, err)
	}
	return t, nil
}
