package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/shenikar/guardian_response/internal/repository"
)

func (s *Store) GetOfficer(ctx context.Context, id uuid.UUID) (*models.Officer, error) {
	query := `
		SELECT id, badge_number, full_name, rank, station, phone, is_active, created_at
		FROM police_officers
		WHERE id = ?;
	`
	var (
		officer          models.Officer
		rawID, createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID,
		&officer.BadgeNumber,
		&officer.FullName,
		&officer.Rank,
		&officer.Station,
		&officer.Phone,
		&officer.IsActive,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("officer with id %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get officer by id: %w", err)
	}
	if officer.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse officer id: %w", err)
	}
	if officer.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &officer, nil
}

// CreateOfficer заводит офицера, используется при локальном запуске и в тестах
func (s *Store) CreateOfficer(ctx context.Context, officer *models.Officer) error {
	if officer.ID == uuid.Nil {
		officer.ID = uuid.New()
	}
	if officer.CreatedAt.IsZero() {
		officer.CreatedAt = s.clock.Now().UTC()
	}
	query := `
		INSERT INTO police_officers (id, badge_number, full_name, rank, station, phone, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := s.db.ExecContext(ctx, query,
		officer.ID.String(),
		officer.BadgeNumber,
		officer.FullName,
		officer.Rank,
		officer.Station,
		officer.Phone,
		officer.IsActive,
		formatTime(officer.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create officer: %w", err)
	}
	return nil
}

// Officers адаптирует Store к справочнику офицеров (GetByID уже занят инцидентами)
type Officers struct {
	store *Store
}

func (s *Store) Officers() Officers {
	return Officers{store: s}
}

func (o Officers) GetByID(ctx context.Context, id uuid.UUID) (*models.Officer, error) {
	return o.store.GetOfficer(ctx, id)
}
