package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/guardian_response/internal/models"
)

const incidentColumns = `
		a.id,
		a.user_id,
		a.status,
		a.latitude,
		a.longitude,
		a.heading,
		a.speed,
		a.battery,
		a.address_snapshot,
		a.started_at,
		a.resolved_at,
		a.last_updated,
		a.user_name,
		a.user_email,
		p.id IS NOT NULL,
		p.full_name,
		p.phone_number,
		p.avatar_url`

const incidentFrom = `
		FROM active_alerts a
		LEFT JOIN profiles p ON p.id = a.user_id`

type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// Create создает новый инцидент в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO active_alerts (
			user_id, status, latitude, longitude, heading, speed, battery,
			address_snapshot, user_name, user_email, started_at, last_updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id, started_at, last_updated;
	`
	err := r.db.QueryRow(ctx, query,
		incident.UserID,
		incident.Status,
		incident.Latitude,
		incident.Longitude,
		incident.Heading,
		incident.Speed,
		incident.Battery,
		incident.AddressSnapshot,
		incident.UserName,
		incident.UserEmail,
		incident.StartedAt,
	).Scan(&incident.ID, &incident.StartedAt, &incident.LastUpdated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user %s already has an active incident: %w", incident.UserID, ErrConflict)
		}
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID вместе с профилем
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT` + incidentColumns + incidentFrom + `
		WHERE a.id = $1;
	`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// FindActiveByUser возвращает активный инцидент пользователя или ErrNotFound
func (r *IncidentRepository) FindActiveByUser(ctx context.Context, userID string) (*models.Incident, error) {
	query := `SELECT` + incidentColumns + incidentFrom + `
		WHERE a.user_id = $1 AND a.status = 'ACTIVE'
		ORDER BY a.started_at DESC
		LIMIT 1;
	`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("active incident for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find active incident: %w", err)
	}
	return incident, nil
}

// List возвращает все инциденты, started_at по убыванию
func (r *IncidentRepository) List(ctx context.Context) ([]*models.Incident, error) {
	query := `SELECT` + incidentColumns + incidentFrom + `
		ORDER BY a.started_at DESC, a.id;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// UpdateTelemetry обновляет телеметрию активного инцидента, nil-поля патча не трогаются
func (r *IncidentRepository) UpdateTelemetry(ctx context.Context, id uuid.UUID, patch *models.IncidentPatch, at time.Time) error {
	query := `
		UPDATE active_alerts SET
			latitude = COALESCE($2, latitude),
			longitude = COALESCE($3, longitude),
			heading = COALESCE($4, heading),
			speed = COALESCE($5, speed),
			battery = COALESCE($6, battery),
			address_snapshot = COALESCE($7, address_snapshot),
			last_updated = GREATEST(last_updated, $8)
		WHERE id = $1 AND status = 'ACTIVE';
	`
	cmdTag, err := r.db.Exec(ctx, query,
		id,
		patch.Latitude,
		patch.Longitude,
		patch.Heading,
		patch.Speed,
		patch.Battery,
		patch.AddressSnapshot,
		at,
	)
	if err != nil {
		return fmt.Errorf("failed to update incident telemetry: %w", err)
	}

	// Ни одной строки: инцидента нет либо он уже закрыт
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("active incident with id %s: %w", id, ErrNotFound)
	}
	return nil
}

// Resolve закрывает инцидент. Повторный вызов не меняет resolved_at и не возвращает ошибку.
func (r *IncidentRepository) Resolve(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE active_alerts SET
			status = 'RESOLVED',
			resolved_at = COALESCE(resolved_at, $2),
			last_updated = GREATEST(last_updated, $2)
		WHERE id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to resolve incident: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for resolve: %w", id, ErrNotFound)
	}
	return nil
}

// Delete удаляет инцидент вместе с журналом реагирования
func (r *IncidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM active_alerts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for delete: %w", id, ErrNotFound)
	}
	return nil
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	var (
		hasProfile bool
		profile    models.Profile
	)
	err := row.Scan(
		&incident.ID,
		&incident.UserID,
		&incident.Status,
		&incident.Latitude,
		&incident.Longitude,
		&incident.Heading,
		&incident.Speed,
		&incident.Battery,
		&incident.AddressSnapshot,
		&incident.StartedAt,
		&incident.ResolvedAt,
		&incident.LastUpdated,
		&incident.UserName,
		&incident.UserEmail,
		&hasProfile,
		&profile.FullName,
		&profile.PhoneNumber,
		&profile.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	if hasProfile {
		incident.Profile = &profile
	}
	return incident, nil
}
