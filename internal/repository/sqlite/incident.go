package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/shenikar/guardian_response/internal/repository"
)

const incidentSelect = `
	SELECT
		a.id, a.user_id, a.status,
		a.latitude, a.longitude, a.heading, a.speed, a.battery,
		a.address_snapshot, a.started_at, a.resolved_at, a.last_updated,
		a.user_name, a.user_email,
		p.id IS NOT NULL, p.full_name, p.phone_number, p.avatar_url
	FROM active_alerts a
	LEFT JOIN profiles p ON p.id = a.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create сохраняет инцидент. ID и started_at назначаются, если не заданы.
func (s *Store) Create(ctx context.Context, incident *models.Incident) error {
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	if incident.StartedAt.IsZero() {
		incident.StartedAt = s.clock.Now()
	}
	if incident.Status == "" {
		incident.Status = models.StatusActive
	}
	incident.StartedAt = incident.StartedAt.UTC()
	incident.LastUpdated = incident.StartedAt

	query := `
		INSERT INTO active_alerts (
			id, user_id, status, latitude, longitude, heading, speed, battery,
			address_snapshot, user_name, user_email, started_at, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := s.db.ExecContext(ctx, query,
		incident.ID.String(),
		incident.UserID,
		string(incident.Status),
		incident.Latitude,
		incident.Longitude,
		incident.Heading,
		incident.Speed,
		incident.Battery,
		incident.AddressSnapshot,
		incident.UserName,
		incident.UserEmail,
		formatTime(incident.StartedAt),
		formatTime(incident.LastUpdated),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("user %s already has an active incident: %w", incident.UserID, repository.ErrConflict)
		}
		return fmt.Errorf("failed to create incident: %w", err)
	}

	s.publish(models.ChangeEvent{Kind: models.ChangeInsert, ID: incident.ID, Row: incident.Clone()})
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	incident, err := scanIncident(s.db.QueryRowContext(ctx, incidentSelect+` WHERE a.id = ?;`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

func (s *Store) FindActiveByUser(ctx context.Context, userID string) (*models.Incident, error) {
	query := incidentSelect + ` WHERE a.user_id = ? AND a.status = 'ACTIVE' ORDER BY a.started_at DESC LIMIT 1;`
	incident, err := scanIncident(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active incident for user %s: %w", userID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find active incident: %w", err)
	}
	return incident, nil
}

// List возвращает все инциденты, started_at по убыванию
func (s *Store) List(ctx context.Context) ([]*models.Incident, error) {
	rows, err := s.db.QueryContext(ctx, incidentSelect+` ORDER BY a.started_at DESC, a.id;`)
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

// UpdateTelemetry обновляет телеметрию активного инцидента, nil-поля не трогаются
func (s *Store) UpdateTelemetry(ctx context.Context, id uuid.UUID, patch *models.IncidentPatch, at time.Time) error {
	query := `
		UPDATE active_alerts SET
			latitude = COALESCE(?, latitude),
			longitude = COALESCE(?, longitude),
			heading = COALESCE(?, heading),
			speed = COALESCE(?, speed),
			battery = COALESCE(?, battery),
			address_snapshot = COALESCE(?, address_snapshot),
			last_updated = MAX(last_updated, ?)
		WHERE id = ? AND status = 'ACTIVE';
	`
	res, err := s.db.ExecContext(ctx, query,
		patch.Latitude,
		patch.Longitude,
		patch.Heading,
		patch.Speed,
		patch.Battery,
		patch.AddressSnapshot,
		formatTime(at),
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update incident telemetry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("active incident with id %s: %w", id, repository.ErrNotFound)
	}

	ts := at.UTC()
	published := &models.IncidentPatch{
		Latitude:        patch.Latitude,
		Longitude:       patch.Longitude,
		Heading:         patch.Heading,
		Speed:           patch.Speed,
		Battery:         patch.Battery,
		AddressSnapshot: patch.AddressSnapshot,
		LastUpdated:     &ts,
	}
	s.publish(models.ChangeEvent{Kind: models.ChangeUpdate, ID: id, Patch: published})
	return nil
}

// Resolve закрывает инцидент. Повторный вызов не меняет resolved_at и не возвращает ошибку.
func (s *Store) Resolve(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE active_alerts SET
			status = 'RESOLVED',
			resolved_at = COALESCE(resolved_at, ?),
			last_updated = MAX(last_updated, ?)
		WHERE id = ?;
	`
	ts := formatTime(at)
	res, err := s.db.ExecContext(ctx, query, ts, ts, id.String())
	if err != nil {
		return fmt.Errorf("failed to resolve incident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("incident with id %s not found for resolve: %w", id, repository.ErrNotFound)
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		// запись уже зафиксирована, подписчики догонят на следующем refresh
		s.logger.WithError(err).WithField("incident_id", id).Warn("Failed to read resolved incident for change event")
		return nil
	}
	status := current.Status
	last := current.LastUpdated
	s.publish(models.ChangeEvent{
		Kind: models.ChangeUpdate,
		ID:   id,
		Patch: &models.IncidentPatch{
			Status:      &status,
			ResolvedAt:  current.ResolvedAt,
			LastUpdated: &last,
		},
	})
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM active_alerts WHERE id = ?;`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("incident with id %s not found for delete: %w", id, repository.ErrNotFound)
	}
	s.publish(models.ChangeEvent{Kind: models.ChangeDelete, ID: id})
	return nil
}

// UpsertProfile сохраняет профиль пользователя, который подтягивается джойном
func (s *Store) UpsertProfile(ctx context.Context, userID string, profile models.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, phone_number, avatar_url) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			full_name = excluded.full_name,
			phone_number = excluded.phone_number,
			avatar_url = excluded.avatar_url;
	`
	if _, err := s.db.ExecContext(ctx, query, userID, profile.FullName, profile.PhoneNumber, profile.AvatarURL); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func scanIncident(row rowScanner) (*models.Incident, error) {
	var (
		incident   models.Incident
		id         string
		status     string
		startedAt  string
		resolvedAt *string
		lastUpd    string
		hasProfile bool
		profile    models.Profile
	)
	err := row.Scan(
		&id,
		&incident.UserID,
		&status,
		&incident.Latitude,
		&incident.Longitude,
		&incident.Heading,
		&incident.Speed,
		&incident.Battery,
		&incident.AddressSnapshot,
		&startedAt,
		&resolvedAt,
		&lastUpd,
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

	if incident.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse incident id: %w", err)
	}
	incident.Status = models.IncidentStatus(status)
	if incident.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if incident.LastUpdated, err = parseTime(lastUpd); err != nil {
		return nil, err
	}
	if resolvedAt != nil {
		t, err := parseTime(*resolvedAt)
		if err != nil {
			return nil, err
		}
		incident.ResolvedAt = &t
	}
	if hasProfile {
		incident.Profile = &profile
	}
	return &incident, nil
}
