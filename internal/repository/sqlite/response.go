package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/models"
)

// Insert добавляет запись в журнал реагирования, ID и created_at назначаются здесь
func (s *Store) Insert(ctx context.Context, rec *models.ResponseRecord) error {
	rec.ID = uuid.New()
	rec.CreatedAt = s.clock.Now().UTC()

	query := `
		INSERT INTO police_responses (id, alert_id, officer_id, action, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?);
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID.String(),
		rec.IncidentID.String(),
		rec.OfficerID.String(),
		string(rec.Action),
		rec.Note,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert response action: %w", err)
	}
	return nil
}

// ListByIncident возвращает журнал по created_at, равные метки в порядке вставки
func (s *Store) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]models.ResponseRecord, error) {
	query := `
		SELECT id, alert_id, officer_id, action, note, created_at
		FROM police_responses
		WHERE alert_id = ?
		ORDER BY created_at ASC, seq ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, incidentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list response actions: %w", err)
	}
	defer rows.Close()

	records := make([]models.ResponseRecord, 0)
	for rows.Next() {
		var (
			rec                    models.ResponseRecord
			id, alertID, officerID string
			action, createdAt      string
		)
		if err := rows.Scan(&id, &alertID, &officerID, &action, &rec.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan response row: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse response id: %w", err)
		}
		if rec.IncidentID, err = uuid.Parse(alertID); err != nil {
			return nil, fmt.Errorf("parse alert id: %w", err)
		}
		if rec.OfficerID, err = uuid.Parse(officerID); err != nil {
			return nil, fmt.Errorf("parse officer id: %w", err)
		}
		rec.Action = models.ResponseAction(action)
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error response iteration: %w", err)
	}
	return records, nil
}
