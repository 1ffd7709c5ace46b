package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/guardian_response/internal/models"
)

// ResponseRepository - журнал действий реагирования, только добавление
type ResponseRepository struct {
	db *pgxpool.Pool
}

func NewResponseRepository(db *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Insert сохраняет действие, ID и created_at назначает бд
func (r *ResponseRepository) Insert(ctx context.Context, rec *models.ResponseRecord) error {
	query := `
		INSERT INTO police_responses (alert_id, officer_id, action, note)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		rec.IncidentID,
		rec.OfficerID,
		rec.Action,
		rec.Note,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert response action: %w", err)
	}
	return nil
}

// ListByIncident возвращает журнал инцидента, created_at по возрастанию
func (r *ResponseRepository) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]models.ResponseRecord, error) {
	query := `
		SELECT id, alert_id, officer_id, action, note, created_at
		FROM police_responses
		WHERE alert_id = $1
		ORDER BY created_at ASC, id;
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list response actions: %w", err)
	}
	defer rows.Close()

	records := make([]models.ResponseRecord, 0)
	for rows.Next() {
		var rec models.ResponseRecord
		if err := rows.Scan(&rec.ID, &rec.IncidentID, &rec.OfficerID, &rec.Action, &rec.Note, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan response row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error response iteration: %w", err)
	}
	return records, nil
}
