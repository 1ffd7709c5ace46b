// Package workflow ведёт многошаговое реагирование на инцидент:
// DISPATCHED → EN_ROUTE → ON_SCENE → RESOLVED.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/clock"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthorized   = errors.New("workflow: authenticated responder required")
	ErrInvalidAction  = errors.New("workflow: invalid response action")
	ErrPartialResolve = errors.New("workflow: action recorded but incident not resolved")
)

// PartialResolveError - RESOLVED записан в журнал, а перевод инцидента в RESOLVED не прошёл.
// Запись не откатывается, повторять resolve нужно вручную.
type PartialResolveError struct {
	IncidentID uuid.UUID
	Record     models.ResponseRecord
	Err        error
}

func (e *PartialResolveError) Error() string {
	return fmt.Sprintf("workflow: response %s recorded but incident %s not resolved: %v", e.Record.ID, e.IncidentID, e.Err)
}

func (e *PartialResolveError) Unwrap() []error {
	return []error{ErrPartialResolve, e.Err}
}

// ResponseLog - журнал действий реагирования, только добавление
//
//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks
type ResponseLog interface {
	// Insert сохраняет запись и заполняет ID и CreatedAt
	Insert(ctx context.Context, rec *models.ResponseRecord) error
	// ListByIncident возвращает записи по created_at по возрастанию
	ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]models.ResponseRecord, error)
}

// IncidentResolver переводит инцидент в RESOLVED. Повторный вызов для закрытого инцидента не ошибка.
type IncidentResolver interface {
	Resolve(ctx context.Context, id uuid.UUID, at time.Time) error
}

type EngineOption func(*Engine)

func WithEngineClock(c clock.Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

type Engine struct {
	log       ResponseLog
	incidents IncidentResolver
	logger    *logrus.Logger
	clock     clock.Clock
}

func NewEngine(log ResponseLog, incidents IncidentResolver, logger *logrus.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		log:       log,
		incidents: incidents,
		logger:    logger,
		clock:     clock.Real(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordAction пишет одно действие. Для RESOLVED вторым шагом закрывает инцидент,
// ошибка второго шага возвращается как *PartialResolveError.
func (e *Engine) RecordAction(ctx context.Context, incidentID uuid.UUID, responder *models.Officer, action models.ResponseAction, note *string) (*models.ResponseRecord, error) {
	log := e.logger.WithFields(logrus.Fields{
		"component":   "workflow",
		"method":      "RecordAction",
		"incident_id": incidentID,
		"action":      action,
	})

	if responder == nil || responder.ID == uuid.Nil || !responder.IsActive {
		log.Warn("Rejected response action without active responder")
		return nil, ErrUnauthorized
	}
	log = log.WithField("officer_id", responder.ID)

	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	rec := &models.ResponseRecord{
		IncidentID: incidentID,
		OfficerID:  responder.ID,
		Action:     action,
		Note:       note,
	}
	if err := e.log.Insert(ctx, rec); err != nil {
		log.WithError(err).Error("Failed to record response action")
		return nil, fmt.Errorf("workflow: record action: %w", err)
	}
	log.WithField("response_id", rec.ID).Info("Response action recorded")

	if action != models.ActionResolved {
		return rec, nil
	}

	if err := e.incidents.Resolve(ctx, incidentID, e.clock.Now()); err != nil {
		log.WithError(err).Error("Response recorded but incident resolve failed")
		return rec, &PartialResolveError{IncidentID: incidentID, Record: *rec, Err: err}
	}
	log.Info("Incident resolved by responder")
	return rec, nil
}

// History возвращает журнал инцидента по возрастанию created_at
func (e *Engine) History(ctx context.Context, incidentID uuid.UUID) ([]models.ResponseRecord, error) {
	records, err := e.log.ListByIncident(ctx, incidentID)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"component":   "workflow",
			"method":      "History",
			"incident_id": incidentID,
		}).WithError(err).Error("Failed to load response history")
		return nil, fmt.Errorf("workflow: load history: %w", err)
	}
	if records == nil {
		records = []models.ResponseRecord{}
	}
	return records, nil
}

// Resolve повторяет перевод инцидента в RESOLVED, например после PartialResolveError
func (e *Engine) Resolve(ctx context.Context, incidentID uuid.UUID, responder *models.Officer) error {
	if responder == nil || responder.ID == uuid.Nil || !responder.IsActive {
		return ErrUnauthorized
	}
	if err := e.incidents.Resolve(ctx, incidentID, e.clock.Now()); err != nil {
		return fmt.Errorf("workflow: resolve incident: %w", err)
	}
	e.logger.WithFields(logrus.Fields{
		"component":   "workflow",
		"method":      "Resolve",
		"incident_id": incidentID,
		"officer_id":  responder.ID,
	}).Info("Incident resolved manually")
	return nil
}
