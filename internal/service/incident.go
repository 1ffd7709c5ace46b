package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/clock"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/shenikar/guardian_response/internal/repository"
	"github.com/sirupsen/logrus"
)

var ErrIncidentResolved = errors.New("service: incident already resolved")

// IncidentRepository определяет контракт для работы с бд инцидентов
//
//go:generate mockgen -source=incident.go -destination=mocks/mock_incident.go -package=mocks
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	FindActiveByUser(ctx context.Context, userID string) (*models.Incident, error)
	List(ctx context.Context) ([]*models.Incident, error)
	UpdateTelemetry(ctx context.Context, id uuid.UUID, patch *models.IncidentPatch, at time.Time) error
}

// IncidentService определяет контракт бизнес-логики на стороне охраняемого пользователя
type IncidentService interface {
	TriggerSOS(ctx context.Context, incident *models.Incident) (*models.Incident, bool, error)
	UpdateTelemetry(ctx context.Context, id uuid.UUID, patch *models.IncidentPatch) (*models.Incident, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
}

type incidentService struct {
	repo   IncidentRepository
	logger *logrus.Logger
	clock  clock.Clock
}

func NewIncidentService(repo IncidentRepository, logger *logrus.Logger, clk clock.Clock) IncidentService {
	if clk == nil {
		clk = clock.Real()
	}
	return &incidentService{
		repo:   repo,
		logger: logger,
		clock:  clk,
	}
}

// TriggerSOS создает ACTIVE инцидент. Если у пользователя уже есть активный, возвращает его
// и false во втором значении.
func (s *incidentService) TriggerSOS(ctx context.Context, incident *models.Incident) (*models.Incident, bool, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "TriggerSOS",
		"user_id": incident.UserID,
	})
	log.Info("SOS triggered")

	existing, err := s.repo.FindActiveByUser(ctx, incident.UserID)
	switch {
	case err == nil:
		log.WithField("incident_id", existing.ID).Info("User already has an active incident")
		return existing, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		log.WithError(err).Error("Failed to look up active incident")
		return nil, false, fmt.Errorf("service: could not check active incident: %w", err)
	}

	now := s.clock.Now()
	incident.Status = models.StatusActive
	incident.StartedAt = now
	incident.LastUpdated = now
	incident.ResolvedAt = nil

	if err := s.repo.Create(ctx, incident); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// параллельный SOS того же пользователя успел раньше
			existing, ferr := s.repo.FindActiveByUser(ctx, incident.UserID)
			if ferr == nil {
				return existing, false, nil
			}
		}
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, false, fmt.Errorf("service: could not create incident: %w", err)
	}

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	return incident, true, nil
}

// UpdateTelemetry обновляет координаты/курс/скорость/заряд. Закрытый инцидент заморожен.
func (s *incidentService) UpdateTelemetry(ctx context.Context, id uuid.UUID, patch *models.IncidentPatch) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateTelemetry",
		"incident_id": id,
	})

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get incident before telemetry update")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	if !current.IsActive() {
		log.Warn("Telemetry for resolved incident rejected")
		return nil, ErrIncidentResolved
	}

	telemetry := &models.IncidentPatch{
		Latitude:        patch.Latitude,
		Longitude:       patch.Longitude,
		Heading:         patch.Heading,
		Speed:           patch.Speed,
		Battery:         patch.Battery,
		AddressSnapshot: patch.AddressSnapshot,
	}
	if err := s.repo.UpdateTelemetry(ctx, id, telemetry, s.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// закрыт между чтением и записью
			return nil, ErrIncidentResolved
		}
		log.WithError(err).Error("Failed to update telemetry in repository")
		return nil, fmt.Errorf("service: could not update telemetry: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not reload incident: %w", err)
	}
	log.Debug("Telemetry updated")
	return updated, nil
}

// GetIncident получает инцидент по ID
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":     "incident",
			"method":      "GetIncident",
			"incident_id": id,
		}).WithError(err).Error("Failed to get incident in repository")
		return nil, fmt.Errorf("service: not get incident: %w", err)
	}
	return incident, nil
}

// ListIncidents возвращает все инциденты, новые первыми
func (s *incidentService) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	incidents, err := s.repo.List(ctx)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "incident",
			"method":  "ListIncidents",
		}).WithError(err).Error("Failed to list incidents in repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	return incidents, nil
}
