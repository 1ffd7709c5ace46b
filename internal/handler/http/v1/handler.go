package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/alarm"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/shenikar/guardian_response/internal/repository"
	"github.com/shenikar/guardian_response/internal/safety"
	"github.com/shenikar/guardian_response/internal/service"
	"github.com/shenikar/guardian_response/internal/synchronizer"
	"github.com/shenikar/guardian_response/internal/workflow"
	"github.com/sirupsen/logrus"
)

// OfficerDirectory находит сотрудника по идентичности из токена
//
//go:generate mockgen -source=handler.go -destination=mocks/mock_handler.go -package=mocks
type OfficerDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Officer, error)
}

// ResponseWorkflow - журнал реагирования и закрытие инцидента
type ResponseWorkflow interface {
	RecordAction(ctx context.Context, incidentID uuid.UUID, responder *models.Officer, action models.ResponseAction, note *string) (*models.ResponseRecord, error)
	History(ctx context.Context, incidentID uuid.UUID) ([]models.ResponseRecord, error)
	Resolve(ctx context.Context, incidentID uuid.UUID, responder *models.Officer) error
}

// Dashboard - долгоживущая проекция инцидентов сервера
type Dashboard interface {
	Snapshot() synchronizer.View
}

// SessionRunner открывает отдельную сессию синхронизации на время fn
type SessionRunner interface {
	Run(ctx context.Context, notifier alarm.Notifier, fn func(*synchronizer.Session) error) error
}

// ScoreProvider оценивает безопасность точки маршрута
type ScoreProvider interface {
	Score(ctx context.Context, lat, lon float64) (safety.Score, error)
}

// Deps - зависимости хэндлера. Scores и Sessions могут быть nil.
type Deps struct {
	Incidents service.IncidentService
	Workflow  ResponseWorkflow
	Dashboard Dashboard
	Sessions  SessionRunner
	Scores    ScoreProvider
	Officers  OfficerDirectory
}

type Handler struct {
	incidentService service.IncidentService
	workflow        ResponseWorkflow
	dashboard       Dashboard
	sessions        SessionRunner
	scores          ScoreProvider
	officers        OfficerDirectory
	logger          *logrus.Logger
	validate        *validator.Validate
	apiKeys         []string
	jwtSecret       []byte
}

func NewHandler(deps Deps, logger *logrus.Logger, apiKeys []string, jwtSecret []byte) *Handler {
	return &Handler{
		incidentService: deps.Incidents,
		workflow:        deps.Workflow,
		dashboard:       deps.Dashboard,
		sessions:        deps.Sessions,
		scores:          deps.Scores,
		officers:        deps.Officers,
		logger:          logger,
		validate:        validator.New(),
		apiKeys:         apiKeys,
		jwtSecret:       jwtSecret,
	}
}

// @Summary Trigger SOS
// @Description Raise an SOS for the user. If the user already has an active incident it is returned with 200. Requires API key.
// @Tags Guardian
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sos body TriggerSOSRequest true "SOS request"
// @Success 201 {object} IncidentResponse
// @Success 200 {object} IncidentResponse "Active incident already exists"
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sos [post]
func (h *Handler) triggerSOS(c *gin.Context) {
	var input TriggerSOSRequest
	log := h.logger.WithField("method", "triggerSOS")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, created, err := h.incidentService.TriggerSOS(c.Request.Context(), TriggerRequestToModel(input))
	if err != nil {
		log.WithError(err).Error("Failed to trigger SOS in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, ModelToIncidentResponse(incident))
}

// @Summary Update telemetry
// @Description Update position, heading, speed or battery of an active incident. Requires API key.
// @Tags Guardian
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param telemetry body TelemetryRequest true "Telemetry"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or request body"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Incident already resolved"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sos/{id}/telemetry [patch]
func (h *Handler) updateTelemetry(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateTelemetry").WithField("incident_id", id)

	var input TelemetryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.UpdateTelemetry(c.Request.Context(), id, TelemetryRequestToPatch(input))
	if err != nil {
		h.writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID. Requires API key.
// @Tags Guardian
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 404 {object} map[string]string "Incident not found"
// @Router /sos/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("incident_id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Dashboard snapshot
// @Description Current incident list of the server dashboard, newest first, with the recently arrived marker. Requires responder JWT.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not an officer"
// @Router /dashboard/incidents [get]
func (h *Handler) dashboardIncidents(c *gin.Context) {
	c.JSON(http.StatusOK, ViewToDashboardResponse(h.dashboard.Snapshot()))
}

// @Summary List incidents
// @Description All incidents read directly from the store, newest first. Requires responder JWT.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	incidents, err := h.incidentService.ListIncidents(c.Request.Context())
	if err != nil {
		h.writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Response history
// @Description Response actions recorded for the incident in creation order. Requires responder JWT.
// @Tags Responses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {array} ResponseRecordResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/responses [get]
func (h *Handler) listResponses(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "listResponses").WithField("incident_id", id)

	records, err := h.workflow.History(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, RecordsToResponses(records))
}

// @Summary Available actions
// @Description Actions that may be recorded next. Empty for a resolved incident. Requires responder JWT.
// @Tags Responses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} AvailableActionsResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 404 {object} map[string]string "Incident not found"
// @Router /incidents/{id}/actions [get]
func (h *Handler) availableActions(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "availableActions").WithField("incident_id", id)
	ctx := c.Request.Context()

	incident, err := h.incidentService.GetIncident(ctx, id)
	if err != nil {
		h.writeError(c, log, err)
		return
	}
	records, err := h.workflow.History(ctx, id)
	if err != nil {
		h.writeError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, AvailableActionsResponse{
		IncidentID: id,
		Active:     incident.IsActive(),
		Actions:    workflow.AvailableActions(records, incident.IsActive()),
	})
}

// @Summary Record response action
// @Description Record DISPATCHED, EN_ROUTE, ON_SCENE or RESOLVED. RESOLVED also closes the incident. Requires responder JWT.
// @Tags Responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param action body RecordActionRequest true "Action"
// @Success 201 {object} ResponseRecordResponse
// @Failure 400 {object} map[string]string "Invalid action"
// @Failure 403 {object} map[string]string "Not an officer"
// @Failure 502 {object} map[string]any "Action recorded but incident not resolved"
// @Router /incidents/{id}/responses [post]
func (h *Handler) recordAction(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "recordAction").WithField("incident_id", id)

	var input RecordActionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.workflow.RecordAction(c.Request.Context(), id, responderFrom(c), models.ResponseAction(input.Action), input.Note)
	if err != nil {
		var partial *workflow.PartialResolveError
		if errors.As(err, &partial) {
			log.WithError(err).Error("Action recorded but incident resolve failed")
			c.JSON(http.StatusBadGateway, gin.H{
				"error":           "action recorded but incident was not resolved, retry resolve",
				"action_recorded": true,
				"record":          RecordToResponse(&partial.Record),
			})
			return
		}
		h.writeError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, RecordToResponse(rec))
}

// @Summary Resolve incident
// @Description Mark the incident resolved without recording an action, e.g. after a partial failure. Requires responder JWT.
// @Tags Responses
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Incident not found"
// @Router /incidents/{id}/resolve [post]
func (h *Handler) resolveIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "resolveIncident").WithField("incident_id", id)

	if err := h.workflow.Resolve(c.Request.Context(), id, responderFrom(c)); err != nil {
		h.writeError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Route safety score
// @Description Weighted safety score 0..100 for a route point. Falls back to a neutral signal when one source fails.
// @Tags Routes
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Success 200 {object} safety.Score
// @Failure 400 {object} map[string]string "Invalid coordinates"
// @Failure 502 {object} map[string]string "Scoring sources unavailable"
// @Failure 503 {object} map[string]string "Scoring disabled"
// @Router /routes/score [get]
func (h *Handler) routeScore(c *gin.Context) {
	log := h.logger.WithField("method", "routeScore")
	if h.scores == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "route scoring is not configured"})
		return
	}

	var query RouteScoreQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	if err := h.validate.Struct(query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, err := h.scores.Score(c.Request.Context(), *query.Latitude, *query.Longitude)
	if err != nil {
		if errors.Is(err, safety.ErrUnavailable) {
			log.WithError(err).Warn("Route scoring sources unavailable")
			c.JSON(http.StatusBadGateway, gin.H{"error": "scoring sources unavailable"})
			return
		}
		h.writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// @Summary Get application health status
// @Description Get health status of the application and of the server dashboard feed
// @Tags System
// @Produce json
// @Success 200 {object} map[string]any "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.dashboard != nil {
		view := h.dashboard.Snapshot()
		resp["dashboard_loaded"] = view.Loaded
		if view.Error != "" {
			resp["status"] = "degraded"
			resp["dashboard_error"] = view.Error
		}
	}
	c.JSON(http.StatusOK, resp)
}

func parseIncidentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError переводит доменные ошибки в HTTP-статусы
func (h *Handler) writeError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, workflow.ErrUnauthorized):
		log.WithError(err).Warn("Responder not authorized")
		c.JSON(http.StatusForbidden, gin.H{"error": "responder is not authorized"})
	case errors.Is(err, workflow.ErrInvalidAction):
		log.WithError(err).Warn("Invalid response action")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		log.WithError(err).Warn("Incident not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
	case errors.Is(err, service.ErrIncidentResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "incident already resolved"})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
