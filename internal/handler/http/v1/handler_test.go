package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/handler/http/v1/mocks"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/shenikar/guardian_response/internal/repository"
	"github.com/shenikar/guardian_response/internal/safety"
	"github.com/shenikar/guardian_response/internal/service"
	servicemocks "github.com/shenikar/guardian_response/internal/service/mocks"
	"github.com/shenikar/guardian_response/internal/synchronizer"
	"github.com/shenikar/guardian_response/internal/workflow"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	testSecret = []byte("test-secret")
	apiKey     = map[string]string{"X-API-Key": "test-api-key"}
	startedAt  = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

type testDeps struct {
	incidents *servicemocks.MockIncidentService
	workflow  *mocks.MockResponseWorkflow
	dashboard *mocks.MockDashboard
	scores    *mocks.MockScoreProvider
	officers  *mocks.MockOfficerDirectory
	officer   *models.Officer
}

// newTestHandler создает роутер с мокированными зависимостями
func newTestHandler(t *testing.T, sessions SessionRunner) (*testDeps, *gin.Engine) {
	ctrl := gomock.NewController(t)
	deps := &testDeps{
		incidents: servicemocks.NewMockIncidentService(ctrl),
		workflow:  mocks.NewMockResponseWorkflow(ctrl),
		dashboard: mocks.NewMockDashboard(ctrl),
		scores:    mocks.NewMockScoreProvider(ctrl),
		officers:  mocks.NewMockOfficerDirectory(ctrl),
		officer:   &models.Officer{ID: uuid.New(), BadgeNumber: "B-17", FullName: "Maria", Rank: "Sgt", IsActive: true},
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	handler := NewHandler(Deps{
		Incidents: deps.incidents,
		Workflow:  deps.workflow,
		Dashboard: deps.dashboard,
		Sessions:  sessions,
		Scores:    deps.scores,
		Officers:  deps.officers,
	}, logger, []string{"test-api-key"}, testSecret)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return deps, router
}

// bearer выдаёт токен сотрудника и ожидает его поиск в справочнике
func (d *testDeps) bearer(t *testing.T) map[string]string {
	t.Helper()
	token, err := IssueResponderToken(testSecret, d.officer.ID, time.Hour)
	require.NoError(t, err)
	d.officers.EXPECT().GetByID(gomock.Any(), d.officer.ID).Return(d.officer, nil).Times(1)
	return map[string]string{"Authorization": "Bearer " + token}
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func ptr[T any](v T) *T { return &v }

func TestTriggerSOS_Created(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	reqBody := TriggerSOSRequest{
		UserID:    "user-1",
		Latitude:  ptr(55.75),
		Longitude: ptr(37.61),
		Battery:   ptr(0.87),
		UserName:  ptr("Anna"),
	}
	incidentID := uuid.New()

	deps.incidents.EXPECT().
		TriggerSOS(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) (*models.Incident, bool, error) {
			assert.Equal(t, "user-1", inc.UserID)
			inc.ID = incidentID
			inc.Status = models.StatusActive
			inc.StartedAt = startedAt
			return inc, true, nil
		}).Times(1)

	w := makeRequest(router, "POST", "/api/v1/sos", jsonBody(t, reqBody), apiKey)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, incidentID, resp.ID)
	assert.Equal(t, "ACTIVE", resp.Status)
	assert.Equal(t, "Anna", resp.DisplayName)
	assert.Equal(t, "N/A", resp.Contact)
	require.NotNil(t, resp.BatteryPercent)
	assert.Equal(t, 87, *resp.BatteryPercent)
}

func TestTriggerSOS_ExistingActiveReturns200(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	existing := &models.Incident{ID: uuid.New(), UserID: "user-1", Status: models.StatusActive}

	deps.incidents.EXPECT().TriggerSOS(gomock.Any(), gomock.Any()).Return(existing, false, nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/sos", jsonBody(t, TriggerSOSRequest{UserID: "user-1"}), apiKey)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), existing.ID.String())
}

func TestTriggerSOS_APIKeyRequired(t *testing.T) {
	deps, router := newTestHandler(t, nil)

	deps.incidents.EXPECT().TriggerSOS(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/sos", jsonBody(t, TriggerSOSRequest{UserID: "user-1"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = makeRequest(router, "POST", "/api/v1/sos", jsonBody(t, TriggerSOSRequest{UserID: "user-1"}), map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}

func TestTriggerSOS_ValidationError(t *testing.T) {
	deps, router := newTestHandler(t, nil)

	deps.incidents.EXPECT().TriggerSOS(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/sos", jsonBody(t, TriggerSOSRequest{UserID: "user-1", Latitude: ptr(123.0)}), apiKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Latitude' failed on the 'latitude' tag")
}

func TestTriggerSOS_InvalidJSON(t *testing.T) {
	deps, router := newTestHandler(t, nil)

	deps.incidents.EXPECT().TriggerSOS(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/sos", bytes.NewBufferString(`{"user_id": "u"`), apiKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestUpdateTelemetry_ResolvedIncident(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()

	deps.incidents.EXPECT().
		UpdateTelemetry(gomock.Any(), id, gomock.Any()).
		Return(nil, service.ErrIncidentResolved).
		Times(1)

	w := makeRequest(router, "PATCH", fmt.Sprintf("/api/v1/sos/%s/telemetry", id), jsonBody(t, TelemetryRequest{Speed: ptr(1.5)}), apiKey)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateTelemetry_Success(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()
	updated := &models.Incident{ID: id, Status: models.StatusActive, Heading: ptr(90.0)}

	deps.incidents.EXPECT().
		UpdateTelemetry(gomock.Any(), id, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, p *models.IncidentPatch) (*models.Incident, error) {
			require.NotNil(t, p.Heading)
			assert.Equal(t, 90.0, *p.Heading)
			assert.Nil(t, p.Latitude)
			return updated, nil
		}).Times(1)

	w := makeRequest(router, "PATCH", fmt.Sprintf("/api/v1/sos/%s/telemetry", id), jsonBody(t, TelemetryRequest{Heading: ptr(90.0)}), apiKey)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetIncident_InvalidID(t *testing.T) {
	deps, router := newTestHandler(t, nil)

	deps.incidents.EXPECT().GetIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/sos/invalid-uuid", nil, apiKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()

	deps.incidents.EXPECT().
		GetIncident(gomock.Any(), id).
		Return(nil, fmt.Errorf("service: not get incident: %w", repository.ErrNotFound)).
		Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/sos/%s", id), nil, apiKey)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident not found")
}

func TestDashboardIncidents_Snapshot(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	newest := models.Incident{
		ID:        uuid.New(),
		Status:    models.StatusActive,
		StartedAt: startedAt,
		Profile:   &models.Profile{FullName: ptr("Anna K."), PhoneNumber: ptr("+7 900")},
	}
	older := models.Incident{ID: uuid.New(), Status: models.StatusResolved, StartedAt: startedAt.Add(-time.Hour)}

	deps.dashboard.EXPECT().Snapshot().Return(synchronizer.View{
		Incidents:       []models.Incident{newest, older},
		RecentlyArrived: &newest.ID,
		Loaded:          true,
	}).Times(1)

	w := makeRequest(router, "GET", "/api/v1/dashboard/incidents", nil, deps.bearer(t))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Incidents, 2)
	assert.Equal(t, newest.ID, resp.Incidents[0].ID)
	assert.Equal(t, "Anna K.", resp.Incidents[0].DisplayName)
	assert.Equal(t, "+7 900", resp.Incidents[0].Contact)
	assert.Equal(t, "Unknown", resp.Incidents[1].DisplayName)
	require.NotNil(t, resp.RecentlyArrived)
	assert.Equal(t, newest.ID, *resp.RecentlyArrived)
	assert.True(t, resp.Loaded)
}

func TestResponderAuth(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		deps, router := newTestHandler(t, nil)
		deps.dashboard.EXPECT().Snapshot().Times(0)

		w := makeRequest(router, "GET", "/api/v1/dashboard/incidents", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		deps, router := newTestHandler(t, nil)
		token, err := IssueResponderToken(testSecret, deps.officer.ID, -time.Minute)
		require.NoError(t, err)
		deps.officers.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)

		w := makeRequest(router, "GET", "/api/v1/dashboard/incidents", nil, map[string]string{"Authorization": "Bearer " + token})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		deps, router := newTestHandler(t, nil)
		token, err := IssueResponderToken([]byte("other-secret"), deps.officer.ID, time.Hour)
		require.NoError(t, err)

		w := makeRequest(router, "GET", "/api/v1/dashboard/incidents", nil, map[string]string{"Authorization": "Bearer " + token})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("not an officer", func(t *testing.T) {
		deps, router := newTestHandler(t, nil)
		token, err := IssueResponderToken(testSecret, deps.officer.ID, time.Hour)
		require.NoError(t, err)
		deps.officers.EXPECT().GetByID(gomock.Any(), deps.officer.ID).Return(nil, repository.ErrNotFound).Times(1)

		w := makeRequest(router, "GET", "/api/v1/dashboard/incidents", nil, map[string]string{"Authorization": "Bearer " + token})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("inactive officer", func(t *testing.T) {
		deps, router := newTestHandler(t, nil)
		deps.officer.IsActive = false

		w := makeRequest(router, "GET", "/api/v1/dashboard/incidents", nil, deps.bearer(t))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestListIncidents_Success(t *testing.T) {
	// Подготовка
	deps, router := newTestHandler(t, nil)
	newer := &models.Incident{ID: uuid.New(), UserID: "u2", Status: models.StatusActive, StartedAt: startedAt}
	older := &models.Incident{ID: uuid.New(), UserID: "u1", Status: models.StatusResolved, StartedAt: startedAt.Add(-time.Hour)}

	// Ожидания
	deps.incidents.EXPECT().ListIncidents(gomock.Any()).Return([]*models.Incident{newer, older}, nil).Times(1)

	// Действие
	w := makeRequest(router, "GET", "/api/v1/incidents", nil, deps.bearer(t))

	// Проверки
	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, newer.ID, resp[0].ID)
	assert.Equal(t, older.ID, resp[1].ID)
}

func TestListIncidents_StoreError(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	deps.incidents.EXPECT().ListIncidents(gomock.Any()).Return(nil, errors.New("db down")).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil, deps.bearer(t))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListResponses_Success(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()
	records := []models.ResponseRecord{
		{ID: uuid.New(), IncidentID: id, OfficerID: deps.officer.ID, Action: models.ActionDispatched, CreatedAt: startedAt},
		{ID: uuid.New(), IncidentID: id, OfficerID: deps.officer.ID, Action: models.ActionEnRoute, Note: ptr("5 min"), CreatedAt: startedAt.Add(time.Minute)},
	}

	deps.workflow.EXPECT().History(gomock.Any(), id).Return(records, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s/responses", id), nil, deps.bearer(t))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []ResponseRecordResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "DISPATCHED", resp[0].Action)
	assert.Equal(t, "EN_ROUTE", resp[1].Action)
	assert.Equal(t, "5 min", *resp[1].Note)
}

func TestAvailableActions(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()

	deps.incidents.EXPECT().GetIncident(gomock.Any(), id).Return(&models.Incident{ID: id, Status: models.StatusActive}, nil).Times(1)
	deps.workflow.EXPECT().
		History(gomock.Any(), id).
		Return([]models.ResponseRecord{{Action: models.ActionDispatched}}, nil).
		Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s/actions", id), nil, deps.bearer(t))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AvailableActionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Active)
	assert.Equal(t, []models.ResponseAction{models.ActionEnRoute, models.ActionOnScene, models.ActionResolved}, resp.Actions)
}

func TestAvailableActions_ResolvedIncident(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()

	deps.incidents.EXPECT().GetIncident(gomock.Any(), id).Return(&models.Incident{ID: id, Status: models.StatusResolved}, nil).Times(1)
	deps.workflow.EXPECT().History(gomock.Any(), id).Return([]models.ResponseRecord{}, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s/actions", id), nil, deps.bearer(t))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AvailableActionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Active)
	assert.Empty(t, resp.Actions)
}

func TestRecordAction_Success(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()
	headers := deps.bearer(t)

	deps.workflow.EXPECT().
		RecordAction(gomock.Any(), id, deps.officer, models.ActionOnScene, gomock.Any()).
		DoAndReturn(func(_ context.Context, incidentID uuid.UUID, responder *models.Officer, action models.ResponseAction, note *string) (*models.ResponseRecord, error) {
			require.NotNil(t, note)
			assert.Equal(t, "arrived", *note)
			return &models.ResponseRecord{ID: uuid.New(), IncidentID: incidentID, OfficerID: responder.ID, Action: action, Note: note}, nil
		}).Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/responses", id),
		jsonBody(t, RecordActionRequest{Action: "ON_SCENE", Note: ptr("arrived")}), headers)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp ResponseRecordResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, deps.officer.ID, resp.OfficerID)
	assert.Equal(t, "ON_SCENE", resp.Action)
}

func TestRecordAction_InvalidAction(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()
	headers := deps.bearer(t)

	deps.workflow.EXPECT().
		RecordAction(gomock.Any(), id, deps.officer, models.ResponseAction("CANCELLED"), gomock.Any()).
		Return(nil, fmt.Errorf("%w: %q", workflow.ErrInvalidAction, "CANCELLED")).
		Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/responses", id),
		jsonBody(t, RecordActionRequest{Action: "CANCELLED"}), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordAction_PartialResolve(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()
	headers := deps.bearer(t)
	rec := models.ResponseRecord{ID: uuid.New(), IncidentID: id, OfficerID: deps.officer.ID, Action: models.ActionResolved}

	deps.workflow.EXPECT().
		RecordAction(gomock.Any(), id, deps.officer, models.ActionResolved, gomock.Any()).
		Return(&rec, &workflow.PartialResolveError{IncidentID: id, Record: rec, Err: errors.New("connection reset")}).
		Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/responses", id),
		jsonBody(t, RecordActionRequest{Action: "RESOLVED"}), headers)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp struct {
		Error          string                 `json:"error"`
		ActionRecorded bool                   `json:"action_recorded"`
		Record         ResponseRecordResponse `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.ActionRecorded)
	assert.Equal(t, rec.ID, resp.Record.ID)
}

func TestRecordAction_Unauthorized(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()
	headers := deps.bearer(t)

	deps.workflow.EXPECT().
		RecordAction(gomock.Any(), id, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, workflow.ErrUnauthorized).
		Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/responses", id),
		jsonBody(t, RecordActionRequest{Action: "DISPATCHED"}), headers)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestResolveIncident(t *testing.T) {
	deps, router := newTestHandler(t, nil)
	id := uuid.New()
	missing := uuid.New()

	deps.workflow.EXPECT().Resolve(gomock.Any(), id, deps.officer).Return(nil).Times(1)
	deps.workflow.EXPECT().
		Resolve(gomock.Any(), missing, deps.officer).
		Return(fmt.Errorf("workflow: resolve incident: %w", repository.ErrNotFound)).
		Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/resolve", id), nil, deps.bearer(t))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/resolve", missing), nil, deps.bearer(t))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouteScore(t *testing.T) {
	deps, router := newTestHandler(t, nil)

	deps.scores.EXPECT().
		Score(gomock.Any(), 55.75, 37.61).
		Return(safety.Score{Latitude: 55.75, Longitude: 37.61, Value: 74, Level: safety.LevelFor(74)}, nil).
		Times(1)
	deps.scores.EXPECT().Score(gomock.Any(), 0.0, 0.0).Return(safety.Score{}, safety.ErrUnavailable).Times(1)

	w := makeRequest(router, "GET", "/api/v1/routes/score?lat=55.75&lon=37.61", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var score safety.Score
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &score))
	assert.Equal(t, 74, score.Value)
	assert.Equal(t, safety.LevelFor(74), score.Level)

	w = makeRequest(router, "GET", "/api/v1/routes/score?lat=0&lon=0", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = makeRequest(router, "GET", "/api/v1/routes/score?lat=95&lon=10", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(router, "GET", "/api/v1/routes/score?lon=10", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteScore_Disabled(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(Deps{}, logger, nil, testSecret).RegisterRoutes(router.Group("/api/v1"))

	w := makeRequest(router, "GET", "/api/v1/routes/score?lat=1&lon=1", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthCheck(t *testing.T) {
	deps, router := newTestHandler(t, nil)

	deps.dashboard.EXPECT().Snapshot().Return(synchronizer.View{Loaded: true, Error: "synchronizer: change feed closed"}).Times(1)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"dashboard_loaded":true`)
}
