package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/models"
)

// TriggerSOSRequest DTO для поднятия тревоги
// @Description DTO для поднятия тревоги охраняемым пользователем
type TriggerSOSRequest struct {
	UserID          string   `json:"user_id" validate:"required,max=128"`
	Latitude        *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude" validate:"omitempty,longitude"`
	Heading         *float64 `json:"heading" validate:"omitempty,gte=0,lt=360"`
	Speed           *float64 `json:"speed" validate:"omitempty,gte=0"`
	Battery         *float64 `json:"battery" validate:"omitempty,gte=-1,lte=1"`
	AddressSnapshot *string  `json:"address_snapshot" validate:"omitempty,max=512"`
	UserName        *string  `json:"user_name" validate:"omitempty,max=255"`
	UserEmail       *string  `json:"user_email" validate:"omitempty,email"`
}

// TelemetryRequest DTO для обновления телеметрии
// @Description DTO для обновления телеметрии активного инцидента
type TelemetryRequest struct {
	Latitude        *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude" validate:"omitempty,longitude"`
	Heading         *float64 `json:"heading" validate:"omitempty,gte=0,lt=360"`
	Speed           *float64 `json:"speed" validate:"omitempty,gte=0"`
	Battery         *float64 `json:"battery" validate:"omitempty,gte=-1,lte=1"`
	AddressSnapshot *string  `json:"address_snapshot" validate:"omitempty,max=512"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          string     `json:"user_id"`
	Status          string     `json:"status"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	Heading         *float64   `json:"heading"`
	Speed           *float64   `json:"speed"`
	BatteryPercent  *int       `json:"battery_percent"`
	AddressSnapshot *string    `json:"address_snapshot"`
	DisplayName     string     `json:"display_name"`
	Contact         string     `json:"contact"`
	AvatarURL       *string    `json:"avatar_url,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	LastUpdated     time.Time  `json:"last_updated"`
}

// DashboardResponse DTO проекции дашборда
// @Description Снимок инцидентов с маркером только что пришедшего
type DashboardResponse struct {
	Incidents       []*IncidentResponse `json:"incidents"`
	RecentlyArrived *uuid.UUID          `json:"recently_arrived,omitempty"`
	Error           string              `json:"error,omitempty"`
	Loading         bool                `json:"loading"`
	Loaded          bool                `json:"loaded"`
}

// RecordActionRequest DTO для записи действия реагирования
// @Description DTO для записи действия реагирования
type RecordActionRequest struct {
	Action string  `json:"action" validate:"required"`
	Note   *string `json:"note" validate:"omitempty,max=2000"`
}

// ResponseRecordResponse DTO записи журнала реагирования
// @Description DTO записи журнала реагирования
type ResponseRecordResponse struct {
	ID         uuid.UUID `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	OfficerID  uuid.UUID `json:"officer_id"`
	Action     string    `json:"action"`
	Note       *string   `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

// AvailableActionsResponse DTO со списком доступных шагов
// @Description Шаги, которые можно записать следующими
type AvailableActionsResponse struct {
	IncidentID uuid.UUID               `json:"incident_id"`
	Active     bool                    `json:"active"`
	Actions    []models.ResponseAction `json:"actions"`
}

// RouteScoreQuery параметры оценки безопасности точки маршрута
type RouteScoreQuery struct {
	Latitude  *float64 `form:"lat" validate:"required,latitude"`
	Longitude *float64 `form:"lon" validate:"required,longitude"`
}
