package v1

import (
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/shenikar/guardian_response/internal/synchronizer"
)

// TriggerRequestToModel преобразует DTO тревоги в доменную модель
func TriggerRequestToModel(dto TriggerSOSRequest) *models.Incident {
	return &models.Incident{
		UserID:          dto.UserID,
		Latitude:        dto.Latitude,
		Longitude:       dto.Longitude,
		Heading:         dto.Heading,
		Speed:           dto.Speed,
		Battery:         dto.Battery,
		AddressSnapshot: dto.AddressSnapshot,
		UserName:        dto.UserName,
		UserEmail:       dto.UserEmail,
	}
}

func TelemetryRequestToPatch(dto TelemetryRequest) *models.IncidentPatch {
	return &models.IncidentPatch{
		Latitude:        dto.Latitude,
		Longitude:       dto.Longitude,
		Heading:         dto.Heading,
		Speed:           dto.Speed,
		Battery:         dto.Battery,
		AddressSnapshot: dto.AddressSnapshot,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	resp := &IncidentResponse{
		ID:              model.ID,
		UserID:          model.UserID,
		Status:          string(model.Status),
		Latitude:        model.Latitude,
		Longitude:       model.Longitude,
		Heading:         model.Heading,
		Speed:           model.Speed,
		BatteryPercent:  model.BatteryPercent(),
		AddressSnapshot: model.AddressSnapshot,
		DisplayName:     model.DisplayName(),
		Contact:         model.DisplayContact(),
		StartedAt:       model.StartedAt,
		ResolvedAt:      model.ResolvedAt,
		LastUpdated:     model.LastUpdated,
	}
	if model.Profile != nil {
		resp.AvatarURL = model.Profile.AvatarURL
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ViewToDashboardResponse(v synchronizer.View) *DashboardResponse {
	incidents := make([]*IncidentResponse, len(v.Incidents))
	for i := range v.Incidents {
		incidents[i] = ModelToIncidentResponse(&v.Incidents[i])
	}
	return &DashboardResponse{
		Incidents:       incidents,
		RecentlyArrived: v.RecentlyArrived,
		Error:           v.Error,
		Loading:         v.Loading,
		Loaded:          v.Loaded,
	}
}

func RecordToResponse(rec *models.ResponseRecord) *ResponseRecordResponse {
	return &ResponseRecordResponse{
		ID:         rec.ID,
		IncidentID: rec.IncidentID,
		OfficerID:  rec.OfficerID,
		Action:     string(rec.Action),
		Note:       rec.Note,
		CreatedAt:  rec.CreatedAt,
	}
}

func RecordsToResponses(records []models.ResponseRecord) []*ResponseRecordResponse {
	responses := make([]*ResponseRecordResponse, len(records))
	for i := range records {
		responses[i] = RecordToResponse(&records[i])
	}
	return responses
}
