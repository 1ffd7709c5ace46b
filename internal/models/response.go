package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ResponseAction - шаг реагирования. Порядок шагов фиксирован.
type ResponseAction string

const (
	ActionDispatched ResponseAction = "DISPATCHED"
	ActionEnRoute    ResponseAction = "EN_ROUTE"
	ActionOnScene    ResponseAction = "ON_SCENE"
	ActionResolved   ResponseAction = "RESOLVED"
)

// ActionOrder - полный порядок шагов реагирования
var ActionOrder = []ResponseAction{ActionDispatched, ActionEnRoute, ActionOnScene, ActionResolved}

// Rank возвращает позицию шага в ActionOrder или -1 для неизвестного значения
func (a ResponseAction) Rank() int {
	for i, v := range ActionOrder {
		if v == a {
			return i
		}
	}
	return -1
}

func (a ResponseAction) Valid() bool {
	return a.Rank() >= 0
}

func ParseResponseAction(s string) (ResponseAction, error) {
	a := ResponseAction(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown response action %q", s)
	}
	return a, nil
}

// ResponseRecord - одна запись журнала реагирования
type ResponseRecord struct {
	ID         uuid.UUID      `json:"id"`
	IncidentID uuid.UUID      `json:"alert_id"`
	OfficerID  uuid.UUID      `json:"officer_id"`
	Action     ResponseAction `json:"action"`
	Note       *string        `json:"note"`
	CreatedAt  time.Time      `json:"created_at"`
}
