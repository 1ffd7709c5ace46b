package workflow

import (
	"github.com/shenikar/guardian_response/internal/models"
)

// AvailableActions возвращает действия, доступные после истории.
// Для неактивного инцидента всегда пусто, без истории доступны все четыре,
// иначе только действия строго после последнего записанного шага.
func AvailableActions(history []models.ResponseRecord, active bool) []models.ResponseAction {
	if !active {
		return []models.ResponseAction{}
	}

	last := -1
	if n := len(history); n > 0 {
		last = history[n-1].Action.Rank()
	}

	out := make([]models.ResponseAction, 0, len(models.ActionOrder))
	for _, a := range models.ActionOrder {
		if a.Rank() > last {
			out = append(out, a)
		}
	}
	return out
}

// Offered проверяет, предлагается ли действие при данной истории
func Offered(history []models.ResponseRecord, active bool, action models.ResponseAction) bool {
	for _, a := range AvailableActions(history, active) {
		if a == action {
			return true
		}
	}
	return false
}
