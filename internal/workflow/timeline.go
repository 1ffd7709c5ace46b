package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/models"
)

var (
	ErrActionInFlight    = errors.New("workflow: another action is being submitted")
	ErrActionUnavailable = errors.New("workflow: action is not available for this incident")
	ErrTimelineClosed    = errors.New("workflow: timeline closed")
)

// Timeline - открытая карточка инцидента у одного респондера: история, доступные действия
// и блокировка соседних действий, пока запись в пути. Между карточками ничего не делится.
type Timeline struct {
	engine     *Engine
	incidentID uuid.UUID
	responder  *models.Officer

	mu       sync.Mutex
	records  []models.ResponseRecord
	active   bool
	err      error
	inflight models.ResponseAction
	closed   bool
}

// OpenTimeline загружает историю инцидента. Ошибка загрузки доступна через Err.
func OpenTimeline(ctx context.Context, engine *Engine, incident models.Incident, responder *models.Officer) *Timeline {
	t := &Timeline{
		engine:     engine,
		incidentID: incident.ID,
		responder:  responder,
		active:     incident.IsActive(),
		records:    []models.ResponseRecord{},
	}
	_ = t.Reload(ctx)
	return t
}

// Reload перечитывает историю. При ошибке прежняя история остаётся.
func (t *Timeline) Reload(ctx context.Context) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrTimelineClosed
	}

	records, err := t.engine.History(ctx, t.incidentID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTimelineClosed
	}
	if err != nil {
		t.err = err
		return err
	}
	t.records = records
	t.err = nil
	return nil
}

func (t *Timeline) IncidentID() uuid.UUID {
	return t.incidentID
}

func (t *Timeline) Records() []models.ResponseRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.ResponseRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Available - действия для кнопок. Пока запись в пути, кнопки недоступны все.
func (t *Timeline) Available() []models.ResponseAction {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflight != "" {
		return []models.ResponseAction{}
	}
	return AvailableActions(t.records, t.active)
}

func (t *Timeline) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Timeline) InFlight() (models.ResponseAction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight, t.inflight != ""
}

// SetActive синхронизирует статус инцидента из снимка
func (t *Timeline) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = active
}

// Submit записывает действие из карточки. Параллельная отправка из той же карточки отклоняется.
func (t *Timeline) Submit(ctx context.Context, action models.ResponseAction, note *string) (*models.ResponseRecord, error) {
	t.mu.Lock()
	switch {
	case t.closed:
		t.mu.Unlock()
		return nil, ErrTimelineClosed
	case t.inflight != "":
		t.mu.Unlock()
		return nil, ErrActionInFlight
	case !Offered(t.records, t.active, action):
		t.mu.Unlock()
		return nil, ErrActionUnavailable
	}
	t.inflight = action
	t.mu.Unlock()

	rec, err := t.engine.RecordAction(ctx, t.incidentID, t.responder, action, note)

	var records []models.ResponseRecord
	var herr error
	if rec != nil {
		records, herr = t.engine.History(ctx, t.incidentID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight = ""
	if t.closed {
		return rec, err
	}

	switch {
	case err != nil:
		t.err = err
	case herr != nil:
		t.err = herr
	default:
		t.err = nil
	}
	if rec != nil {
		if herr == nil {
			t.records = records
		} else {
			t.records = append(t.records, *rec)
		}
	}
	if action == models.ActionResolved && err == nil {
		t.active = false
	}
	return rec, err
}

// Close отбрасывает карточку, результаты запросов после закрытия игнорируются
func (t *Timeline) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}
