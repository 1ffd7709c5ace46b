// Package synchronizer держит согласованный упорядоченный снимок инцидентов
// для одной сессии дашборда: полный refresh из хранилища плюс дельты из потока изменений.
package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/shenikar/guardian_response/internal/alarm"
	"github.com/shenikar/guardian_response/internal/clock"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMarkerWindow     = 5 * time.Second
	DefaultRedeliveryWindow = 10 * time.Minute
)

var (
	ErrClosed   = errors.New("synchronizer: closed")
	ErrFeedLost = errors.New("synchronizer: change feed closed")
)

// IncidentStore - внешнее хранилище инцидентов
//
//go:generate mockgen -source=synchronizer.go -destination=mocks/mock_store.go -package=mocks
type IncidentStore interface {
	// List возвращает все инциденты, started_at по убыванию
	List(ctx context.Context) ([]*models.Incident, error)
	// Resolve переводит инцидент в RESOLVED. Повторный вызов не ошибка и не меняет resolved_at.
	Resolve(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Option func(*Synchronizer)

func WithClock(c clock.Clock) Option {
	return func(s *Synchronizer) { s.clock = c }
}

// WithMarkerWindow задаёт, сколько держится отметка "только что пришёл"
func WithMarkerWindow(d time.Duration) Option {
	return func(s *Synchronizer) { s.markerWindow = d }
}

// WithRedeliveryWindow задаёт, сколько помнить id, по которым уже был сигнал
func WithRedeliveryWindow(d time.Duration) Option {
	return func(s *Synchronizer) { s.redeliveryWindow = d }
}

// Synchronizer владеет снимком инцидентов одной сессии.
// Мутации приходят по одному событию за раз из цикла Session,
// чтение проекций безопасно из любых горутин.
type Synchronizer struct {
	store            IncidentStore
	notifier         alarm.Notifier
	logger           *logrus.Logger
	clock            clock.Clock
	markerWindow     time.Duration
	redeliveryWindow time.Duration
	alarmed          *ttlcache.Cache[uuid.UUID, struct{}]

	mu          sync.RWMutex
	byID        map[uuid.UUID]*models.Incident
	order       []uuid.UUID
	err         error
	inflight    int
	initialized bool
	closed      bool
	generation  uint64
	applied     uint64
	marker      uuid.UUID
	markerTimer clock.Timer
	changed     chan struct{}
}

func New(store IncidentStore, notifier alarm.Notifier, logger *logrus.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:            store,
		notifier:         notifier,
		logger:           logger,
		clock:            clock.Real(),
		markerWindow:     DefaultMarkerWindow,
		redeliveryWindow: DefaultRedeliveryWindow,
		byID:             make(map[uuid.UUID]*models.Incident),
		changed:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.alarmed = ttlcache.New(
		ttlcache.WithTTL[uuid.UUID, struct{}](s.redeliveryWindow),
		ttlcache.WithDisableTouchOnHit[uuid.UUID, struct{}](),
	)
	return s
}

// Refresh заменяет снимок целиком. При ошибке сохраняет прежний снимок и выставляет Err.
// Результат (успех или ошибка), пришедший после более свежего refresh или после Close, отбрасывается.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	log := s.logger.WithFields(logrus.Fields{
		"component": "synchronizer",
		"method":    "Refresh",
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.generation++
	ticket := s.generation
	s.inflight++
	s.notifyLocked()
	s.mu.Unlock()

	incidents, err := s.store.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight--
	if s.closed {
		log.Debug("Discarding refresh result after session teardown")
		return ErrClosed
	}
	s.initialized = true
	defer s.notifyLocked()

	if ticket < s.applied {
		log.WithField("ticket", ticket).Debug("Discarding stale refresh result")
		return nil
	}
	if err != nil {
		s.err = fmt.Errorf("synchronizer: refresh incidents: %w", err)
		log.WithError(err).Error("Failed to refresh incidents, keeping previous snapshot")
		return s.err
	}

	s.applied = ticket
	s.err = nil
	s.byID = make(map[uuid.UUID]*models.Incident, len(incidents))
	s.order = make([]uuid.UUID, 0, len(incidents))
	for _, inc := range incidents {
		if inc == nil {
			continue
		}
		if _, dup := s.byID[inc.ID]; dup {
			continue
		}
		s.byID[inc.ID] = inc.Clone()
		s.order = append(s.order, inc.ID)
	}
	sort.Slice(s.order, func(i, j int) bool {
		return displayBefore(s.byID[s.order[i]], s.byID[s.order[j]])
	})

	log.WithField("count", len(s.order)).Info("Incidents refreshed")
	return nil
}

// Apply раскладывает событие потока по типу
func (s *Synchronizer) Apply(ctx context.Context, ev models.ChangeEvent) {
	switch ev.Kind {
	case models.ChangeInsert:
		_ = s.OnInsert(ctx, ev)
	case models.ChangeUpdate:
		s.OnUpdate(ev)
	case models.ChangeDelete:
		s.OnDelete(ev)
	default:
		s.logger.WithFields(logrus.Fields{
			"component": "synchronizer",
			"kind":      ev.Kind,
		}).Warn("Ignoring change event of unknown kind")
	}
}

// OnInsert обрабатывает новый инцидент. До завершения первой синхронизации сигнал не подаётся.
// Сигнал идёт первым, затем обязательный refresh, чтобы подтянуть джойны профиля.
func (s *Synchronizer) OnInsert(ctx context.Context, ev models.ChangeEvent) error {
	log := s.logger.WithFields(logrus.Fields{
		"component":   "synchronizer",
		"method":      "OnInsert",
		"incident_id": ev.ID,
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.alarmed.DeleteExpired()
	fire := false
	if s.initialized {
		if s.alarmed.Get(ev.ID) == nil {
			fire = true
			s.alarmed.Set(ev.ID, struct{}{}, ttlcache.DefaultTTL)
			s.setMarkerLocked(ev.ID)
		} else {
			log.Debug("Insert redelivered, alarm already raised")
		}
	}

	if row := ev.Row; row != nil && row.ID == ev.ID && !row.StartedAt.IsZero() {
		if _, ok := s.byID[ev.ID]; !ok {
			s.insertLocked(row.Clone())
		}
	}
	s.notifyLocked()
	s.mu.Unlock()

	if fire {
		a := alarm.Alarm{IncidentID: ev.ID, TriggeredAt: s.clock.Now()}
		if ev.Row != nil {
			a.UserID = ev.Row.UserID
			a.Latitude = ev.Row.Latitude
			a.Longitude = ev.Row.Longitude
		}
		s.notifier.Trigger(ctx, a)
		log.Info("New incident alarm raised")
	}

	return s.Refresh(ctx)
}

// OnUpdate вливает изменённые поля. Неизвестный id отбрасывается без refresh.
func (s *Synchronizer) OnUpdate(ev models.ChangeEvent) {
	patch := ev.Patch
	if patch == nil && ev.Row != nil {
		patch = models.PatchFromIncident(ev.Row)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	current, ok := s.byID[ev.ID]
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"component":   "synchronizer",
			"method":      "OnUpdate",
			"incident_id": ev.ID,
		}).Debug("Dropping update for unknown incident")
		return
	}

	next := current.Clone()
	patch.Apply(next)
	s.byID[ev.ID] = next
	s.notifyLocked()
}

// OnDelete убирает инцидент из снимка сразу
func (s *Synchronizer) OnDelete(ev models.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if _, ok := s.byID[ev.ID]; ok {
		delete(s.byID, ev.ID)
		for i, id := range s.order {
			if id == ev.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	if s.marker == ev.ID {
		s.clearMarkerLocked()
	}
	s.notifyLocked()
}

// Resolve переводит инцидент в RESOLVED в хранилище. Снимок сходится через UPDATE из потока.
func (s *Synchronizer) Resolve(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"component":   "synchronizer",
		"method":      "Resolve",
		"incident_id": id,
	})

	if err := s.store.Resolve(ctx, id, s.clock.Now()); err != nil {
		log.WithError(err).Error("Failed to resolve incident")
		return fmt.Errorf("synchronizer: resolve incident: %w", err)
	}
	log.Info("Incident resolved")
	return nil
}

// Incidents возвращает копию снимка, started_at по убыванию
func (s *Synchronizer) Incidents() []models.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.incidentsLocked()
}

func (s *Synchronizer) Get(id uuid.UUID) (models.Incident, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.byID[id]
	if !ok {
		return models.Incident{}, false
	}
	return *inc.Clone(), true
}

// RecentlyArrived возвращает id с отметкой "только что пришёл", если она ещё не истекла
func (s *Synchronizer) RecentlyArrived() (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marker, s.marker != uuid.Nil
}

func (s *Synchronizer) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Synchronizer) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// View - проекция снимка для UI
type View struct {
	Incidents       []models.Incident `json:"incidents"`
	RecentlyArrived *uuid.UUID        `json:"recently_arrived,omitempty"`
	Error           string            `json:"error,omitempty"`
	Loading         bool              `json:"loading"`
	Loaded          bool              `json:"loaded"`
}

func (s *Synchronizer) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		Incidents: s.incidentsLocked(),
		Loading:   s.inflight > 0,
		Loaded:    s.initialized,
	}
	if s.marker != uuid.Nil {
		m := s.marker
		v.RecentlyArrived = &m
	}
	if s.err != nil {
		v.Error = s.err.Error()
	}
	return v
}

// Changes сигналит о любом изменении проекции. Сигналы схлопываются.
func (s *Synchronizer) Changes() <-chan struct{} {
	return s.changed
}

// Close останавливает обработку: последующие события и результаты запросов игнорируются
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.clearMarkerLocked()
	s.alarmed.DeleteAll()
}

func (s *Synchronizer) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.err = err
	s.notifyLocked()
}

func (s *Synchronizer) incidentsLocked() []models.Incident {
	out := make([]models.Incident, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id].Clone())
	}
	return out
}

func (s *Synchronizer) insertLocked(inc *models.Incident) {
	s.byID[inc.ID] = inc
	pos := sort.Search(len(s.order), func(i int) bool {
		return !displayBefore(s.byID[s.order[i]], inc)
	})
	s.order = append(s.order, uuid.Nil)
	copy(s.order[pos+1:], s.order[pos:])
	s.order[pos] = inc.ID
}

func (s *Synchronizer) setMarkerLocked(id uuid.UUID) {
	if s.markerWindow <= 0 {
		return
	}
	if s.markerTimer != nil {
		s.markerTimer.Stop()
	}
	s.marker = id
	s.markerTimer = s.clock.AfterFunc(s.markerWindow, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.marker == id {
			s.marker = uuid.Nil
			s.markerTimer = nil
			s.notifyLocked()
		}
	})
}

func (s *Synchronizer) clearMarkerLocked() {
	if s.markerTimer != nil {
		s.markerTimer.Stop()
		s.markerTimer = nil
	}
	s.marker = uuid.Nil
}

func (s *Synchronizer) notifyLocked() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// displayBefore - порядок отображения: started_at по убыванию, при равенстве по id
func displayBefore(a, b *models.Incident) bool {
	if !a.StartedAt.Equal(b.StartedAt) {
		return a.StartedAt.After(b.StartedAt)
	}
	return a.ID.String() < b.ID.String()
}
