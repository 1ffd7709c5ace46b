package synchronizer

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/guardian_response/internal/alarm"
	"github.com/shenikar/guardian_response/internal/clock"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/shenikar/guardian_response/internal/synchronizer/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestSynchronizer - синхронизатор на моках и фейковых часах
func newTestSynchronizer(t *testing.T) (*Synchronizer, *mocks.MockIncidentStore, *mocks.MockNotifier, *clock.FakeClock) {
	ctrl := gomock.NewController(t)
	storeMock := mocks.NewMockIncidentStore(ctrl)
	notifierMock := mocks.NewMockNotifier(ctrl)
	fake := clock.Fake(baseTime)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	s := New(storeMock, notifierMock, logger, WithClock(fake))
	return s, storeMock, notifierMock, fake
}

func newIncident(startedAt time.Time) *models.Incident {
	return &models.Incident{
		ID:          uuid.New(),
		UserID:      "user-" + startedAt.Format("150405"),
		Status:      models.StatusActive,
		StartedAt:   startedAt,
		LastUpdated: startedAt,
	}
}

func ids(incidents []models.Incident) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, inc.ID)
	}
	return out
}

func insertEvent(inc *models.Incident) models.ChangeEvent {
	return models.ChangeEvent{Kind: models.ChangeInsert, ID: inc.ID, Row: inc}
}

func TestRefresh_SortsByStartedAtDesc(t *testing.T) {
	// Подготовка
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	older := newIncident(baseTime.Add(-time.Hour))
	newer := newIncident(baseTime)

	// Ожидания
	storeMock.EXPECT().List(ctx).Return([]*models.Incident{older, newer}, nil).Times(1)

	// Действие
	err := s.Refresh(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newer.ID, older.ID}, ids(s.Incidents()))
	assert.False(t, s.Loading())
	assert.NoError(t, s.Err())
	assert.True(t, s.Snapshot().Loaded)
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)
	dbErr := errors.New("connection refused")

	gomock.InOrder(
		storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil),
		storeMock.EXPECT().List(ctx).Return(nil, dbErr),
		storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil),
	)

	require.NoError(t, s.Refresh(ctx))

	err := s.Refresh(ctx)
	require.ErrorIs(t, err, dbErr)
	assert.ErrorIs(t, s.Err(), dbErr)
	assert.Equal(t, []uuid.UUID{a.ID}, ids(s.Incidents()))
	assert.Contains(t, s.Snapshot().Error, "connection refused")

	// следующая успешная синхронизация снимает ошибку
	require.NoError(t, s.Refresh(ctx))
	assert.NoError(t, s.Err())
}

func TestRefresh_StaleResultDiscarded(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime.Add(-time.Minute))
	b := newIncident(baseTime)

	started := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		storeMock.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]*models.Incident, error) {
			close(started)
			<-release
			return []*models.Incident{a}, nil
		}),
		storeMock.EXPECT().List(gomock.Any()).Return([]*models.Incident{b}, nil),
	)

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.Refresh(ctx) }()
	<-started

	require.NoError(t, s.Refresh(ctx))
	assert.True(t, s.Loading())

	close(release)
	require.NoError(t, <-firstDone)

	assert.Equal(t, []uuid.UUID{b.ID}, ids(s.Incidents()))
	assert.False(t, s.Loading())
}

func TestRefresh_StaleFailureKeepsFreshState(t *testing.T) {
	// Подготовка
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	b := newIncident(baseTime)

	started := make(chan struct{})
	release := make(chan struct{})

	// Ожидания
	gomock.InOrder(
		storeMock.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]*models.Incident, error) {
			close(started)
			<-release
			return nil, errors.New("timeout")
		}),
		storeMock.EXPECT().List(gomock.Any()).Return([]*models.Incident{b}, nil),
	)

	// Действие
	firstDone := make(chan error, 1)
	go func() { firstDone <- s.Refresh(ctx) }()
	<-started

	require.NoError(t, s.Refresh(ctx))
	close(release)
	require.NoError(t, <-firstDone)

	// Проверки
	assert.Equal(t, []uuid.UUID{b.ID}, ids(s.Incidents()))
	assert.NoError(t, s.Err())
	assert.Empty(t, s.Snapshot().Error)
	assert.False(t, s.Loading())
}

func TestRefresh_ResultAfterCloseDiscarded(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	storeMock.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]*models.Incident, error) {
		close(started)
		<-release
		return []*models.Incident{newIncident(baseTime)}, nil
	})

	done := make(chan error, 1)
	go func() { done <- s.Refresh(ctx) }()
	<-started

	s.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Empty(t, s.Incidents())
	assert.ErrorIs(t, s.Refresh(ctx), ErrClosed)
}

func TestOnInsert_FirstEventBeforeLoad_NoAlarm(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)

	// Trigger не ожидается: любой вызов уронит тест
	storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil).Times(1)

	err := s.OnInsert(ctx, insertEvent(a))

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, ids(s.Incidents()))
	_, marked := s.RecentlyArrived()
	assert.False(t, marked)
}

func TestOnInsert_AfterLoad_AlarmsAndMarks(t *testing.T) {
	s, storeMock, notifierMock, fake := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime.Add(-time.Minute))
	b := newIncident(baseTime)

	gomock.InOrder(
		storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil),
		notifierMock.EXPECT().Trigger(ctx, gomock.Any()).Do(func(_ context.Context, got alarm.Alarm) {
			assert.Equal(t, b.ID, got.IncidentID)
			assert.Equal(t, b.UserID, got.UserID)
			assert.Equal(t, baseTime, got.TriggeredAt)
		}),
		storeMock.EXPECT().List(ctx).Return([]*models.Incident{b, a}, nil),
	)

	require.NoError(t, s.Refresh(ctx))
	require.NoError(t, s.OnInsert(ctx, insertEvent(b)))

	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, ids(s.Incidents()))

	marked, ok := s.RecentlyArrived()
	require.True(t, ok)
	assert.Equal(t, b.ID, marked)

	fake.Advance(DefaultMarkerWindow - time.Millisecond)
	_, ok = s.RecentlyArrived()
	assert.True(t, ok)

	fake.Advance(2 * time.Millisecond)
	_, ok = s.RecentlyArrived()
	assert.False(t, ok)
	assert.Zero(t, fake.Pending())
}

func TestOnInsert_RedeliveredInsertAlarmsOnce(t *testing.T) {
	s, storeMock, notifierMock, _ := newTestSynchronizer(t)
	ctx := context.Background()
	b := newIncident(baseTime)

	storeMock.EXPECT().List(ctx).Return(nil, nil).Times(1)
	storeMock.EXPECT().List(ctx).Return([]*models.Incident{b}, nil).Times(2)
	notifierMock.EXPECT().Trigger(ctx, gomock.Any()).Times(1)

	require.NoError(t, s.Refresh(ctx))
	require.NoError(t, s.OnInsert(ctx, insertEvent(b)))
	require.NoError(t, s.OnInsert(ctx, insertEvent(b)))

	assert.Len(t, s.Incidents(), 1)
}

func TestOnInsert_NewerMarkerReplacesOlder(t *testing.T) {
	s, storeMock, notifierMock, fake := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)
	b := newIncident(baseTime.Add(time.Second))

	storeMock.EXPECT().List(ctx).Return(nil, nil).Times(3)
	notifierMock.EXPECT().Trigger(ctx, gomock.Any()).Times(2)

	require.NoError(t, s.Refresh(ctx))
	require.NoError(t, s.OnInsert(ctx, insertEvent(a)))
	fake.Advance(3 * time.Second)
	require.NoError(t, s.OnInsert(ctx, insertEvent(b)))

	// таймер первого уже не должен снять отметку второго
	fake.Advance(3 * time.Second)
	marked, ok := s.RecentlyArrived()
	require.True(t, ok)
	assert.Equal(t, b.ID, marked)

	fake.Advance(3 * time.Second)
	_, ok = s.RecentlyArrived()
	assert.False(t, ok)
}

func TestOnInsert_RefreshFailureKeepsPartialRow(t *testing.T) {
	s, storeMock, notifierMock, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime.Add(-time.Minute))
	b := newIncident(baseTime)

	storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil)
	notifierMock.EXPECT().Trigger(ctx, gomock.Any())
	storeMock.EXPECT().List(ctx).Return(nil, errors.New("timeout"))

	require.NoError(t, s.Refresh(ctx))
	err := s.OnInsert(ctx, insertEvent(b))

	require.Error(t, err)
	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, ids(s.Incidents()))
	assert.Error(t, s.Err())
}

func TestOnInsert_EqualStartedAtOrderedByID(t *testing.T) {
	s, storeMock, notifierMock, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)
	b := newIncident(baseTime)
	a.ID = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	b.ID = uuid.MustParse("00000000-0000-0000-0000-0000000000bb")

	storeMock.EXPECT().List(ctx).Return([]*models.Incident{b}, nil)
	notifierMock.EXPECT().Trigger(ctx, gomock.Any())
	storeMock.EXPECT().List(ctx).Return(nil, errors.New("unavailable"))

	require.NoError(t, s.Refresh(ctx))
	_ = s.OnInsert(ctx, insertEvent(a))

	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, ids(s.Incidents()))
}

func TestOnUpdate_MergesKnownIncident(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)
	lat, lon := 55.75, 37.61

	storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil)
	require.NoError(t, s.Refresh(ctx))

	later := baseTime.Add(time.Minute)
	s.OnUpdate(models.ChangeEvent{
		Kind: models.ChangeUpdate,
		ID:   a.ID,
		Patch: &models.IncidentPatch{
			Latitude:    &lat,
			Longitude:   &lon,
			LastUpdated: &later,
		},
	})

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	require.NotNil(t, got.Latitude)
	assert.Equal(t, lat, *got.Latitude)
	assert.Equal(t, lon, *got.Longitude)
	assert.Equal(t, later, got.LastUpdated)
	assert.Equal(t, a.StartedAt, got.StartedAt)

	// исходная строка из хранилища не изменилась
	assert.Nil(t, a.Latitude)
}

func TestOnUpdate_UnknownIncidentDropped(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)

	storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil).Times(1)
	require.NoError(t, s.Refresh(ctx))

	battery := 0.5
	s.OnUpdate(models.ChangeEvent{
		Kind:  models.ChangeUpdate,
		ID:    uuid.New(),
		Patch: &models.IncidentPatch{Battery: &battery},
	})

	assert.Equal(t, []uuid.UUID{a.ID}, ids(s.Incidents()))
}

func TestOnUpdate_ResolvedStaysResolved(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)

	storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil)
	require.NoError(t, s.Refresh(ctx))

	resolved := models.StatusResolved
	resolvedAt := baseTime.Add(time.Minute)
	s.OnUpdate(models.ChangeEvent{
		Kind:  models.ChangeUpdate,
		ID:    a.ID,
		Patch: &models.IncidentPatch{Status: &resolved, ResolvedAt: &resolvedAt},
	})

	active := models.StatusActive
	s.OnUpdate(models.ChangeEvent{
		Kind:  models.ChangeUpdate,
		ID:    a.ID,
		Patch: &models.IncidentPatch{Status: &active},
	})

	got, _ := s.Get(a.ID)
	assert.Equal(t, models.StatusResolved, got.Status)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, resolvedAt, *got.ResolvedAt)
}

func TestOnDelete_RemovesIncident(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)
	b := newIncident(baseTime.Add(-time.Minute))

	storeMock.EXPECT().List(ctx).Return([]*models.Incident{a, b}, nil)
	require.NoError(t, s.Refresh(ctx))

	s.OnDelete(models.ChangeEvent{Kind: models.ChangeDelete, ID: a.ID})

	assert.Equal(t, []uuid.UUID{b.ID}, ids(s.Incidents()))
	_, ok := s.Get(a.ID)
	assert.False(t, ok)
}

func TestApply_DispatchesByKind(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)

	storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil).Times(1)
	s.Apply(ctx, insertEvent(a))

	s.Apply(ctx, models.ChangeEvent{Kind: "TRUNCATE", ID: a.ID})
	assert.Len(t, s.Incidents(), 1)

	s.Apply(ctx, models.ChangeEvent{Kind: models.ChangeDelete, ID: a.ID})
	assert.Empty(t, s.Incidents())
}

func TestResolve_UsesClockTime(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	id := uuid.New()

	storeMock.EXPECT().Resolve(ctx, id, baseTime).Return(nil)

	require.NoError(t, s.Resolve(ctx, id))
}

func TestResolve_StoreError(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	id := uuid.New()
	dbErr := errors.New("permission denied")

	storeMock.EXPECT().Resolve(ctx, id, gomock.Any()).Return(dbErr)

	err := s.Resolve(ctx, id)
	require.ErrorIs(t, err, dbErr)
}

func TestEventsAfterClose_Ignored(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()
	a := newIncident(baseTime)

	storeMock.EXPECT().List(ctx).Return([]*models.Incident{a}, nil).Times(1)
	require.NoError(t, s.Refresh(ctx))

	s.Close()
	s.Close()

	assert.ErrorIs(t, s.OnInsert(ctx, insertEvent(newIncident(baseTime))), ErrClosed)
	s.OnDelete(models.ChangeEvent{Kind: models.ChangeDelete, ID: a.ID})
	assert.Len(t, s.Incidents(), 1)
}

func TestChanges_Coalesced(t *testing.T) {
	s, storeMock, _, _ := newTestSynchronizer(t)
	ctx := context.Background()

	storeMock.EXPECT().List(ctx).Return(nil, nil).Times(2)
	require.NoError(t, s.Refresh(ctx))
	require.NoError(t, s.Refresh(ctx))

	select {
	case <-s.Changes():
	default:
		t.Fatal("expected change signal")
	}
	select {
	case <-s.Changes():
		t.Fatal("signals should be coalesced")
	default:
	}
}

// sortedForDisplay - эталонный порядок: started_at по убыванию, при равенстве по id
func sortedForDisplay(incidents []models.Incident) []uuid.UUID {
	c := append([]models.Incident(nil), incidents...)
	sort.SliceStable(c, func(i, j int) bool {
		if !c[i].StartedAt.Equal(c[j].StartedAt) {
			return c[i].StartedAt.After(c[j].StartedAt)
		}
		return c[i].ID.String() < c[j].ID.String()
	})
	return ids(c)
}

func TestOrdering_RandomEventSequence(t *testing.T) {
	// Подготовка
	s, storeMock, notifierMock, _ := newTestSynchronizer(t)
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(20260301))

	// состояние хранилища, которое видит refresh
	stored := map[uuid.UUID]*models.Incident{}
	var known []uuid.UUID

	// Ожидания
	notifierMock.EXPECT().Trigger(gomock.Any(), gomock.Any()).AnyTimes()
	storeMock.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]*models.Incident, error) {
		if rnd.Intn(3) == 0 {
			return nil, errors.New("unavailable")
		}
		out := make([]*models.Incident, 0, len(stored))
		for _, inc := range stored {
			out = append(out, inc.Clone())
		}
		rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out, nil
	}).AnyTimes()

	_ = s.Refresh(ctx)

	// Действие и проверки после каждого шага
	for step := 0; step < 300; step++ {
		switch op := rnd.Intn(10); {
		case op < 4 || len(known) == 0:
			inc := newIncident(baseTime.Add(time.Duration(rnd.Intn(20)) * time.Minute))
			stored[inc.ID] = inc.Clone()
			known = append(known, inc.ID)
			_ = s.OnInsert(ctx, insertEvent(inc))
		case op < 8:
			id := known[rnd.Intn(len(known))]
			if rnd.Intn(4) == 0 {
				id = uuid.New()
			}
			lat := rnd.Float64() * 90
			patch := &models.IncidentPatch{Latitude: &lat}
			if rnd.Intn(5) == 0 {
				resolved := models.StatusResolved
				patch.Status = &resolved
			}
			if inc, ok := stored[id]; ok {
				patch.Apply(inc)
			}
			s.OnUpdate(models.ChangeEvent{Kind: models.ChangeUpdate, ID: id, Patch: patch})
		default:
			i := rnd.Intn(len(known))
			id := known[i]
			known = append(known[:i], known[i+1:]...)
			delete(stored, id)
			s.OnDelete(models.ChangeEvent{Kind: models.ChangeDelete, ID: id})
		}

		got := s.Incidents()
		require.Equal(t, sortedForDisplay(got), ids(got), "step %d", step)
	}
}
