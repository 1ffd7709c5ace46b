package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shenikar/guardian_response/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	safety     float64
	news       float64
	failSafety atomic.Int32
	failNews   atomic.Int32
	calls      atomic.Int32
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, r *http.Request, fails *atomic.Int32, score float64) {
		b.calls.Add(1)
		var req signalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if fails.Load() != 0 {
			if fails.Load() > 0 {
				fails.Add(-1)
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]float64{"safetyScore": score})
	}
	mux.HandleFunc("/api/safety-score", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, &b.failSafety, b.safety)
	})
	mux.HandleFunc("/api/news-analysis", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, &b.failNews, b.news)
	})
	return mux
}

func newTestClient(t *testing.T, backend *fakeBackend, cacheTime time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	c := NewClient(config.SafetyAPI{
		BaseURL: srv.URL,
		Endpoints: config.SafetyEndpoints{
			SafetyScore:  "/api/safety-score",
			NewsAnalysis: "/api/news-analysis",
		},
		Timeout:       time.Second,
		RetryAttempts: 3,
		CacheTime:     cacheTime,
	}, logger)
	c.retryInterval = time.Millisecond
	return c
}

func TestCombine(t *testing.T) {
	assert.Equal(t, 76, Combine(80, 67))
	assert.Equal(t, 50, Combine(50, 50))
	assert.Equal(t, 100, Combine(150, 100))
	assert.Equal(t, 0, Combine(-10, 0))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelSafe, LevelFor(70))
	assert.Equal(t, LevelCaution, LevelFor(69))
	assert.Equal(t, LevelCaution, LevelFor(40))
	assert.Equal(t, LevelUnsafe, LevelFor(39))
}

func TestScore_WeightedAverage(t *testing.T) {
	backend := &fakeBackend{safety: 90, news: 40}
	c := newTestClient(t, backend, 0)

	got, err := c.Score(context.Background(), 19.076, 72.877)

	require.NoError(t, err)
	assert.Equal(t, 75, got.Value)
	assert.Equal(t, LevelSafe, got.Level)
	assert.False(t, got.Degraded)
}

func TestScore_RetriesTransientFailure(t *testing.T) {
	backend := &fakeBackend{safety: 60, news: 60}
	backend.failSafety.Store(2)
	c := newTestClient(t, backend, 0)

	got, err := c.Score(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Equal(t, 60, got.Value)
	assert.False(t, got.Degraded)
}

func TestScore_FailedSignalFallsBackToNeutral(t *testing.T) {
	backend := &fakeBackend{safety: 100, news: 0}
	backend.failNews.Store(-1)
	c := newTestClient(t, backend, 0)

	got, err := c.Score(context.Background(), 1, 2)

	require.NoError(t, err)
	// 0.7*100 + 0.3*50
	assert.Equal(t, 85, got.Value)
	assert.Equal(t, float64(NeutralScore), got.News)
	assert.True(t, got.Degraded)
}

func TestScore_BothSignalsFail(t *testing.T) {
	backend := &fakeBackend{}
	backend.failSafety.Store(-1)
	backend.failNews.Store(-1)
	c := newTestClient(t, backend, 0)

	_, err := c.Score(context.Background(), 1, 2)

	require.ErrorIs(t, err, ErrUnavailable)
}

func TestScore_CachedPerCoordinate(t *testing.T) {
	backend := &fakeBackend{safety: 80, news: 80}
	c := newTestClient(t, backend, time.Minute)
	ctx := context.Background()

	_, err := c.Score(ctx, 55.7512, 37.6184)
	require.NoError(t, err)
	calls := backend.calls.Load()

	_, err = c.Score(ctx, 55.7514, 37.6181)
	require.NoError(t, err)
	assert.Equal(t, calls, backend.calls.Load())

	_, err = c.Score(ctx, 55.80, 37.6184)
	require.NoError(t, err)
	assert.Greater(t, backend.calls.Load(), calls)
}

func TestScore_DegradedResultNotCached(t *testing.T) {
	// Подготовка
	backend := &fakeBackend{safety: 100, news: 100}
	backend.failSafety.Store(3)
	c := newTestClient(t, backend, time.Minute)
	ctx := context.Background()

	// Действие
	first, err := c.Score(ctx, 1, 2)
	require.NoError(t, err)
	second, err := c.Score(ctx, 1, 2)
	require.NoError(t, err)

	// Проверки
	assert.True(t, first.Degraded)
	assert.Equal(t, float64(NeutralScore), first.Safety)
	assert.False(t, second.Degraded)
	assert.Equal(t, 100, second.Value)
}
