// Package safety получает оценку безопасности точки маршрута из внешнего сервиса.
package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/Songmu/retry"
	"github.com/jellydator/ttlcache/v3"
	"github.com/shenikar/guardian_response/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// NeutralScore подставляется вместо сигнала, который не удалось получить
	NeutralScore = 50

	safetyWeight = 0.7
	newsWeight   = 0.3
)

var ErrUnavailable = errors.New("safety: both signals unavailable")

type Level string

const (
	LevelSafe    Level = "safe"
	LevelCaution Level = "caution"
	LevelUnsafe  Level = "unsafe"
)

// LevelFor раскладывает балл по трём уровням: от 70 безопасно, от 40 осторожно
func LevelFor(score int) Level {
	switch {
	case score >= 70:
		return LevelSafe
	case score >= 40:
		return LevelCaution
	default:
		return LevelUnsafe
	}
}

type Score struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Value     int     `json:"score"`
	Level     Level   `json:"level"`
	Safety    float64 `json:"safety_signal"`
	News      float64 `json:"news_signal"`
	Degraded  bool    `json:"degraded"`
}

type signalRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type signalResponse struct {
	SafetyScore *float64 `json:"safetyScore"`
}

type Client struct {
	cfg           config.SafetyAPI
	httpClient    *http.Client
	logger        *logrus.Logger
	cache         *ttlcache.Cache[string, Score]
	retryInterval time.Duration
}

func NewClient(cfg config.SafetyAPI, logger *logrus.Logger) *Client {
	c := &Client{
		cfg:           cfg,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
		retryInterval: time.Second,
	}
	if cfg.CacheTime > 0 {
		c.cache = ttlcache.New(
			ttlcache.WithTTL[string, Score](cfg.CacheTime),
			ttlcache.WithDisableTouchOnHit[string, Score](),
		)
	}
	return c
}

// Score считает round(0.7*safety + 0.3*news). Упавший сигнал заменяется на 50,
// если упали оба - ошибка. Результат кешируется по координатам с точностью ~100 м.
func (c *Client) Score(ctx context.Context, lat, lon float64) (Score, error) {
	log := c.logger.WithFields(logrus.Fields{
		"component": "safety",
		"method":    "Score",
		"latitude":  lat,
		"longitude": lon,
	})

	key := cacheKey(lat, lon)
	if c.cache != nil {
		if item := c.cache.Get(key); item != nil {
			log.Debug("Safety score served from cache")
			return item.Value(), nil
		}
	}

	var (
		safety, news       float64
		safetyErr, newsErr error
		g                  errgroup.Group
	)
	g.Go(func() error {
		safety, safetyErr = c.fetchSignal(ctx, c.cfg.Endpoints.SafetyScore, lat, lon)
		return safetyErr
	})
	g.Go(func() error {
		news, newsErr = c.fetchSignal(ctx, c.cfg.Endpoints.NewsAnalysis, lat, lon)
		return newsErr
	})

	// сигналы не отменяют друг друга: Wait дожидается обоих и сообщает, упал ли хоть один
	degraded := false
	if err := g.Wait(); err != nil {
		if safetyErr != nil && newsErr != nil {
			log.WithError(errors.Join(safetyErr, newsErr)).Error("Both safety signals failed")
			return Score{}, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(safetyErr, newsErr))
		}
		if safetyErr != nil {
			log.WithError(safetyErr).Warn("Safety signal failed, using neutral score")
			safety = NeutralScore
		}
		if newsErr != nil {
			log.WithError(newsErr).Warn("News signal failed, using neutral score")
			news = NeutralScore
		}
		degraded = true
	}

	value := Combine(safety, news)
	res := Score{
		Latitude:  lat,
		Longitude: lon,
		Value:     value,
		Level:     LevelFor(value),
		Safety:    safety,
		News:      news,
		Degraded:  degraded,
	}

	// деградированный результат не кешируется
	if c.cache != nil && !degraded {
		c.cache.Set(key, res, ttlcache.DefaultTTL)
	}
	return res, nil
}

// Combine - взвешенное среднее двух сигналов, ограниченное [0,100]
func Combine(safety, news float64) int {
	v := int(math.Round(safetyWeight*clamp(safety) + newsWeight*clamp(news)))
	return max(0, min(100, v))
}

func (c *Client) fetchSignal(ctx context.Context, endpoint string, lat, lon float64) (float64, error) {
	body, err := json.Marshal(signalRequest{Latitude: lat, Longitude: lon})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal signal request: %w", err)
	}
	url := c.cfg.BaseURL + endpoint

	var value float64
	attempts := max(c.cfg.RetryAttempts, 1)
	err = retry.Retry(attempts, c.retryInterval, func() error {
		if err := ctx.Err(); err != nil {
			return nil
		}
		v, err := c.post(ctx, url, body)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return value, nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create signal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("%s responded with status %d", url, resp.StatusCode)
	}

	var out signalResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode %s response: %w", url, err)
	}
	if out.SafetyScore == nil {
		return 0, fmt.Errorf("%s response has no safetyScore", url)
	}
	return *out.SafetyScore, nil
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f:%.3f", lat, lon)
}
