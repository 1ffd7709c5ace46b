package alarm

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Songmu/retry"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// WorkerConfig - настройки доставки оповещений во внешний вебхук
type WorkerConfig struct {
	WebhookURL    string
	WebhookSecret string
	Timeout       time.Duration
	MaxRetries    uint
	RetryInterval time.Duration
}

// Worker забирает оповещения из очереди Redis и доставляет их в вебхук
type Worker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         WorkerConfig
	httpClient  *http.Client
}

func NewWorker(redisClient *redis.Client, logger *logrus.Logger, cfg WorkerConfig) *Worker {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	return &Worker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Start запускает горутину обработки очереди. Останавливается по отмене ctx.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting alarm worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping alarm worker.")
				return
			default:
			}

			// BRPOP с таймаутом, чтобы периодически проверять ctx
			result, err := w.redisClient.BRPop(ctx, time.Second, alarmQueueKey).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
					continue
				}
				w.logger.WithError(err).Error("Failed to pop alarm from Redis")
				select {
				case <-ctx.Done():
				case <-time.After(w.cfg.Timeout):
				}
				continue
			}

			// result[0] - ключ, result[1] - значение
			payload := result[1]
			var a Alarm
			if err := json.Unmarshal([]byte(payload), &a); err != nil {
				w.logger.WithError(err).Error("Failed to unmarshal alarm from Redis")
				continue
			}

			w.deliver(ctx, a, payload)
		}
	}()
}

func (w *Worker) deliver(ctx context.Context, a Alarm, rawPayload string) error {
	log := w.logger.WithField("incident_id", a.IncidentID)

	if w.cfg.WebhookURL == "" {
		log.Warn("Alarm webhook URL is not configured. Skipping delivery.")
		return nil
	}

	attempt := 0
	err := retry.Retry(w.cfg.MaxRetries, w.cfg.RetryInterval, func() error {
		attempt++
		if err := w.post(ctx, rawPayload); err != nil {
			log.WithError(err).Warnf("Alarm delivery attempt %d of %d failed", attempt, w.cfg.MaxRetries)
			return err
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Errorf("Failed to deliver alarm after %d attempts", attempt)
		return err
	}
	log.Info("Alarm delivered successfully")
	return nil
}

func (w *Worker) post(ctx context.Context, rawPayload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewBufferString(rawPayload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// HMAC подпись, если задан секрет
	if w.cfg.WebhookSecret != "" {
		req.Header.Set("X-Alarm-Signature", generateHMACSHA256(rawPayload, w.cfg.WebhookSecret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return nil
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
