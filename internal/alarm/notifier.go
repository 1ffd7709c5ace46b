package alarm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	alarmQueueKey = "alarm_events"
)

// Alarm - сигнал о новом инциденте для звукового/тактильного оповещения
type Alarm struct {
	IncidentID  uuid.UUID `json:"incident_id"`
	UserID      string    `json:"user_id,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// Notifier - fire-and-forget оповещение. Реализации не возвращают ошибок
// и не паникуют в вызывающий код, все ошибки только логируются.
//
//go:generate mockgen -source=notifier.go -destination=../synchronizer/mocks/mock_notifier.go -package=mocks
type Notifier interface {
	Trigger(ctx context.Context, a Alarm)
}

// LogNotifier пишет оповещение в лог
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Trigger(_ context.Context, a Alarm) {
	n.logger.WithFields(logrus.Fields{
		"component":   "alarm",
		"incident_id": a.IncidentID,
		"user_id":     a.UserID,
	}).Warn("New SOS incident")
}

// RedisNotifier кладёт оповещение в очередь Redis, доставку делает Worker
type RedisNotifier struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

func NewRedisNotifier(client *redis.Client, logger *logrus.Logger) *RedisNotifier {
	return &RedisNotifier{
		redisClient: client,
		logger:      logger,
	}
}

func (n *RedisNotifier) Trigger(ctx context.Context, a Alarm) {
	log := n.logger.WithFields(logrus.Fields{
		"component":   "alarm",
		"incident_id": a.IncidentID,
	})
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Alarm publish panicked")
		}
	}()

	payload, err := json.Marshal(a)
	if err != nil {
		log.WithError(err).Error("Failed to marshal alarm")
		return
	}
	// LPUSH в левую часть, воркер забирает справа через BRPOP
	if err := n.redisClient.LPush(ctx, alarmQueueKey, payload).Err(); err != nil {
		log.WithError(err).Error("Failed to publish alarm to Redis")
	}
}

// Multi рассылает оповещение всем вложенным Notifier по порядку
type Multi []Notifier

func (m Multi) Trigger(ctx context.Context, a Alarm) {
	for _, n := range m {
		if n != nil {
			n.Trigger(ctx, a)
		}
	}
}

// Func адаптирует функцию к Notifier
type Func func(ctx context.Context, a Alarm)

func (f Func) Trigger(ctx context.Context, a Alarm) { f(ctx, a) }
