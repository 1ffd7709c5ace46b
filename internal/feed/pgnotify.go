package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultChannel - канал pg_notify, в который пишет триггер notify_incident_change
const DefaultChannel = "incident_changes"

// PGNotifySource слушает LISTEN/NOTIFY Postgres. Каждая подписка забирает
// отдельное соединение из пула и владеет им до Close.
type PGNotifySource struct {
	pool    *pgxpool.Pool
	channel string
	logger  *logrus.Logger
	buffer  int
}

func NewPGNotifySource(pool *pgxpool.Pool, channel string, logger *logrus.Logger) *PGNotifySource {
	if channel == "" {
		channel = DefaultChannel
	}
	return &PGNotifySource{
		pool:    pool,
		channel: channel,
		logger:  logger,
		buffer:  64,
	}
}

func (s *PGNotifySource) Subscribe(ctx context.Context) (Subscription, error) {
	pooled, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: acquire listen connection: %w", err)
	}
	// соединение с LISTEN не должно вернуться в пул
	conn := pooled.Hijack()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{s.channel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("feed: listen %s: %w", s.channel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &pgSubscription{
		conn:   conn,
		ch:     make(chan models.ChangeEvent, s.buffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	log := s.logger.WithFields(logrus.Fields{
		"component": "feed",
		"channel":   s.channel,
	})
	go sub.run(subCtx, log)

	log.Info("Subscribed to incident change feed")
	return sub, nil
}

type pgSubscription struct {
	conn      *pgx.Conn
	ch        chan models.ChangeEvent
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func (s *pgSubscription) run(ctx context.Context, log *logrus.Entry) {
	defer close(s.done)
	defer close(s.ch)
	defer s.conn.Close(context.Background())

	for {
		n, err := s.conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.WithError(err).Error("Change feed connection lost")
			}
			return
		}

		var ev models.ChangeEvent
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			log.WithError(err).Warn("Dropping undecodable change notification")
			continue
		}

		select {
		case s.ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (s *pgSubscription) Events() <-chan models.ChangeEvent {
	return s.ch
}

func (s *pgSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}
