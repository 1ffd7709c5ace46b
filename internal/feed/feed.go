// Package feed доставляет уведомления об изменениях таблицы инцидентов.
//
// Предполагаемая семантика транспорта: at-least-once, порядок сохраняется в пределах одного id.
// Оборванное соединение не переподключается автоматически: подписка закрывается,
// владелец открывает новую и делает полный refresh.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/shenikar/guardian_response/internal/models"
)

var ErrClosed = errors.New("feed: closed")

// Source выдаёт подписки на поток изменений
//
//go:generate mockgen -source=feed.go -destination=../synchronizer/mocks/mock_feed.go -package=mocks
type Source interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription - отменяемая подписка. Events закрывается после Close
// или при потере транспорта. Close идемпотентен.
type Subscription interface {
	Events() <-chan models.ChangeEvent
	Close() error
}

// Broker - внутрипроцессная рассылка событий всем подписчикам.
// Подписчик, не успевающий читать, отключается: его канал закрывается.
type Broker struct {
	mu     sync.Mutex
	subs   map[*brokerSubscription]struct{}
	buffer int
	closed bool
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broker{
		subs:   make(map[*brokerSubscription]struct{}),
		buffer: buffer,
	}
}

// Publish не блокируется
func (b *Broker) Publish(ev models.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			// переполнение: отключаем подписчика, иначе он молча потеряет события
			b.removeLocked(sub)
		}
	}
}

func (b *Broker) Subscribe(ctx context.Context) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &brokerSubscription{
		broker: b,
		ch:     make(chan models.ChangeEvent, b.buffer),
	}
	b.subs[sub] = struct{}{}
	sub.stop = context.AfterFunc(ctx, func() { _ = sub.Close() })
	return sub, nil
}

// Subscribers возвращает число активных подписок
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close закрывает все подписки, новые не принимаются
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for sub := range b.subs {
		b.removeLocked(sub)
	}
}

func (b *Broker) removeLocked(sub *brokerSubscription) {
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

type brokerSubscription struct {
	broker *Broker
	ch     chan models.ChangeEvent
	stop   func() bool
}

func (s *brokerSubscription) Events() <-chan models.ChangeEvent {
	return s.ch
}

func (s *brokerSubscription) Close() error {
	s.broker.mu.Lock()
	stop := s.stop
	s.broker.removeLocked(s)
	s.broker.mu.Unlock()

	if stop != nil {
		stop()
	}
	return nil
}
