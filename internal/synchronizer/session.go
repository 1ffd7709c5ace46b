package synchronizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/shenikar/guardian_response/internal/feed"
	"github.com/sirupsen/logrus"
)

// Session - время жизни одной подписки дашборда: подписка на поток,
// начальная загрузка и цикл, применяющий события по одному.
type Session struct {
	sync   *Synchronizer
	sub    feed.Subscription
	logger *logrus.Logger
	cancel context.CancelFunc

	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Open подписывается на поток и запускает начальную загрузку.
// События, пришедшие до окончания загрузки, применяются, но сигнала не дают.
func Open(ctx context.Context, source feed.Source, s *Synchronizer) (*Session, error) {
	sessCtx, cancel := context.WithCancel(ctx)

	sub, err := source.Subscribe(sessCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("synchronizer: subscribe to change feed: %w", err)
	}

	sess := &Session{
		sync:   s,
		sub:    sub,
		logger: s.logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		_ = s.Refresh(sessCtx)
	}()
	go sess.run(sessCtx)

	return sess, nil
}

// WithSession открывает сессию на время fn и гарантированно закрывает её, в том числе при ошибке
func WithSession(ctx context.Context, source feed.Source, s *Synchronizer, fn func(*Session) error) (err error) {
	sess, err := Open(ctx, source, s)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(sess)
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	log := s.logger.WithFields(logrus.Fields{
		"component": "synchronizer",
		"method":    "Session.run",
	})

	events := s.sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() == nil {
					log.Warn("Change feed closed, session needs to be reopened")
					s.sync.fail(ErrFeedLost)
				}
				return
			}
			s.sync.Apply(ctx, ev)
		}
	}
}

func (s *Session) Synchronizer() *Synchronizer {
	return s.sync
}

// Changes сигналит об изменении проекции
func (s *Session) Changes() <-chan struct{} {
	return s.sync.Changes()
}

// Done закрывается, когда цикл событий завершился
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close отписывается от потока и ждёт завершения всех горутин сессии. Идемпотентен.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.sync.Close()
		s.cancel()
		s.closeErr = s.sub.Close()
		<-s.done
		s.wg.Wait()
	})
	return s.closeErr
}
