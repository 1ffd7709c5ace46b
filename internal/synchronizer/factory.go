package synchronizer

import (
	"context"

	"github.com/shenikar/guardian_response/internal/alarm"
	"github.com/shenikar/guardian_response/internal/feed"
	"github.com/sirupsen/logrus"
)

// Factory открывает независимые сессии поверх общего хранилища и потока изменений.
// У каждой сессии свой снимок, свой маркер и свой получатель сигнала.
type Factory struct {
	store  IncidentStore
	source feed.Source
	logger *logrus.Logger
	opts   []Option
}

func NewFactory(store IncidentStore, source feed.Source, logger *logrus.Logger, opts ...Option) *Factory {
	return &Factory{
		store:  store,
		source: source,
		logger: logger,
		opts:   opts,
	}
}

// Run держит сессию открытой на время fn
func (f *Factory) Run(ctx context.Context, notifier alarm.Notifier, fn func(*Session) error) error {
	return WithSession(ctx, f.source, New(f.store, notifier, f.logger, f.opts...), fn)
}
