// Package notify delivers committed marketplace notifications to the audit
// journal, a message broker and live websocket subscribers.
package notify

import (
	"context"
	"errors"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

// Publisher matches the marketplace's publisher port.
type Publisher interface {
	Publish(ctx context.Context, notifications []domain.Notification) error
}

// Fanout publishes to every target, even after one of them fails.
type Fanout struct {
	targets []Publisher
}

func NewFanout(targets ...Publisher) *Fanout {
	out := make([]Publisher, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return &Fanout{targets: out}
}

func (f *Fanout) Publish(ctx context.Context, notifications []domain.Notification) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Publish(ctx, notifications); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
