package hooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Listener reacts to events. Implementations ignore kinds they do not handle.
type Listener interface {
	Handle(ctx context.Context, event Event) error
}

// ListenerFunc adapts a function to [Listener].
type ListenerFunc func(ctx context.Context, event Event) error

func (f ListenerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Dispatcher fans an event out to its listeners.
type Dispatcher struct {
	listeners []Listener
	logger    log.Logger
}

// NewDispatcher returns a [Dispatcher]. A nil logger discards output.
func NewDispatcher(logger log.Logger, listeners ...Listener) *Dispatcher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	out := make([]Listener, 0, len(listeners))
	for _, l := range listeners {
		if l != nil {
			out = append(out, l)
		}
	}
	return &Dispatcher{
		listeners: out,
		logger:    log.With(logger, "component", "hooks"),
	}
}

// Len reports the number of registered listeners.
func (d *Dispatcher) Len() int {
	if d == nil {
		return 0
	}
	return len(d.listeners)
}

// Dispatch runs every listener and returns the joined listener errors.
// A panicking listener is recovered and reported as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	if d == nil || event == nil {
		return nil
	}

	var errs []error
	for i, l := range d.listeners {
		if err := runListener(ctx, l, event); err != nil {
			_ = level.Warn(d.logger).Log(
				"msg", "hook listener failed",
				"event", event.Kind().String(),
				"listener", i,
				"user_id", event.Subject().ID,
				"err", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runListener(ctx context.Context, l Listener, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook listener panic: %v", r)
		}
	}()
	return l.Handle(ctx, event)
}
