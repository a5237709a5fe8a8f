package application

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoHandler       = errors.New("no handler registered")
	ErrHandlerExists   = errors.New("handler already registered")
	ErrHandlerMismatch = errors.New("handler result type mismatch")
)

// Handler handles one command or query type C producing R.
type Handler[C any, R any] interface {
	Handle(ctx context.Context, msg C) (Result[R], error)
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc[C any, R any] func(ctx context.Context, msg C) (Result[R], error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, msg C) (Result[R], error) {
	return f(ctx, msg)
}

// Bus dispatches commands and queries to handlers registered explicitly at
// startup, keyed by message type.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]any
	logger   *logrus.Logger
}

func NewBus(logger *logrus.Logger) *Bus {
	return &Bus{handlers: make(map[reflect.Type]any), logger: logger}
}

func messageType[C any]() reflect.Type {
	return reflect.TypeOf((*C)(nil)).Elem()
}

// Register binds h to message type C. Each type has at most one handler.
func Register[C any, R any](b *Bus, h Handler[C, R]) error {
	t := messageType[C]()
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[t]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerExists, t)
	}
	b.handlers[t] = h
	return nil
}

// MustRegister is Register for composition roots.
func MustRegister[C any, R any](b *Bus, h Handler[C, R]) {
	if err := Register(b, h); err != nil {
		panic(err)
	}
}

// Send dispatches msg to the handler registered for C.
func Send[C any, R any](ctx context.Context, b *Bus, msg C) (Result[R], error) {
	t := messageType[C]()
	b.mu.RLock()
	h, ok := b.handlers[t]
	b.mu.RUnlock()
	if !ok {
		return Result[R]{}, fmt.Errorf("%w: %s", ErrNoHandler, t)
	}
	typed, ok := h.(Handler[C, R])
	if !ok {
		return Result[R]{}, fmt.Errorf("%w: %s", ErrHandlerMismatch, t)
	}

	start := time.Now()
	res, err := typed.Handle(ctx, msg)
	elapsed := time.Since(start)

	outcome := outcomeOf(res.Err(), err)
	messageDuration.WithLabelValues(t.Name(), outcome).Observe(elapsed.Seconds())
	if b.logger != nil {
		entry := b.logger.WithFields(logrus.Fields{
			"message":     t.Name(),
			"outcome":     outcome,
			"duration_ms": elapsed.Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Error("message handling failed")
		} else {
			entry.Debug("message handled")
		}
	}
	return res, err
}
