// Package viewstate implements the view-state contract every page follows:
// a fetch moves through Idle -> Loading -> Ready | Empty | Failed, and the
// page renders exactly one of those states. Pages configure a fetcher rather
// than reimplementing the scaffolding inline.
package viewstate

import (
	"context"
	"sync"

	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// Status is the display state of a page's data
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	// Empty is the distinguished "nothing currently available" state. The
	// backend overloads 404 on listing endpoints to mean an expected empty
	// condition ("no active gameweek"), not a failure.
	Empty
	Failed
)

// State is the tagged result a page renders from
type State[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Message returns the display message for a Failed state
func (s State[T]) Message() string {
	if s.Err == nil {
		return ""
	}
	if reqErr, ok := predictapi.AsRequestError(s.Err); ok {
		return reqErr.Message
	}
	return s.Err.Error()
}

type config struct {
	notFoundAsEmpty bool
}

// Option configures fetch classification
type Option func(*config)

// NotFoundAsEmpty maps a backend 404 to the Empty state instead of Failed
func NotFoundAsEmpty() Option {
	return func(c *config) { c.notFoundAsEmpty = true }
}

// Fetch runs the fetcher once and classifies the outcome
func Fetch[T any](ctx context.Context, fetch func(context.Context) (T, error), opts ...Option) State[T] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := fetch(ctx)
	return classify(data, err, cfg)
}

func classify[T any](data T, err error, cfg config) State[T] {
	if err != nil {
		if cfg.notFoundAsEmpty && predictapi.IsNotFound(err) {
			return State[T]{Status: Empty, Err: err}
		}
		return State[T]{Status: Failed, Err: err}
	}
	return State[T]{Status: Ready, Data: data}
}

// Loader is a stateful view whose dependencies can change while a fetch is in
// flight. Loads are sequence-stamped: when a newer load starts before an older
// one finishes, the older result is discarded instead of overwriting fresher
// state.
type Loader[T any] struct {
	mu    sync.Mutex
	seq   uint64
	state State[T]
	cfg   config
}

// NewLoader creates a Loader in the Idle state
func NewLoader[T any](opts ...Option) *Loader[T] {
	l := &Loader[T]{}
	for _, opt := range opts {
		opt(&l.cfg)
	}
	return l
}

// Load runs the fetcher and commits its result unless a newer load has
// started in the meantime. It returns the loader's state after the attempt.
func (l *Loader[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) State[T] {
	l.mu.Lock()
	l.seq++
	mine := l.seq
	if l.state.Status == Idle {
		l.state.Status = Loading
	}
	l.mu.Unlock()

	data, err := fetch(ctx)
	result := classify(data, err, l.cfg)

	l.mu.Lock()
	defer l.mu.Unlock()
	if mine == l.seq {
		l.state = result
	}
	return l.state
}

// Current returns the loader's current state
func (l *Loader[T]) Current() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
