// Package viewmodel holds client-side state for the data services: each view
// keeps the last loaded value together with its loading flag and error, and
// drops responses that a newer request has superseded.
package viewmodel

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned by Refresh when a newer refresh or a Set landed while
// the fetch was in flight. The stale result is discarded.
var ErrStale = errors.New("stale response discarded")

// State is a snapshot of a Resource.
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Resource holds one fetched value. Every Refresh and Set bumps a generation
// counter; a fetch only lands if no other change happened since it started.
type Resource[T any] struct {
	mu    sync.Mutex
	state State[T]
	gen   uint64
	fetch func(context.Context) (T, error)
}

// NewResource returns a Resource in the loading state. fetch may be nil for
// resources fed only through Set.
func NewResource[T any](fetch func(context.Context) (T, error)) *Resource[T] {
	return &Resource[T]{state: State[T]{Loading: fetch != nil}, fetch: fetch}
}

func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Refresh fetches a new value. On failure the previous data is kept and the
// error recorded.
func (r *Resource[T]) Refresh(ctx context.Context) error {
	if r.fetch == nil {
		return nil
	}

	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.state.Loading = true
	r.mu.Unlock()

	data, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return ErrStale
	}
	r.state.Loading = false
	r.state.Err = err
	if err == nil {
		r.state.Data = data
	}
	return err
}

// Set replaces the data outright, e.g. from a subscription push.
func (r *Resource[T]) Set(data T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state = State[T]{Data: data}
}

// Fail records err without touching the data.
func (r *Resource[T]) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state.Loading = false
	r.state.Err = err
}

// Mutate runs write and, once it succeeds, patches the local data with
// apply. A nil apply reloads from the source instead. A failed write leaves
// the data as it was.
func (r *Resource[T]) Mutate(ctx context.Context, write func(context.Context) error, apply func(T) T) error {
	if err := write(ctx); err != nil {
		return err
	}
	if apply == nil {
		err := r.Refresh(ctx)
		if errors.Is(err, ErrStale) {
			return nil
		}
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state.Data = apply(r.state.Data)
	r.state.Loading = false
	r.state.Err = nil
	return nil
}
