package archive

import (
	"context"
	"fmt"
	"runtime/debug"
)

// State is a resource's position in its fetch-then-store lifecycle
type State string

const (
	StatePending     State = "PENDING"
	StateFetching    State = "FETCHING"
	StateFetched     State = "FETCHED"
	StateFetchFailed State = "FETCH_FAILED"
	StateStored      State = "STORED"
	StateStoreFailed State = "STORE_FAILED"
)

// Failed reports whether s is a failure state
func (s State) Failed() bool {
	return s == StateFetchFailed || s == StateStoreFailed
}

// Terminal reports whether s ends the lifecycle
func (s State) Terminal() bool {
	return s == StateStored || s.Failed()
}

// Resource is one unit of archival: a named fetch step whose result is
// handed to a store step. Build one with Define.
type Resource struct {
	Name  string
	fetch func(ctx context.Context) (any, error)
	store func(ctx context.Context, payload any) error
}

// Define builds a Resource whose fetch produces a T that store consumes
func Define[T any](name string, fetch func(ctx context.Context) (T, error), store func(ctx context.Context, payload T) error) Resource {
	return Resource{
		Name: name,
		fetch: func(ctx context.Context) (any, error) {
			return fetch(ctx)
		},
		store: func(ctx context.Context, payload any) error {
			typed, ok := payload.(T)
			if !ok && payload != nil {
				return fmt.Errorf("resource %s: fetched %T, store expects %T", name, payload, typed)
			}
			return store(ctx, typed)
		},
	}
}

// PanicError carries a panic recovered from a fetch or store step
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error value
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func guard(step func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return step()
}
