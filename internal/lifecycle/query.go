// Package lifecycle tracks the loading, error and data state of backend reads and writes.
package lifecycle

import (
	"context"
	"sync"

	"github.com/phillip-england/hrms/internal/hrapi"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a copy of a query's state. Data keeps the last successful payload even
// after a later fetch fails.
type State[T any] struct {
	Phase   Phase
	Data    T
	Loading bool
	Err     string
	Fetched bool
}

// Fetcher loads the data identified by the query descriptor d.
type Fetcher[D comparable, T any] func(ctx context.Context, d D) (T, error)

// Query runs a read operation identified by a comparable descriptor. Every issued
// fetch takes the next sequence number and only the response of the latest issued
// fetch is applied; earlier responses are dropped whenever they arrive.
type Query[D comparable, T any] struct {
	fetch Fetcher[D, T]

	mu     sync.Mutex
	state  State[T]
	desc   D
	issued bool
	seq    uint64
}

// NewQuery builds a query. With immediate set the query reports loading until its
// first fetch settles, matching a view that fetches as soon as it is shown.
func NewQuery[D comparable, T any](fetch func(ctx context.Context, d D) (T, error), immediate bool) *Query[D, T] {
	q := &Query[D, T]{fetch: fetch}
	if immediate {
		q.state.Phase = PhaseLoading
		q.state.Loading = true
	}
	return q
}

// Sync fetches when d differs from the descriptor of the last issued fetch, or when
// nothing was fetched yet. Otherwise it returns the current state untouched.
func (q *Query[D, T]) Sync(ctx context.Context, d D) State[T] {
	q.mu.Lock()
	if q.issued && q.desc == d {
		state := q.state
		q.mu.Unlock()
		return state
	}
	q.desc = d
	q.mu.Unlock()
	return q.run(ctx)
}

// NeedsFetch reports whether Sync(d) would issue a request.
func (q *Query[D, T]) NeedsFetch(d D) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.issued || q.desc != d
}

// Fetch issues a request for the current descriptor.
func (q *Query[D, T]) Fetch(ctx context.Context) State[T] {
	return q.run(ctx)
}

// Refetch is the manual trigger used after a successful mutation.
func (q *Query[D, T]) Refetch(ctx context.Context) State[T] {
	return q.run(ctx)
}

func (q *Query[D, T]) Descriptor() D {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.desc
}

func (q *Query[D, T]) Snapshot() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *Query[D, T]) run(ctx context.Context) State[T] {
	q.mu.Lock()
	q.seq++
	seq := q.seq
	desc := q.desc
	q.issued = true
	q.state.Phase = PhaseLoading
	q.state.Loading = true
	q.state.Err = ""
	q.mu.Unlock()

	data, err := q.fetch(ctx, desc)

	q.mu.Lock()
	defer q.mu.Unlock()
	if seq != q.seq {
		return q.state
	}
	q.state.Loading = false
	if err != nil {
		q.state.Phase = PhaseError
		q.state.Err = hrapi.ErrorMessage(err)
		return q.state
	}
	q.state.Phase = PhaseSuccess
	q.state.Data = data
	q.state.Fetched = true
	return q.state
}
