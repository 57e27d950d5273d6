package lifecycle

import (
	"context"
	"sync"

	"github.com/phillip-england/hrms/internal/hrapi"
)

// Result is the tagged outcome of one mutation run. On failure Message holds the
// normalized error, which the mutation also keeps for passive display.
type Result[R any] struct {
	Value   R
	OK      bool
	Err     error
	Message string
}

type MutationState struct {
	Loading bool
	Err     string
}

// Mutation runs a write operation. There is no retry: a failed run has to be started
// again by the caller.
type Mutation[A, R any] struct {
	do func(ctx context.Context, args A) (R, error)

	mu    sync.Mutex
	state MutationState
}

func NewMutation[A, R any](do func(ctx context.Context, args A) (R, error)) *Mutation[A, R] {
	return &Mutation[A, R]{do: do}
}

func (m *Mutation[A, R]) Run(ctx context.Context, args A) Result[R] {
	m.mu.Lock()
	m.state = MutationState{Loading: true}
	m.mu.Unlock()

	value, err := m.do(ctx, args)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Loading = false
	if err != nil {
		msg := hrapi.ErrorMessage(err)
		m.state.Err = msg
		return Result[R]{Err: err, Message: msg}
	}
	m.state.Err = ""
	return Result[R]{Value: value, OK: true}
}

func (m *Mutation[A, R]) Snapshot() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mutation[A, R]) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Err = ""
}
