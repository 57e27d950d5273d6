package lifecycle_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/phillip-england/hrms/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Total int
}

func TestQuery_InitialState(t *testing.T) {
	noop := func(ctx context.Context, d string) (payload, error) { return payload{}, nil }

	immediate := lifecycle.NewQuery(noop, true).Snapshot()
	assert.Equal(t, lifecycle.PhaseLoading, immediate.Phase)
	assert.True(t, immediate.Loading)

	lazy := lifecycle.NewQuery(noop, false).Snapshot()
	assert.Equal(t, lifecycle.PhaseIdle, lazy.Phase)
	assert.False(t, lazy.Loading)
	assert.False(t, lazy.Fetched)
}

func TestQuery_FetchSuccess(t *testing.T) {
	want := payload{Total: 3}
	q := lifecycle.NewQuery(func(ctx context.Context, d string) (payload, error) {
		return want, nil
	}, true)

	require.True(t, q.Snapshot().Loading)
	state := q.Fetch(context.Background())

	assert.False(t, state.Loading)
	assert.Equal(t, lifecycle.PhaseSuccess, state.Phase)
	assert.Equal(t, want, state.Data)
	assert.Empty(t, state.Err)
	assert.True(t, state.Fetched)
}

func TestQuery_FetchErrorKeepsPreviousData(t *testing.T) {
	fail := false
	q := lifecycle.NewQuery(func(ctx context.Context, d string) (payload, error) {
		if fail {
			return payload{}, &hrapi.Error{Status: 500, Message: "backend down"}
		}
		return payload{Total: 1}, nil
	}, false)

	q.Fetch(context.Background())
	fail = true
	state := q.Refetch(context.Background())

	assert.Equal(t, lifecycle.PhaseError, state.Phase)
	assert.Equal(t, "backend down", state.Err)
	assert.Equal(t, payload{Total: 1}, state.Data)
	assert.False(t, state.Loading)
}

func TestQuery_SyncFetchesOnlyWhenDescriptorChanges(t *testing.T) {
	type filter struct {
		Date string
	}
	calls := 0
	q := lifecycle.NewQuery(func(ctx context.Context, f filter) (payload, error) {
		calls++
		return payload{Total: calls}, nil
	}, true)
	ctx := context.Background()

	assert.True(t, q.NeedsFetch(filter{}))
	q.Sync(ctx, filter{})
	q.Sync(ctx, filter{})
	assert.Equal(t, 1, calls)

	assert.True(t, q.NeedsFetch(filter{Date: "2024-05-01"}))
	state := q.Sync(ctx, filter{Date: "2024-05-01"})
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, state.Data.Total)
	assert.Equal(t, filter{Date: "2024-05-01"}, q.Descriptor())

	q.Sync(ctx, filter{Date: "2024-05-01"})
	assert.Equal(t, 2, calls)

	q.Refetch(ctx)
	assert.Equal(t, 3, calls)
}

// A slower, older response must not overwrite the newer one.
func TestQuery_StaleResponseIsDiscarded(t *testing.T) {
	releaseOld := make(chan struct{})
	oldStarted := make(chan struct{})
	q := lifecycle.NewQuery(func(ctx context.Context, d string) (string, error) {
		if d == "old" {
			close(oldStarted)
			<-releaseOld
			return "old data", nil
		}
		return "new data", nil
	}, true)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.Sync(ctx, "old")
	}()
	<-oldStarted

	state := q.Sync(ctx, "new")
	require.Equal(t, "new data", state.Data)

	close(releaseOld)
	wg.Wait()

	final := q.Snapshot()
	assert.Equal(t, "new data", final.Data)
	assert.False(t, final.Loading)
	assert.Equal(t, lifecycle.PhaseSuccess, final.Phase)
}

func TestQuery_OlderResponseArrivingFirstKeepsLoading(t *testing.T) {
	releaseNew := make(chan struct{})
	newStarted := make(chan struct{})
	q := lifecycle.NewQuery(func(ctx context.Context, d string) (string, error) {
		if d == "new" {
			close(newStarted)
			<-releaseNew
			return "new data", nil
		}
		return "old data", nil
	}, false)
	ctx := context.Background()

	done := make(chan lifecycle.State[string])
	go func() { done <- q.Sync(ctx, "new") }()
	<-newStarted

	// A fetch for an older descriptor issued now takes a newer sequence number, so
	// it is the one that counts.
	state := q.Sync(ctx, "old")
	assert.Equal(t, "old data", state.Data)

	close(releaseNew)
	<-done
	assert.Equal(t, "old data", q.Snapshot().Data)
}

func TestMutation_Success(t *testing.T) {
	m := lifecycle.NewMutation(func(ctx context.Context, in string) (int, error) {
		return len(in), nil
	})

	res := m.Run(context.Background(), "EMP010")

	require.True(t, res.OK)
	assert.Equal(t, 6, res.Value)
	assert.Equal(t, lifecycle.MutationState{}, m.Snapshot())
}

func TestMutation_FailureIsStoredAndReturned(t *testing.T) {
	m := lifecycle.NewMutation(func(ctx context.Context, in string) (int, error) {
		return 0, &hrapi.Error{Status: 409, Message: "M"}
	})

	res := m.Run(context.Background(), "x")

	assert.False(t, res.OK)
	assert.Equal(t, "M", res.Message)
	require.Error(t, res.Err)
	var apiErr *hrapi.Error
	assert.True(t, errors.As(res.Err, &apiErr))

	state := m.Snapshot()
	assert.False(t, state.Loading)
	assert.Equal(t, "M", state.Err)

	m.ClearError()
	assert.Empty(t, m.Snapshot().Err)
}

func TestMutation_LoadingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m := lifecycle.NewMutation(func(ctx context.Context, in string) (string, error) {
		close(started)
		<-release
		return in, nil
	})

	done := make(chan lifecycle.Result[string])
	go func() { done <- m.Run(context.Background(), "a") }()
	<-started
	assert.True(t, m.Snapshot().Loading)

	close(release)
	res := <-done
	assert.True(t, res.OK)
	assert.False(t, m.Snapshot().Loading)
}

func TestMutation_SuccessClearsPreviousError(t *testing.T) {
	fail := true
	m := lifecycle.NewMutation(func(ctx context.Context, in string) (string, error) {
		if fail {
			return "", errors.New("first attempt failed")
		}
		return in, nil
	})

	m.Run(context.Background(), "a")
	assert.Equal(t, "first attempt failed", m.Snapshot().Err)

	fail = false
	res := m.Run(context.Background(), "a")
	assert.True(t, res.OK)
	assert.Empty(t, m.Snapshot().Err)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", lifecycle.PhaseIdle.String())
	assert.Equal(t, "error", lifecycle.PhaseError.String())
}
