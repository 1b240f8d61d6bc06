package util

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelProcessesEveryInput(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}

	err := Parallel(context.Background(), []int{1, 2, 3, 4, 5}, 3, func(_ context.Context, n int) error {
		mu.Lock()
		seen[n] = true
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 5)
}

func TestParallelStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	err := Parallel(context.Background(), make([]int, 100), 1, func(_ context.Context, _ int) error {
		calls.Add(1)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, calls.Load(), int32(100))
}

func TestParallelEmptyInput(t *testing.T) {
	called := false
	err := Parallel(context.Background(), []string(nil), 4, func(context.Context, string) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
