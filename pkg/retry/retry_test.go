package retry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedgraph/pkg/retry"
)

var errBoom = errors.New("boom")

func TestDoSucceedsEventually(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(3, time.Millisecond, func(error, int) bool { return true }, func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(3, time.Millisecond, func(error, int) bool { return true }, func() error {
		calls++
		return errBoom
	})

	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 3, calls)
}

func TestDoStopsWhenDeclined(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(5, time.Millisecond, func(error, int) bool { return false }, func() error {
		calls++
		return errBoom
	})

	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 1, calls)
}

func TestDoFirstTrySuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(5, time.Millisecond, func(error, int) bool { return true }, func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
}
