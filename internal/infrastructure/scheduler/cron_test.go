package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCronSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	_, err := NewCronScheduler("every morning", nil, nil)
	require.Error(t, err)

	s, err := NewCronScheduler("0 9 * * *", nil, nil)
	require.NoError(t, err)
	require.Equal(t, time.UTC, s.location)
}

func TestCronSchedulerStartStop(t *testing.T) {
	t.Parallel()

	s, err := NewCronScheduler("@every 1s", time.UTC, nil)
	require.NoError(t, err)

	fired := make(chan time.Time, 1)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx, func(at time.Time) {
		select {
		case fired <- at:
		default:
		}
	}))
	require.NoError(t, s.Start(ctx, func(time.Time) {}))

	select {
	case at := <-fired:
		require.Equal(t, time.UTC, at.Location())
	case <-time.After(5 * time.Second):
		t.Fatal("job did not fire")
	}

	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
