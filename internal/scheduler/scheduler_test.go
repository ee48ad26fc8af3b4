package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetJob_InvalidExpression(t *testing.T) {
	s := New()
	assert.Error(t, s.SetJob("not a cron line", func() {}))
	assert.Empty(t, s.CronExpr())
	assert.Nil(t, s.NextRunAt())
}

func TestSetJob_ReplacesPrevious(t *testing.T) {
	s := New()
	require.NoError(t, s.SetJob("0 2 * * *", func() {}))
	require.NoError(t, s.SetJob("30 3 * * 0", func() {}))
	assert.Equal(t, "30 3 * * 0", s.CronExpr())
	assert.Len(t, s.c.Entries(), 1)

	// A bad replacement keeps the current job.
	assert.Error(t, s.SetJob("61 * * * *", func() {}))
	assert.Equal(t, "30 3 * * 0", s.CronExpr())
	assert.Len(t, s.c.Entries(), 1)
}

func TestRunUntil_FiresAndStops(t *testing.T) {
	s := New()
	var fired atomic.Int32
	done := make(chan struct{}, 1)
	require.NoError(t, s.SetJob("@every 1s", func() {
		fired.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.RunUntil(ctx)
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job never fired")
	}
	assert.NotNil(t, s.NextRunAt())

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("RunUntil did not return after cancel")
	}
	assert.GreaterOrEqual(t, fired.Load(), int32(1))
}
