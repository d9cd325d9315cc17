package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_SleepAdvancesAndRecords(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManual(start)

	require.NoError(t, m.Sleep(context.Background(), 2*time.Second))
	require.NoError(t, m.Sleep(context.Background(), 4*time.Second))
	m.Advance(time.Minute)

	assert.Equal(t, start.Add(66*time.Second), m.Now())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, m.Sleeps())
	assert.Equal(t, 6*time.Second, m.Slept())
}

func TestManual_SleepHonoursCancelledContext(t *testing.T) {
	m := NewManual(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Sleep(ctx, time.Second), context.Canceled)
	assert.Empty(t, m.Sleeps())
}

func TestReal_SleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Real().Sleep(ctx, time.Hour), context.Canceled)
}
