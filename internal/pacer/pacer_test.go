package pacer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalFirstWaitIsImmediate(t *testing.T) {
	p := NewInterval(time.Hour)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestIntervalSpacesCalls(t *testing.T) {
	p := NewInterval(30 * time.Millisecond)

	require.NoError(t, p.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestIntervalZeroNeverBlocks(t *testing.T) {
	p := NewInterval(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestIntervalCancelledContext(t *testing.T) {
	p := NewInterval(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Wait(ctx))
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Wait(context.Background()))
}
