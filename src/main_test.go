package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeGo_NormalReturnDoesNotRestart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	SafeGo(ctx, cancel, "once", func(ctx context.Context) {
		calls.Add(1)
	})

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.NoError(t, ctx.Err())
}

func TestSafeGo_RestartsAfterPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	SafeGo(ctx, cancel, "flaky", func(ctx context.Context) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	})

	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, 3*time.Second, 10*time.Millisecond)
	assert.NoError(t, ctx.Err())
}

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()

	require.NotNil(t, cmd.Flags().Lookup("config"))
	require.NotNil(t, cmd.Flags().Lookup("log-level"))
	require.NotNil(t, cmd.Flags().Lookup("headless"))
	assert.Equal(t, "microinverter", cmd.Use)
	assert.NotEmpty(t, cmd.Version)
}
