package goroutine_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
)

func TestManager_CollectsErrors(t *testing.T) {
	m := goroutine.NewManager(4)
	errBoom := errors.New("boom")

	var ran atomic.Int32
	require.True(t, m.Go(context.Background(), "ok", func(context.Context) error {
		ran.Add(1)
		return nil
	}))
	require.True(t, m.Go(context.Background(), "fail", func(context.Context) error {
		ran.Add(1)
		return errBoom
	}))

	err := m.Wait()
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "fail: boom")
	assert.Equal(t, int32(2), ran.Load())
}

func TestManager_RecoversPanic(t *testing.T) {
	m := goroutine.NewManager(1)

	m.Go(context.Background(), "panicky", func(context.Context) error {
		panic("kaboom")
	})

	err := m.Wait()
	require.ErrorIs(t, err, goroutine.ErrPanic)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestManager_CancelIsNotAnError(t *testing.T) {
	m := goroutine.NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	m.Go(ctx, "monitor", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	cancel()
	assert.NoError(t, m.Wait())
}

func TestManager_LimitAndClose(t *testing.T) {
	m := goroutine.NewManager(1)
	release := make(chan struct{})

	require.True(t, m.Go(context.Background(), "first", func(context.Context) error {
		<-release
		return nil
	}))
	assert.False(t, m.Go(context.Background(), "second", func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, m.Wait())

	assert.False(t, m.Go(context.Background(), "late", func(context.Context) error { return nil }))
}

func TestManager_Nil(t *testing.T) {
	var m *goroutine.Manager
	assert.False(t, m.Go(context.Background(), "noop", func(context.Context) error { return nil }))
	assert.NoError(t, m.Wait())
}
