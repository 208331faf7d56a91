package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/store"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SaveGetDelete(t *testing.T) {
	clk := newFakeClock()
	m := store.NewMemory(clk)
	ctx := t.Context()

	_, err := m.Get(ctx, "+15005550006")
	require.ErrorIs(t, err, goerror.ErrNotFound)

	rec := entity.Record{
		Recipient: "+15005550006",
		Code:      "123456",
		CreatedAt: clk.Now(),
		ExpiresAt: clk.Now().Add(5 * time.Minute),
	}
	require.NoError(t, m.Save(ctx, rec))

	got, err := m.Get(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.Equal(t, rec, got.Record)
	assert.False(t, got.Expired)

	rec.Code = "654321"
	require.NoError(t, m.Save(ctx, rec))
	got, err = m.Get(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.Equal(t, "654321", got.Code)

	require.NoError(t, m.Delete(ctx, rec.Recipient))
	_, err = m.Get(ctx, rec.Recipient)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	assert.NoError(t, m.Delete(ctx, "missing"))
}

func TestMemory_ExpiryAndPurge(t *testing.T) {
	clk := newFakeClock()
	m := store.NewMemory(clk)
	ctx := t.Context()

	rec := entity.Record{
		Recipient: "user@example.com",
		Code:      "0042",
		CreatedAt: clk.Now(),
		ExpiresAt: clk.Now().Add(time.Minute),
	}
	require.NoError(t, m.Save(ctx, rec))

	clk.Advance(time.Minute)
	got, err := m.Get(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.False(t, got.Expired, "expiry is strict")

	clk.Advance(time.Millisecond)
	got, err = m.Get(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.True(t, got.Expired)

	clk.Advance(entity.RecordRetention)
	_, err = m.Get(ctx, rec.Recipient)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestMemory_SendAttemptsWindow(t *testing.T) {
	clk := newFakeClock()
	m := store.NewMemory(clk)
	ctx := t.Context()

	for want := int64(1); want <= 3; want++ {
		n, err := m.IncrementSendAttempts(ctx, "+15005550006", time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err := m.IncrementSendAttempts(ctx, "other@example.com", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counters are per recipient")

	clk.Advance(1100 * time.Millisecond)
	n, err = m.IncrementSendAttempts(ctx, "+15005550006", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, m.ResetSendAttempts(ctx, "+15005550006"))
	n, err = m.IncrementSendAttempts(ctx, "+15005550006", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemory_VerifyFailures(t *testing.T) {
	clk := newFakeClock()
	m := store.NewMemory(clk)
	ctx := t.Context()

	_, err := m.IncrementVerifyFailures(ctx, "user@example.com")
	require.ErrorIs(t, err, goerror.ErrNotFound)

	rec := entity.Record{Recipient: "user@example.com", Code: "1234", CreatedAt: clk.Now(), ExpiresAt: clk.Now().Add(time.Minute)}
	require.NoError(t, m.Save(ctx, rec))

	n, err := m.IncrementVerifyFailures(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = m.IncrementVerifyFailures(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, m.Save(ctx, rec))
	n, err = m.IncrementVerifyFailures(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "a new code starts a new failure count")
}

func TestMemory_SendAttemptsConcurrent(t *testing.T) {
	m := store.NewMemory(newFakeClock())
	ctx := t.Context()

	const workers = 200
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.IncrementSendAttempts(ctx, "+15005550006", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := m.IncrementSendAttempts(ctx, "+15005550006", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(workers+1), n)
}
