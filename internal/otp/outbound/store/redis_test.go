package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/store"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_SaveGetDelete(t *testing.T) {
	mr, client := setupMiniredis(t)
	clk := newFakeClock()
	r := store.NewRedis(client, "", clk, instrument.NewNoop())
	ctx := t.Context()

	_, err := r.Get(ctx, "+15005550006")
	require.ErrorIs(t, err, goerror.ErrNotFound)

	rec := entity.Record{
		Recipient: "+15005550006",
		Code:      "012345",
		CreatedAt: clk.Now(),
		ExpiresAt: clk.Now().Add(5 * time.Minute),
	}
	require.NoError(t, r.Save(ctx, rec))

	key := "otp:record:+15005550006"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, "012345", mr.HGet(key, "code"))
	assert.Equal(t, 6*time.Minute, mr.TTL(key))

	got, err := r.Get(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.Equal(t, rec.Code, got.Code)
	assert.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	assert.False(t, got.Expired)

	clk.Advance(5*time.Minute + time.Millisecond)
	got, err = r.Get(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.True(t, got.Expired)

	require.NoError(t, r.Delete(ctx, rec.Recipient))
	assert.False(t, mr.Exists(key))
	_, err = r.Get(ctx, rec.Recipient)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestRedis_SaveOverwritesAndDropsFailures(t *testing.T) {
	mr, client := setupMiniredis(t)
	clk := newFakeClock()
	r := store.NewRedis(client, "test:", clk, instrument.NewNoop())
	ctx := t.Context()

	rec := entity.Record{Recipient: "user@example.com", Code: "1111", CreatedAt: clk.Now(), ExpiresAt: clk.Now().Add(time.Minute)}
	require.NoError(t, r.Save(ctx, rec))

	n, err := r.IncrementVerifyFailures(ctx, rec.Recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rec.Code = "2222"
	require.NoError(t, r.Save(ctx, rec))

	key := "test:record:user@example.com"
	assert.Equal(t, "2222", mr.HGet(key, "code"))
	assert.Empty(t, mr.HGet(key, "failures"))
}

func TestRedis_StorageTTLExpiry(t *testing.T) {
	mr, client := setupMiniredis(t)
	clk := newFakeClock()
	r := store.NewRedis(client, "", clk, instrument.NewNoop())
	ctx := t.Context()

	rec := entity.Record{Recipient: "user@example.com", Code: "1234", CreatedAt: clk.Now(), ExpiresAt: clk.Now().Add(time.Minute)}
	require.NoError(t, r.Save(ctx, rec))

	mr.FastForward(2*time.Minute + time.Second)
	_, err := r.Get(ctx, rec.Recipient)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestRedis_SendAttemptsWindow(t *testing.T) {
	mr, client := setupMiniredis(t)
	r := store.NewRedis(client, "", newFakeClock(), instrument.NewNoop())
	ctx := t.Context()

	for want := int64(1); want <= 3; want++ {
		n, err := r.IncrementSendAttempts(ctx, "+15005550006", time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	key := "otp:attempts:+15005550006"
	ttl := mr.TTL(key)
	assert.True(t, ttl > 0 && ttl <= time.Second, "window ttl set once: %s", ttl)

	mr.FastForward(1100 * time.Millisecond)
	n, err := r.IncrementSendAttempts(ctx, "+15005550006", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, r.ResetSendAttempts(ctx, "+15005550006"))
	assert.False(t, mr.Exists(key))
}

func TestRedis_SendAttemptsRepairsMissingTTL(t *testing.T) {
	mr, client := setupMiniredis(t)
	r := store.NewRedis(client, "", newFakeClock(), instrument.NewNoop())

	require.NoError(t, mr.Set("otp:attempts:user@example.com", "4"))

	n, err := r.IncrementSendAttempts(t.Context(), "user@example.com", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, time.Minute, mr.TTL("otp:attempts:user@example.com"))
}

func TestRedis_VerifyFailuresRequireRecord(t *testing.T) {
	mr, client := setupMiniredis(t)
	r := store.NewRedis(client, "", newFakeClock(), instrument.NewNoop())

	_, err := r.IncrementVerifyFailures(t.Context(), "user@example.com")
	require.ErrorIs(t, err, goerror.ErrNotFound)
	assert.False(t, mr.Exists("otp:record:user@example.com"))
}

func TestRedis_PingFailsWhenDown(t *testing.T) {
	mr, client := setupMiniredis(t)
	r := store.NewRedis(client, "", newFakeClock(), instrument.NewNoop())

	require.NoError(t, r.Ping(t.Context()))
	mr.Close()
	assert.Error(t, r.Ping(t.Context()))
}

func TestRedis_SendAttemptsConcurrent(t *testing.T) {
	mr, client := setupMiniredis(t)
	r := store.NewRedis(client, "", newFakeClock(), instrument.NewNoop())
	ctx := t.Context()

	const workers = 50
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.IncrementSendAttempts(ctx, "+15005550006", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := mr.Get("otp:attempts:+15005550006")
	require.NoError(t, err)
	assert.Equal(t, "50", got)
	assert.Equal(t, time.Minute, mr.TTL("otp:attempts:+15005550006"))
}
