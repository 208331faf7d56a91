package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
)

func (m *Memory) sizes() (records, counters int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.records), len(m.counters)
}

func TestMemory_SweepReclaimsAbandonedEntries(t *testing.T) {
	clk := clock.NewManual(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	m := NewMemory(clk)
	ctx := t.Context()

	for i := range 1000 {
		recipient := fmt.Sprintf("user%d@example.com", i)
		require.NoError(t, m.Save(ctx, entity.Record{
			Recipient: recipient,
			Code:      "123456",
			CreatedAt: clk.Now(),
			ExpiresAt: clk.Now().Add(5 * time.Minute),
		}))
		_, err := m.IncrementSendAttempts(ctx, recipient, time.Minute)
		require.NoError(t, err)
	}

	records, counters := m.sizes()
	require.Equal(t, 1000, records)
	require.Equal(t, 1000, counters)

	clk.Advance(24 * time.Hour)
	_, err := m.IncrementSendAttempts(ctx, "someone-else@example.com", time.Minute)
	require.NoError(t, err)

	records, counters = m.sizes()
	assert.Equal(t, 0, records)
	assert.Equal(t, 1, counters)
}

func TestMemory_SweepKeepsLiveEntries(t *testing.T) {
	clk := clock.NewManual(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	m := NewMemory(clk)
	ctx := t.Context()

	require.NoError(t, m.Save(ctx, entity.Record{
		Recipient: "old@example.com",
		Code:      "1111",
		CreatedAt: clk.Now(),
		ExpiresAt: clk.Now().Add(time.Minute),
	}))
	_, err := m.IncrementSendAttempts(ctx, "old@example.com", time.Minute)
	require.NoError(t, err)

	clk.Advance(2*time.Minute + time.Second)
	require.NoError(t, m.Save(ctx, entity.Record{
		Recipient: "new@example.com",
		Code:      "2222",
		CreatedAt: clk.Now(),
		ExpiresAt: clk.Now().Add(5 * time.Minute),
	}))
	_, err = m.IncrementSendAttempts(ctx, "new@example.com", time.Hour)
	require.NoError(t, err)

	records, counters := m.sizes()
	assert.Equal(t, 1, records, "expired record past its retention is swept")
	assert.Equal(t, 1, counters, "rolled over counter is swept")

	got, err := m.Get(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2222", got.Code)
}
