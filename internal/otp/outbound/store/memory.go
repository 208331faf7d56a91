package store

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type memoryRecord struct {
	rec      entity.Record
	purgeAt  time.Time
	failures int64
}

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

// memorySweepInterval is the minimum gap between two full sweeps.
const memorySweepInterval = time.Minute

// Memory keeps records and counters in process. Entries past their storage
// TTL are purged on access, and writes sweep every expired entry at most
// once per memorySweepInterval.
type Memory struct {
	clock clock.Clocker

	mu        sync.Mutex
	records   map[string]*memoryRecord
	counters  map[string]*memoryCounter
	nextSweep time.Time
}

func NewMemory(clk clock.Clocker) *Memory {
	return &Memory{
		clock:    clk,
		records:  make(map[string]*memoryRecord),
		counters: make(map[string]*memoryCounter),
	}
}

func (m *Memory) Name() entity.StoreBackend {
	return entity.StoreBackendMemory
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) Save(_ context.Context, rec entity.Record) error {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)
	m.records[rec.Recipient] = &memoryRecord{rec: rec, purgeAt: now.Add(rec.StorageTTL(now))}
	return nil
}

func (m *Memory) Get(_ context.Context, recipient string) (*entity.Lookup, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	mr := m.liveRecord(recipient, now)
	if mr == nil {
		return nil, goerror.ErrNotFound
	}

	return &entity.Lookup{Record: mr.rec, Expired: now.After(mr.rec.ExpiresAt)}, nil
}

func (m *Memory) Delete(_ context.Context, recipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, recipient)
	return nil
}

func (m *Memory) IncrementSendAttempts(_ context.Context, recipient string, window time.Duration) (int64, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	c, ok := m.counters[recipient]
	if !ok || now.After(c.expiresAt) {
		c = &memoryCounter{expiresAt: now.Add(window)}
		m.counters[recipient] = c
	}
	c.count++

	return c.count, nil
}

func (m *Memory) ResetSendAttempts(_ context.Context, recipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.counters, recipient)
	return nil
}

func (m *Memory) IncrementVerifyFailures(_ context.Context, recipient string) (int64, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	mr := m.liveRecord(recipient, now)
	if mr == nil {
		return 0, goerror.ErrNotFound
	}
	mr.failures++

	return mr.failures, nil
}

// liveRecord must be called with mu held.
func (m *Memory) liveRecord(recipient string, now time.Time) *memoryRecord {
	mr, ok := m.records[recipient]
	if !ok {
		return nil
	}
	if !now.Before(mr.purgeAt) {
		delete(m.records, recipient)
		return nil
	}
	return mr
}

// sweep drops records past their storage TTL and counters past their window.
// It must be called with mu held.
func (m *Memory) sweep(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	m.nextSweep = now.Add(memorySweepInterval)

	for recipient, mr := range m.records {
		if !now.Before(mr.purgeAt) {
			delete(m.records, recipient)
		}
	}
	for recipient, c := range m.counters {
		if now.After(c.expiresAt) {
			delete(m.counters, recipient)
		}
	}
}
