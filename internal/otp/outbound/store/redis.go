package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultKeyPrefix namespaces every key written by Redis.
const DefaultKeyPrefix = "otp:"

const (
	fieldCode      = "code"
	fieldExpiresAt = "expiresAt"
	fieldCreatedAt = "createdAt"
	fieldFailures  = "failures"
)

var incrementWindowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 or redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

var incrementFailuresScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
`)

// Redis stores records as hashes under {prefix}record:{recipient} and send
// counters as integers under {prefix}attempts:{recipient}.
type Redis struct {
	client redis.UniversalClient
	prefix string
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

func NewRedis(client redis.UniversalClient, prefix string, clk clock.Clocker, ins instrument.Instrumentation) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &Redis{client: client, prefix: prefix, clock: clk, ins: ins}
}

func (r *Redis) Name() entity.StoreBackend {
	return entity.StoreBackendRedis
}

func (r *Redis) recordKey(recipient string) string {
	return r.prefix + "record:" + recipient
}

func (r *Redis) attemptsKey(recipient string) string {
	return r.prefix + "attempts:" + recipient
}

func (r *Redis) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return goerror.ErrNotFound
	}

	return err
}

func (r *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("otp.outbound.store").Start(ctx, name,
		trace.WithAttributes(attribute.String("db.system", "redis")))
}

func (r *Redis) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Save(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := r.startSpan(ctx, "Save")
	defer func() { r.endSpan(span, err) }()

	key := r.recordKey(rec.Recipient)
	ttl := rec.StorageTTL(r.clock.Now())
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldCode, rec.Code,
			fieldExpiresAt, rec.ExpiresAt.UnixMilli(),
			fieldCreatedAt, rec.CreatedAt.UnixMilli(),
		)
		pipe.PExpire(ctx, key, ttl)
		return nil
	})

	return r.mapError(err)
}

func (r *Redis) Get(ctx context.Context, recipient string) (_ *entity.Lookup, err error) {
	ctx, span := r.startSpan(ctx, "Get")
	defer func() { r.endSpan(span, err) }()

	fields, err := r.client.HGetAll(ctx, r.recordKey(recipient)).Result()
	if err != nil {
		return nil, r.mapError(err)
	}

	code, ok := fields[fieldCode]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	expiresAt, err := parseMillis(fields[fieldExpiresAt])
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldExpiresAt, err)
	}

	createdAt, err := parseMillis(fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldCreatedAt, err)
	}

	rec := entity.Record{
		Recipient: recipient,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}

	return &entity.Lookup{Record: rec, Expired: r.clock.Now().After(expiresAt)}, nil
}

func (r *Redis) Delete(ctx context.Context, recipient string) (err error) {
	ctx, span := r.startSpan(ctx, "Delete")
	defer func() { r.endSpan(span, err) }()

	return r.mapError(r.client.Del(ctx, r.recordKey(recipient)).Err())
}

func (r *Redis) IncrementSendAttempts(ctx context.Context, recipient string, window time.Duration) (_ int64, err error) {
	ctx, span := r.startSpan(ctx, "IncrementSendAttempts")
	defer func() { r.endSpan(span, err) }()

	n, err := incrementWindowScript.Run(ctx, r.client, []string{r.attemptsKey(recipient)}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, r.mapError(err)
	}

	return n, nil
}

func (r *Redis) ResetSendAttempts(ctx context.Context, recipient string) (err error) {
	ctx, span := r.startSpan(ctx, "ResetSendAttempts")
	defer func() { r.endSpan(span, err) }()

	return r.mapError(r.client.Del(ctx, r.attemptsKey(recipient)).Err())
}

func (r *Redis) IncrementVerifyFailures(ctx context.Context, recipient string) (_ int64, err error) {
	ctx, span := r.startSpan(ctx, "IncrementVerifyFailures")
	defer func() { r.endSpan(span, err) }()

	n, err := incrementFailuresScript.Run(ctx, r.client, []string{r.recordKey(recipient)}, fieldFailures).Int64()
	if err != nil {
		return 0, r.mapError(err)
	}
	if n < 0 {
		return 0, goerror.ErrNotFound
	}

	return n, nil
}

func parseMillis(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
