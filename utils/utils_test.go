package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(8)

	require.NoError(t, err)
	assert.Len(t, code, 16) // hex doubles the byte count
	assert.Regexp(t, "^[0-9A-F]+$", code)
}

func TestGenerateCode_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode(8)
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestRandomChoice(t *testing.T) {
	options := []string{"easy", "medium", "hard"}
	for i := 0; i < 50; i++ {
		assert.Contains(t, options, RandomChoice(options))
	}

	assert.Equal(t, "only", RandomChoice([]string{"only"}))
	assert.Equal(t, "", RandomChoice(nil))
}

func TestCircuitBreaker_StaysClosedUnderLightLoad(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := cb.Execute(ctx, func(context.Context) error { return nil })
		assert.NoError(t, err)
	}

	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterFailureRatio(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()
	boom := errors.New("downstream unavailable")

	// Ten straight failures crosses both the request floor and the ratio.
	for i := 0; i < 10; i++ {
		err := cb.Execute(ctx, func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, BreakerOpen, cb.State())

	err := cb.Execute(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestCircuitBreaker_MixedOutcomesBelowRatioStayClosed(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()
	boom := errors.New("downstream unavailable")

	for i := 0; i < 20; i++ {
		fn := func(context.Context) error { return nil }
		if i%2 == 0 { // 50% failures, below the 60% trip ratio
			fn = func(context.Context) error { return boom }
		}
		_ = cb.Execute(ctx, fn)
	}

	assert.Equal(t, BreakerClosed, cb.State())
}

func TestRedisHealthCheck(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")

	assert.NoError(t, RedisHealthCheck(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisHealthCheck_Failure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	assert.Error(t, RedisHealthCheck(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
