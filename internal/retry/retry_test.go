package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(retries int) Config {
	return Config{
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_Success(t *testing.T) {
	attempts := 0

	err := Do(context.Background(), fastConfig(3), nil, func(context.Context) error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_PermanentError(t *testing.T) {
	attempts := 0
	permanent := errors.New("permanent")

	classifier := func(err error) bool { return !errors.Is(err, permanent) }

	err := Do(context.Background(), fastConfig(3), classifier, func(context.Context) error {
		attempts++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	attempts := 0

	err := Do(context.Background(), fastConfig(5), nil, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary")
		}

		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_MaxRetriesExceeded(t *testing.T) {
	attempts := 0
	temp := errors.New("temporary")

	err := Do(context.Background(), fastConfig(2), nil, func(context.Context) error {
		attempts++
		return temp
	})

	assert.ErrorIs(t, err, temp)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, 3, attempts)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastConfig(5)
	cfg.InitialBackoff = time.Second
	cfg.MaxBackoff = time.Second

	attempts := 0
	err := Do(ctx, cfg, nil, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("temporary")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestJitterBounds(t *testing.T) {
	d := 100 * time.Millisecond

	for i := 0; i < 100; i++ {
		j := jitter(d, 0.2)
		assert.LessOrEqual(t, j, 20*time.Millisecond)
		assert.GreaterOrEqual(t, j, -20*time.Millisecond)
	}

	assert.Zero(t, jitter(d, 0))
}
