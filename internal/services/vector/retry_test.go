// File: internal/services/vector/retry_test.go
package vector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Warn(string, ...interface{})  {}

func fastConfig() *Config {
	return &Config{
		APIKey:     "key",
		IndexHost:  "host",
		Namespace:  "ns",
		Timeout:    time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		BatchSize:  100,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	r := NewRetryService(fastConfig(), testLogger{})

	calls := 0
	err := r.RetryWithTimeout(func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	r := NewRetryService(fastConfig(), testLogger{})

	calls := 0
	err := r.RetryWithTimeout(func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	r := NewRetryService(fastConfig(), testLogger{})

	calls := 0
	err := r.RetryWithTimeout(func(ctx context.Context) error {
		calls++
		return errors.New("persistent")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var vecErr *VectorError
	require.ErrorAs(t, err, &vecErr)
	assert.Equal(t, "retry", vecErr.Type)
}

func TestRetryTimesOut(t *testing.T) {
	cfg := fastConfig()
	cfg.Timeout = 10 * time.Millisecond
	cfg.RetryDelay = 50 * time.Millisecond
	r := NewRetryService(cfg, testLogger{})

	err := r.RetryWithTimeout(func(ctx context.Context) error {
		return errors.New("always failing")
	})

	require.Error(t, err)
	var vecErr *VectorError
	require.ErrorAs(t, err, &vecErr)
	assert.Equal(t, "timeout", vecErr.Type)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, fastConfig().Validate())

	missingKey := fastConfig()
	missingKey.APIKey = ""
	assert.Error(t, missingKey.Validate())

	missingHost := fastConfig()
	missingHost.IndexHost = ""
	assert.Error(t, missingHost.Validate())

	assert.Error(t, DefaultConfig().Validate())
}
