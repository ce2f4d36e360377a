package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestWithResilience_RetriesTransient(t *testing.T) {
	g := &mockGenerator{}
	g.On("Generate", mock.Anything, mock.Anything).
		Return("", resilience.NewTransientError(errors.New("overloaded"), 529)).Once()
	g.On("Generate", mock.Anything, mock.Anything).Return("ok", nil).Once()

	out, err := WithResilience(g, nil, fastRetry()).Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	g.AssertNumberOfCalls(t, "Generate", 2)
}

func TestWithResilience_PermanentErrorNotRetried(t *testing.T) {
	g := &mockGenerator{}
	g.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("invalid key"))

	_, err := WithResilience(g, nil, fastRetry()).Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	g.AssertNumberOfCalls(t, "Generate", 1)
}

func TestWithResilience_OpenBreakerShortCircuits(t *testing.T) {
	g := &mockGenerator{}
	g.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("down"))

	cb := resilience.NewCircuitBreaker("llm", resilience.CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	wrapped := WithResilience(g, cb, fastRetry())

	_, err := wrapped.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	_, err = wrapped.Generate(context.Background(), Request{Prompt: "y"})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	g.AssertNumberOfCalls(t, "Generate", 1)
}

func TestWithResilience_NilGenerator(t *testing.T) {
	assert.Nil(t, WithResilience(nil, nil, fastRetry()))
}
