package ai_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/gallerit/ai"
	"github.com/poiesic/gallerit/ai/mock"
	"github.com/poiesic/gallerit/core"
)

func TestNewHandle(t *testing.T) {
	_, err := ai.NewHandle(nil)
	assert.ErrorIs(t, err, ai.ErrProviderRequired)

	_, err = ai.NewHandle(mock.NewMockProvider(), ai.WithRetry(0, time.Millisecond))
	assert.ErrorIs(t, err, ai.ErrInvalidMaxAttempts)

	provider := mock.NewMockProvider()
	_, err = ai.NewHandle(provider)
	require.NoError(t, err)
	assert.Zero(t, provider.LoadCount(), "loading is deferred to the first Acquire")
}

func TestHandle_LoadsOnce(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.LoadDelay = 20 * time.Millisecond
	h, err := ai.NewHandle(provider)
	require.NoError(t, err)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]ai.Classifier, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.Acquire(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, provider.GetMockClassifier(), results[i])
	}
	assert.Equal(t, 1, provider.LoadCount())

	_, err = h.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, provider.LoadCount(), "cached classifier should be reused")
}

func TestHandle_FailedLoadNotCached(t *testing.T) {
	provider := mock.NewMockProvider()
	boom := errors.New("model missing")
	provider.LoadFunc = func(ctx context.Context) (ai.Classifier, error) {
		return nil, boom
	}
	h, err := ai.NewHandle(provider)
	require.NoError(t, err)

	_, err = h.Acquire(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrClassifierLoad)
	assert.ErrorIs(t, err, boom)

	provider.LoadFunc = nil
	c, err := h.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, 2, provider.LoadCount())
}

func TestHandle_RetriesLoad(t *testing.T) {
	provider := mock.NewMockProvider()
	failures := 2
	provider.LoadFunc = func(ctx context.Context) (ai.Classifier, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("temporarily unavailable")
		}
		return provider.GetMockClassifier(), nil
	}
	h, err := ai.NewHandle(provider, ai.WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	c, err := h.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, 3, provider.LoadCount())
}

func TestHandle_CallerCancelDoesNotAbortLoad(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.LoadDelay = 50 * time.Millisecond
	h, err := ai.NewHandle(provider)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err = h.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c, err := h.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, 1, provider.LoadCount())
}

func TestHandle_Close(t *testing.T) {
	provider := mock.NewMockProvider()
	h, err := ai.NewHandle(provider)
	require.NoError(t, err)

	_, err = h.Acquire(context.Background())
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 1, provider.CloseCount())

	_, err = h.Acquire(context.Background())
	assert.ErrorIs(t, err, ai.ErrHandleClosed)
}
