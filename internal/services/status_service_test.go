package services

import (
	"errors"
	"pulsed/internal/models"
	"pulsed/internal/providers"
	"pulsed/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest_ReturnsSnapshot(t *testing.T) {
	cache := testutil.NewMockCache()
	cache.Data[models.SnapshotKey(7)] = []byte(`{"keystrokes":5}`)
	ss := NewStatusService(cache)

	data, err := ss.Latest(7)
	require.NoError(t, err)
	assert.Equal(t, `{"keystrokes":5}`, string(data))
}

func TestLatest_MissIsNotAFault(t *testing.T) {
	ss := NewStatusService(testutil.NewMockCache())

	_, err := ss.Latest(7)
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}

func TestLatest_StoreFaultIsDistinct(t *testing.T) {
	cache := testutil.NewMockCache()
	cache.GetErr = errors.New("store unavailable")
	ss := NewStatusService(cache)

	_, err := ss.Latest(7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, providers.ErrCacheMiss)
}
