package memo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCompute_CachesByKey(t *testing.T) {
	cache := New[string, int]()
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	v, hit, err := cache.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	v, hit, err = cache.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	cache := New[string, int]()
	boom := errors.New("boom")
	calls := 0

	_, _, err := cache.GetOrCompute("k", func() (int, error) {
		calls++
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	// A later successful compute for the same key still runs.
	v, hit, err := cache.GetOrCompute("k", func() (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, cache.Len())
}

func TestFloatKey_ExactDiscrimination(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []float64
		equal bool
	}{
		{"identical", []float64{1.5, -2.25}, []float64{1.5, -2.25}, true},
		{"tiny difference", []float64{1.5}, []float64{1.5 + 1e-15}, false},
		{"boundary shift", []float64{1, 2.5}, []float64{1.25, 2.5}, false},
		{"empty", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.equal {
				assert.Equal(t, FloatKey(tt.a), FloatKey(tt.b))
			} else {
				assert.NotEqual(t, FloatKey(tt.a), FloatKey(tt.b))
			}
		})
	}
}
