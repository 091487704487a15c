package optimize

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qcerrors "github.com/chemtools/qcflow/internal/errors"
)

func TestRun_QuadraticScalar(t *testing.T) {
	// Maximum of -(x-2)^2 over [0, 5] is at x = 2.
	m := NewMaxLIPOTR(func(x []float64) (float64, error) {
		return -(x[0] - 2) * (x[0] - 2), nil
	}, WithSeed(7))

	x, y, err := m.RunScalar(context.Background(), 0, 5, 200, 0)

	require.NoError(t, err)
	assert.InDelta(t, 2.0, x, 0.1)
	assert.InDelta(t, 0.0, y, 0.02)
}

func TestRun_TwoDimensionalBowl(t *testing.T) {
	m := NewMaxLIPOTR(func(x []float64) (float64, error) {
		return -(x[0]*x[0] + x[1]*x[1]), nil
	}, WithSeed(11))

	res, err := m.Run(context.Background(), []float64{-5, -5}, []float64{5, 5}, 300, 0)

	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.X[0], 0.3)
	assert.InDelta(t, 0.0, res.X[1], 0.3)
	assert.InDelta(t, 0.0, res.Value, 0.2)
}

func TestRun_BudgetIsExact(t *testing.T) {
	calls := 0
	m := NewMaxLIPOTR(func(x []float64) (float64, error) {
		calls++
		return math.Sin(x[0]), nil
	}, WithSeed(3))

	_, err := m.Run(context.Background(), []float64{0}, []float64{10}, 50, 0)

	require.NoError(t, err)
	assert.Equal(t, 50, calls, "objective calls must equal the budget")
	assert.Equal(t, 50, m.Evaluations())
}

func TestRun_CacheHitsAreFree(t *testing.T) {
	calls := 0
	obj := func(x []float64) (float64, error) {
		calls++
		return -x[0] * x[0], nil
	}
	m := NewMaxLIPOTR(obj, WithSeed(5))

	// Pre-populate the cache at the box center, which Run samples first.
	_, consumed, err := m.evaluate(context.Background(), []float64{2.5})
	require.NoError(t, err)
	require.True(t, consumed)
	require.Equal(t, 1, calls)

	_, err = m.Run(context.Background(), []float64{0}, []float64{5}, 30, 0)

	require.NoError(t, err)
	// The replayed center point must not be charged again.
	assert.Equal(t, 31, calls)
	assert.Equal(t, 31, m.Evaluations())
}

func TestRun_DeterministicWithSeed(t *testing.T) {
	run := func() Result {
		m := NewMaxLIPOTR(func(x []float64) (float64, error) {
			return math.Sin(3*x[0]) - 0.1*x[0]*x[0], nil
		}, WithSeed(42))
		res, err := m.Run(context.Background(), []float64{-4}, []float64{4}, 80, 0)
		require.NoError(t, err)
		return res
	}

	first := run()
	second := run()

	assert.Equal(t, first.X, second.X)
	assert.Equal(t, first.Value, second.Value)
}

func TestRun_BadBounds(t *testing.T) {
	m := NewMaxLIPOTR(func(x []float64) (float64, error) { return 0, nil })

	_, err := m.Run(context.Background(), []float64{3}, []float64{1}, 10, 0)

	require.Error(t, err)
	var calcErr *qcerrors.CalcError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, qcerrors.ErrorCategoryValidation, calcErr.Category)
}

func TestRun_MismatchedBounds(t *testing.T) {
	m := NewMaxLIPOTR(func(x []float64) (float64, error) { return 0, nil })

	_, err := m.Run(context.Background(), []float64{0, 0}, []float64{1}, 10, 0)

	require.Error(t, err)
}

func TestRun_ObjectiveErrorAborts(t *testing.T) {
	boom := errors.New("scf blew up")
	calls := 0
	m := NewMaxLIPOTR(func(x []float64) (float64, error) {
		calls++
		if calls == 3 {
			return 0, boom
		}
		return x[0], nil
	}, WithSeed(1))

	_, err := m.Run(context.Background(), []float64{0}, []float64{1}, 20, 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls, "search must stop at the failing evaluation")
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMaxLIPOTR(func(x []float64) (float64, error) { return 0, nil })
	_, err := m.Run(ctx, []float64{0}, []float64{1}, 10, 0)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ZeroWidthBox(t *testing.T) {
	// lower == upper is a legal box holding one point; the search must
	// evaluate it once and return instead of redrawing it forever.
	calls := 0
	m := NewMaxLIPOTR(func(x []float64) (float64, error) {
		calls++
		return -x[0], nil
	})

	res, err := m.Run(context.Background(), []float64{1}, []float64{1}, 2, 0)

	require.NoError(t, err)
	assert.Equal(t, []float64{1}, res.X)
	assert.InDelta(t, -1.0, res.Value, 1e-12)
	assert.Equal(t, 1, calls)
}

func TestRun_ZeroWidthBoxMultiDim(t *testing.T) {
	m := NewMaxLIPOTR(func(x []float64) (float64, error) {
		return x[0] + x[1], nil
	})

	res, err := m.Run(context.Background(), []float64{2, 3}, []float64{2, 3}, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, res.X)
	assert.Equal(t, 1, m.Evaluations())
}

func TestRun_PartiallyDegenerateBox(t *testing.T) {
	// One pinned dimension, one open: the search proceeds in the open one.
	m := NewMaxLIPOTR(func(x []float64) (float64, error) {
		return -(x[1] - 2) * (x[1] - 2), nil
	}, WithSeed(9))

	res, err := m.Run(context.Background(), []float64{1, 0}, []float64{1, 5}, 100, 0)

	require.NoError(t, err)
	assert.Equal(t, 1.0, res.X[0])
	assert.InDelta(t, 2.0, res.X[1], 0.2)
}

func TestRun_BudgetOfOne(t *testing.T) {
	m := NewMaxLIPOTR(func(x []float64) (float64, error) {
		return -x[0], nil
	})

	res, err := m.Run(context.Background(), []float64{0}, []float64{4}, 1, 0)

	require.NoError(t, err)
	// Single evaluation lands on the box center.
	assert.Equal(t, []float64{2}, res.X)
	assert.Equal(t, 1, m.Evaluations())
}
