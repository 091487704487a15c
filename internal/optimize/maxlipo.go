// Package optimize implements a derivative-free global maximizer in the
// MaxLIPO+TR family: Lipschitz upper-bound driven exploration alternating
// with trust-region refinement around the incumbent, under a hard budget of
// objective evaluations.
package optimize

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	qcerrors "github.com/chemtools/qcflow/internal/errors"
	"github.com/chemtools/qcflow/internal/logger"
	"github.com/chemtools/qcflow/internal/memo"
)

// Objective is a black-box function to maximize. Only input/output pairs are
// observable; an error aborts the search immediately.
type Objective func(x []float64) (float64, error)

// Result is the best observation of a search.
type Result struct {
	X     []float64
	Value float64
}

// candidate pool size per exploration step, scaled by dimensionality.
const candidatesPerDim = 64

// MaxLIPOTR is a budgeted global maximizer over a bounded box. Objective
// evaluations are memoized by the exact argument tuple for the lifetime of
// the instance; cache hits never consume budget. With the default (or any
// fixed) seed the sampled sequence, and hence the returned optimum, is
// reproducible.
type MaxLIPOTR struct {
	objective Objective
	cache     *memo.Cache[string, float64]
	rng       *rand.Rand
	evals     int
}

// Option configures a MaxLIPOTR.
type Option func(*MaxLIPOTR)

// WithSeed pins the pseudo-random sequence used for sampling.
func WithSeed(seed int64) Option {
	return func(m *MaxLIPOTR) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// NewMaxLIPOTR creates a maximizer for the given objective.
func NewMaxLIPOTR(objective Objective, opts ...Option) *MaxLIPOTR {
	m := &MaxLIPOTR{
		objective: objective,
		cache:     memo.New[string, float64](),
		rng:       rand.New(rand.NewSource(0)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Evaluations returns the number of underlying objective calls performed so
// far (cache hits excluded).
func (m *MaxLIPOTR) Evaluations() int {
	return m.evals
}

// RunScalar is Run for a one-dimensional search.
func (m *MaxLIPOTR) RunScalar(ctx context.Context, lower, upper float64, budget int, epsilon float64) (float64, float64, error) {
	res, err := m.Run(ctx, []float64{lower}, []float64{upper}, budget, epsilon)
	if err != nil {
		return 0, 0, err
	}
	return res.X[0], res.Value, nil
}

// Run searches the box [lower, upper] using exactly budget objective
// evaluations and returns the best observation. epsilon is the solver
// tolerance: improvements smaller than epsilon do not count as progress for
// trust-region control (zero means every improvement counts).
func (m *MaxLIPOTR) Run(ctx context.Context, lower, upper []float64, budget int, epsilon float64) (Result, error) {
	if err := checkBounds(lower, upper); err != nil {
		return Result{}, err
	}
	if budget < 1 {
		return Result{}, fmt.Errorf("evaluation budget must be at least 1, got %d", budget)
	}

	dim := len(lower)
	var xs [][]float64
	var ys []float64
	seen := make(map[string]bool)
	spent := 0

	best := Result{Value: math.Inf(-1)}

	// Trust-region radius per dimension, shrunk on stalls.
	radius := make([]float64, dim)
	for i := range radius {
		radius[i] = (upper[i] - lower[i]) / 4
	}

	record := func(x []float64, y float64) {
		xs = append(xs, x)
		ys = append(ys, y)
		if y > best.Value {
			best = Result{X: x, Value: y}
		}
	}

	// sample charges the budget only for fresh objective calls; cache hits
	// (from earlier runs of this instance) are free observations.
	sample := func(x []float64) (float64, bool, error) {
		key := memo.FloatKey(x)
		if seen[key] {
			return 0, false, nil
		}
		y, consumed, err := m.evaluate(ctx, x)
		if err != nil {
			return 0, false, err
		}
		seen[key] = true
		if consumed {
			spent++
		}
		record(x, y)
		return y, true, nil
	}

	// First sample at the box center: cheap, deterministic, and a decent
	// Lipschitz anchor.
	center := make([]float64, dim)
	for i := range center {
		center[i] = (lower[i] + upper[i]) / 2
	}
	if _, _, err := sample(center); err != nil {
		return Result{}, err
	}

	// A zero-width box in every dimension holds exactly one point; the
	// center sample is the whole search.
	if pointBox(lower, upper) {
		return best, nil
	}

	// Consecutive rounds where both draws landed on already-seen points.
	// When this persists the box is exhausted at float resolution and the
	// remaining budget is unspendable.
	stale := 0
	const maxStale = 64

	for spent < budget {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		var x []float64
		if spent%2 == 1 && best.X != nil {
			x = m.exploit(best.X, radius, lower, upper)
		} else {
			x = m.explore(xs, ys, lower, upper)
		}

		prevBest := best.Value
		y, fresh, err := sample(x)
		if err != nil {
			return Result{}, err
		}
		if !fresh {
			// Already observed this run; draw a fresh uniform point instead
			// so the search cannot stall on a collapsed trust region.
			x = m.uniform(lower, upper)
			y, fresh, err = sample(x)
			if err != nil {
				return Result{}, err
			}
			if !fresh {
				stale++
				if stale >= maxStale {
					break
				}
				continue
			}
		}
		stale = 0

		improved := y > prevBest+epsilon

		// Shrink the trust region on a stalled refinement, reopen it on
		// progress.
		if improved {
			for i := range radius {
				radius[i] = math.Min(radius[i]*2, (upper[i]-lower[i])/4)
			}
		} else {
			for i := range radius {
				radius[i] = math.Max(radius[i]/2, 1e-12*(upper[i]-lower[i]))
			}
		}
	}

	logger.Op.WithFields(map[string]interface{}{
		"evaluations": m.evals,
		"best":        best.Value,
	}).Debug("Global search finished")

	return best, nil
}

// evaluate returns the objective at x, consulting the cache first. The
// boolean reports whether an underlying evaluation was spent.
func (m *MaxLIPOTR) evaluate(ctx context.Context, x []float64) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	key := memo.FloatKey(x)
	y, hit, err := m.cache.GetOrCompute(key, func() (float64, error) {
		return m.objective(x)
	})
	if err != nil {
		return 0, false, err
	}
	if hit {
		return y, false, nil
	}
	m.evals++
	return y, true, nil
}

// explore picks, from a random candidate pool, the point whose Lipschitz
// upper bound over the sampled set is highest.
func (m *MaxLIPOTR) explore(xs [][]float64, ys []float64, lower, upper []float64) []float64 {
	if len(xs) < 2 {
		return m.uniform(lower, upper)
	}

	lip := estimateLipschitz(xs, ys)

	bestBound := math.Inf(-1)
	var bestX []float64
	n := candidatesPerDim * len(lower)
	for c := 0; c < n; c++ {
		x := m.uniform(lower, upper)
		bound := upperBound(x, xs, ys, lip)
		if bound > bestBound {
			bestBound = bound
			bestX = x
		}
	}
	return bestX
}

// exploit samples uniformly inside the trust region around the incumbent,
// clamped to the box.
func (m *MaxLIPOTR) exploit(center, radius, lower, upper []float64) []float64 {
	x := make([]float64, len(center))
	for i := range x {
		v := center[i] + (2*m.rng.Float64()-1)*radius[i]
		x[i] = math.Min(math.Max(v, lower[i]), upper[i])
	}
	return x
}

func (m *MaxLIPOTR) uniform(lower, upper []float64) []float64 {
	x := make([]float64, len(lower))
	for i := range x {
		x[i] = lower[i] + m.rng.Float64()*(upper[i]-lower[i])
	}
	return x
}

// estimateLipschitz returns the largest observed slope between sample pairs.
func estimateLipschitz(xs [][]float64, ys []float64) float64 {
	lip := 0.0
	for i := range xs {
		for j := i + 1; j < len(xs); j++ {
			d := floats.Distance(xs[i], xs[j], 2)
			if d == 0 {
				continue
			}
			slope := math.Abs(ys[i]-ys[j]) / d
			if slope > lip {
				lip = slope
			}
		}
	}
	if lip == 0 {
		lip = 1
	}
	return lip
}

// upperBound is the MaxLIPO bound: the tightest Lipschitz cone over all
// samples.
func upperBound(x []float64, xs [][]float64, ys []float64, lip float64) float64 {
	bound := math.Inf(1)
	for i := range xs {
		b := ys[i] + lip*floats.Distance(x, xs[i], 2)
		if b < bound {
			bound = b
		}
	}
	return bound
}

// pointBox reports whether every dimension has zero width.
func pointBox(lower, upper []float64) bool {
	for i := range lower {
		if upper[i] > lower[i] {
			return false
		}
	}
	return true
}

func checkBounds(lower, upper []float64) error {
	if len(lower) == 0 || len(lower) != len(upper) {
		return fmt.Errorf("bounds must be non-empty and of equal length, got %d and %d", len(lower), len(upper))
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return qcerrors.NewBoundsError(i, lower[i], upper[i])
		}
	}
	return nil
}
