package acor

import "math"

// rankWeights computes the guide-selection probabilities: a Gaussian kernel
// over rank with mean 1 and standard deviation q*k, normalized to sum to
// one. Ranks are stable quality tiers, so the vector depends only on k and q
// and is computed once per run.
func rankWeights(k int, q float64) []float64 {
	weights := make([]float64, k)
	sigma := q * float64(k)
	var total float64
	for i := range weights {
		weights[i] = normalPDF(float64(i+1), 1, sigma)
		total += weights[i]
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// normalPDF evaluates the Gaussian density with the given mean and standard
// deviation at x.
func normalPDF(x, mean, sigma float64) float64 {
	d := (x - mean) / sigma
	return math.Exp(-d*d/2) / (sigma * math.Sqrt(2*math.Pi))
}

// rouletteSelect returns the first index at which the running weight total
// reaches r. Floating-point drift can leave r marginally positive after the
// full walk; the last index is returned in that case so selection always
// terminates.
func rouletteSelect(r float64, weights []float64) int {
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	return len(weights) - 1
}

// spread is the sampling standard deviation for one variable: the mean
// absolute deviation of the archive's values from the guide's value, scaled
// by xi. It depends on current archive contents and is recomputed for every
// ant and variable.
func (o *optimizer) spread(guide, variable int) float64 {
	var total float64
	center := o.archive[guide].Position[variable]
	for i := range o.archive {
		total += math.Abs(o.archive[i].Position[variable] - center)
	}
	return o.cfg.Xi * total / float64(o.cfg.ArchiveSize-1)
}

// sampleAnt draws one candidate around a freshly selected guide and
// evaluates it. Bounded variables are clamped to their range with a hard
// border; unbounded variables may leave their initial range.
func (o *optimizer) sampleAnt(iteration int) (Solution, error) {
	guide := rouletteSelect(o.rng.Float64()*sum(o.weights), o.weights)
	position := make([]float64, len(o.cfg.Variables))
	for j, v := range o.cfg.Variables {
		mean := o.archive[guide].Position[j]
		position[j] = v.Clamp(o.rng.NormFloat64()*o.spread(guide, j) + mean)
	}
	cost, err := o.evaluate(position, Iteration(iteration))
	if err != nil {
		return Solution{}, err
	}
	return Solution{Position: position, Cost: cost}, nil
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}
