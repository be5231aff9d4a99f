package predictor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// varSmoothing is added to every variance, scaled by the largest one.
const varSmoothing = 1e-9

// GaussianNB is a Gaussian naive Bayes classifier over dense class indices.
type GaussianNB struct {
	LogPriors []float64   `msgpack:"log_priors"`
	Means     [][]float64 `msgpack:"means"`
	Vars      [][]float64 `msgpack:"vars"`
}

// FitGaussianNB fits one Gaussian per class and feature. Every class in
// [0, classes) must have at least one row.
func FitGaussianNB(rows [][]float64, labels []int, classes int) (GaussianNB, error) {
	if len(rows) == 0 || len(rows) != len(labels) {
		return GaussianNB{}, fmt.Errorf("fit classifier: %d rows, %d labels", len(rows), len(labels))
	}
	width := len(rows[0])
	groups := make([][][]float64, classes)
	for i, r := range rows {
		groups[labels[i]] = append(groups[labels[i]], r)
	}

	nb := GaussianNB{
		LogPriors: make([]float64, classes),
		Means:     make([][]float64, classes),
		Vars:      make([][]float64, classes),
	}
	maxVar := 0.0
	col := make([]float64, 0, len(rows))
	for c, g := range groups {
		if len(g) == 0 {
			return GaussianNB{}, fmt.Errorf("fit classifier: class %d has no samples", c)
		}
		nb.LogPriors[c] = math.Log(float64(len(g)) / float64(len(rows)))
		nb.Means[c] = make([]float64, width)
		nb.Vars[c] = make([]float64, width)
		for j := 0; j < width; j++ {
			col = col[:0]
			for _, r := range g {
				col = append(col, r[j])
			}
			mean, std := stat.PopMeanStdDev(col, nil)
			nb.Means[c][j] = mean
			nb.Vars[c][j] = std * std
			maxVar = math.Max(maxVar, std*std)
		}
	}

	eps := varSmoothing * math.Max(maxVar, 1)
	for c := range nb.Vars {
		floats.AddConst(eps, nb.Vars[c])
	}
	return nb, nil
}

// Proba returns the posterior probability of every class for x.
func (nb GaussianNB) Proba(x []float64) []float64 {
	jll := make([]float64, len(nb.LogPriors))
	for c := range jll {
		ll := nb.LogPriors[c]
		for j, v := range x {
			d := v - nb.Means[c][j]
			ll -= 0.5 * (math.Log(2*math.Pi*nb.Vars[c][j]) + d*d/nb.Vars[c][j])
		}
		jll[c] = ll
	}
	norm := floats.LogSumExp(jll)
	if math.IsInf(norm, 0) || math.IsNaN(norm) {
		return degenerate(jll)
	}
	for c := range jll {
		jll[c] = math.Exp(jll[c] - norm)
	}
	return jll
}

// degenerate handles log-likelihoods that cannot be normalised: a +Inf
// class takes all the mass, otherwise every class is equally likely.
func degenerate(jll []float64) []float64 {
	out := make([]float64, len(jll))
	for c, v := range jll {
		if math.IsInf(v, 1) {
			out[c] = 1
			return out
		}
	}
	for c := range out {
		out[c] = 1 / float64(len(out))
	}
	return out
}
