package predictor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalerFitAndTransform(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 2}, {3, 2}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Std, "constant column gets unit std")

	x, err := s.Transform([]float64{3, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, x)

	_, err = s.Transform([]float64{1})
	assert.Error(t, err)
}

func TestScalerRejectsRaggedRows(t *testing.T) {
	_, err := FitScaler([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
	_, err = FitScaler(nil)
	assert.Error(t, err)
}

func TestLabelEncoder(t *testing.T) {
	e := FitLabelEncoder([]string{"wheat", "rice", "wheat", "cotton"})
	assert.Equal(t, []string{"cotton", "rice", "wheat"}, e.Classes)

	i, err := e.Encode("rice")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, []float64{0, 1, 0}, e.OneHot(i))

	_, err = e.Encode("barley")
	assert.Error(t, err)
}

func TestRidgeRecoversLine(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 10; i++ {
		x = append(x, []float64{float64(i)})
		y = append(y, 2*float64(i)+1)
	}
	r, err := FitRidge(x, y, 1e-9)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, r.Coef[0], 1e-6)
	assert.InDelta(t, 1.0, r.Intercept, 1e-6)

	got, err := r.Predict([]float64{20})
	require.NoError(t, err)
	assert.InDelta(t, 41.0, got, 1e-4)
}

func TestRidgeHandlesCollinearOneHot(t *testing.T) {
	// One-hot columns sum to the intercept column; the penalty keeps the
	// system solvable.
	x := [][]float64{{1, 0}, {0, 1}, {1, 0}, {0, 1}}
	y := []float64{10, 20, 10, 20}
	r, err := FitRidge(x, y, 0.01)
	require.NoError(t, err)

	a, _ := r.Predict([]float64{1, 0})
	b, _ := r.Predict([]float64{0, 1})
	assert.InDelta(t, 10, a, 0.1)
	assert.InDelta(t, 20, b, 0.1)
}

func TestRidgeInputErrors(t *testing.T) {
	_, err := FitRidge(nil, nil, 1)
	assert.Error(t, err)
	_, err = FitRidge([][]float64{{1}}, []float64{1}, 0)
	assert.Error(t, err)

	r := Ridge{Coef: []float64{1, 2}}
	_, err = r.Predict([]float64{1})
	assert.Error(t, err)
}

func TestGaussianNBSeparatesClasses(t *testing.T) {
	rows := [][]float64{{0, 0}, {0.2, -0.1}, {-0.1, 0.1}, {5, 5}, {5.1, 4.9}, {4.8, 5.2}}
	labels := []int{0, 0, 0, 1, 1, 1}
	nb, err := FitGaussianNB(rows, labels, 2)
	require.NoError(t, err)

	p := nb.Proba([]float64{0.05, 0})
	assert.InDelta(t, 1.0, p[0]+p[1], 1e-9)
	assert.Greater(t, p[0], 0.99)

	p = nb.Proba([]float64{5, 5})
	assert.Greater(t, p[1], 0.99)
}

func TestGaussianNBStaysNormalisedFarFromData(t *testing.T) {
	rows := [][]float64{{0, 0}, {0.2, -0.1}, {-0.1, 0.1}, {5, 5}, {5.1, 4.9}, {4.8, 5.2}}
	labels := []int{0, 0, 0, 1, 1, 1}
	nb, err := FitGaussianNB(rows, labels, 2)
	require.NoError(t, err)

	for _, x := range [][]float64{{1e200, 0}, {math.Inf(1), 0}, {math.NaN(), 1}} {
		p := nb.Proba(x)
		require.Len(t, p, 2)
		for _, v := range p {
			assert.False(t, math.IsNaN(v), "%v", x)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		assert.InDelta(t, 1.0, p[0]+p[1], 1e-9, "%v", x)
	}
}

func TestDegenerateGivesInfiniteClassAllMass(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 0}, degenerate([]float64{math.Inf(-1), math.Inf(1), math.NaN()}))
	assert.Equal(t, []float64{0.5, 0.5}, degenerate([]float64{math.Inf(-1), math.Inf(-1)}))
}

func TestGaussianNBRequiresEveryClass(t *testing.T) {
	_, err := FitGaussianNB([][]float64{{1}}, []int{0}, 2)
	assert.Error(t, err)
}
