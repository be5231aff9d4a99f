package predictor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Ridge is an L2-regularised linear regressor. The intercept is not
// penalised.
type Ridge struct {
	Intercept float64   `msgpack:"intercept"`
	Coef      []float64 `msgpack:"coef"`
}

// FitRidge solves (XᵀX + λD)w = Xᵀy, where X carries a leading column of
// ones and D is the identity with a zero for that column.
func FitRidge(rows [][]float64, y []float64, lambda float64) (Ridge, error) {
	n := len(rows)
	if n == 0 || n != len(y) {
		return Ridge{}, fmt.Errorf("fit ridge: %d rows, %d targets", n, len(y))
	}
	if lambda <= 0 {
		return Ridge{}, fmt.Errorf("fit ridge: lambda must be positive")
	}
	p := len(rows[0]) + 1

	x := mat.NewDense(n, p, nil)
	for i, r := range rows {
		if len(r)+1 != p {
			return Ridge{}, fmt.Errorf("fit ridge: row %d has %d columns, want %d", i, len(r), p-1)
		}
		x.Set(i, 0, 1)
		for j, v := range r {
			x.Set(i, j+1, v)
		}
	}

	var gram mat.SymDense
	gram.SymOuterK(1, x.T())
	for j := 1; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+lambda)
	}

	var rhs mat.VecDense
	rhs.MulVec(x.T(), mat.NewVecDense(n, y))

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return Ridge{}, fmt.Errorf("fit ridge: normal equations are not positive definite")
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil {
		return Ridge{}, fmt.Errorf("fit ridge: %w", err)
	}

	coef := make([]float64, p-1)
	for j := range coef {
		coef[j] = w.AtVec(j + 1)
	}
	return Ridge{Intercept: w.AtVec(0), Coef: coef}, nil
}

func (r Ridge) Predict(x []float64) (float64, error) {
	if len(x) != len(r.Coef) {
		return 0, fmt.Errorf("regressor expects %d inputs, got %d", len(r.Coef), len(x))
	}
	return r.Intercept + floats.Dot(r.Coef, x), nil
}
