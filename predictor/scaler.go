package predictor

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardises features to zero mean and unit variance using
// population statistics.
type Scaler struct {
	Mean []float64 `msgpack:"mean"`
	Std  []float64 `msgpack:"std"`
}

// FitScaler computes per-column statistics over rows.
func FitScaler(rows [][]float64) (Scaler, error) {
	if len(rows) == 0 {
		return Scaler{}, fmt.Errorf("fit scaler: no rows")
	}
	width := len(rows[0])
	s := Scaler{Mean: make([]float64, width), Std: make([]float64, width)}
	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, r := range rows {
			if len(r) != width {
				return Scaler{}, fmt.Errorf("fit scaler: row %d has %d columns, want %d", i, len(r), width)
			}
			col[i] = r[j]
		}
		s.Mean[j], s.Std[j] = stat.PopMeanStdDev(col, nil)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return s, nil
}

// Transform returns a scaled copy of x.
func (s Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}
