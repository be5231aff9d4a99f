// Package predictor ranks candidate crops for a soil sample and estimates
// their yield and price.
package predictor

import (
	"fmt"
	"sort"
	"time"

	"farmeasy/models"
)

// TopK is the maximum number of predictions returned.
const TopK = 3

// Prediction is one ranked crop candidate.
type Prediction struct {
	Crop       string  `json:"crop"`
	Confidence float64 `json:"confidence"`
	Yield      float64 `json:"predicted_yield_tons_per_hectare"`
	Price      float64 `json:"predicted_price_per_kg"`
}

// Metrics summarises the training run that produced a Model.
type Metrics struct {
	Accuracy    float64 `msgpack:"accuracy" json:"accuracy"`
	YieldRMSE   float64 `msgpack:"yield_rmse" json:"yield_rmse"`
	PriceRMSE   float64 `msgpack:"price_rmse" json:"price_rmse"`
	TrainRows   int     `msgpack:"train_rows" json:"train_rows"`
	HoldoutRows int     `msgpack:"holdout_rows" json:"holdout_rows"`
}

// Model is the complete fitted bundle. Its parts always come from the same
// training run and are persisted together.
type Model struct {
	Version   int          `msgpack:"version"`
	TrainedAt time.Time    `msgpack:"trained_at"`
	Scaler    Scaler       `msgpack:"scaler"`
	Encoder   LabelEncoder `msgpack:"encoder"`
	Classes   GaussianNB   `msgpack:"classifier"`
	Yield     Ridge        `msgpack:"yield"`
	Price     Ridge        `msgpack:"price"`
	Metrics   Metrics      `msgpack:"metrics"`
}

// BundleVersion is bumped whenever the bundle layout changes. Bundles with
// another version are treated as corrupt.
const BundleVersion = 1

func (m *Model) check() error {
	k := len(m.Encoder.Classes)
	switch {
	case m.Version != BundleVersion:
		return fmt.Errorf("bundle version %d, want %d", m.Version, BundleVersion)
	case k == 0:
		return fmt.Errorf("bundle has no classes")
	case len(m.Scaler.Mean) != models.FeatureCount || len(m.Scaler.Std) != models.FeatureCount:
		return fmt.Errorf("scaler width %d, want %d", len(m.Scaler.Mean), models.FeatureCount)
	case len(m.Classes.LogPriors) != k || len(m.Classes.Means) != k || len(m.Classes.Vars) != k:
		return fmt.Errorf("classifier covers %d classes, encoder %d", len(m.Classes.LogPriors), k)
	case len(m.Yield.Coef) != models.FeatureCount+k:
		return fmt.Errorf("yield regressor width %d, want %d", len(m.Yield.Coef), models.FeatureCount+k)
	case len(m.Price.Coef) != models.FeatureCount+k+1:
		return fmt.Errorf("price regressor width %d, want %d", len(m.Price.Coef), models.FeatureCount+k+1)
	}
	return nil
}

// Predict returns up to TopK crops by descending confidence. Ties keep the
// encoder's class order.
func (m *Model) Predict(s models.SoilSample) ([]Prediction, error) {
	x, err := m.Scaler.Transform(s.Features())
	if err != nil {
		return nil, err
	}
	proba := m.Classes.Proba(x)

	order := make([]int, len(proba))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return proba[order[a]] > proba[order[b]] })
	if len(order) > TopK {
		order = order[:TopK]
	}

	out := make([]Prediction, 0, len(order))
	for _, c := range order {
		yieldIn := append(append([]float64{}, x...), m.Encoder.OneHot(c)...)
		y, err := m.Yield.Predict(yieldIn)
		if err != nil {
			return nil, err
		}
		p, err := m.Price.Predict(append(yieldIn, y))
		if err != nil {
			return nil, err
		}
		out = append(out, Prediction{
			Crop:       m.Encoder.Classes[c],
			Confidence: proba[c],
			Yield:      y,
			Price:      p,
		})
	}
	return out, nil
}
