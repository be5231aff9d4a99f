package models

import "time"

// Feature count fed to the crop predictor.
const FeatureCount = 7

// SoilSample is one measured set of nutrient, pH and climate readings.
type SoilSample struct {
	Nitrogen      float64 `json:"nitrogen"`
	Phosphorus    float64 `json:"phosphorus"`
	Potassium     float64 `json:"potassium"`
	PH            float64 `json:"ph_level"`
	OrganicCarbon float64 `json:"organic_carbon"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Rainfall      float64 `json:"rainfall"`
}

// Features returns the predictor inputs in model order:
// N, P, K, temperature, humidity, ph, rainfall. Organic carbon is recorded
// but not a model input.
func (s SoilSample) Features() []float64 {
	return []float64{s.Nitrogen, s.Phosphorus, s.Potassium, s.Temperature, s.Humidity, s.PH, s.Rainfall}
}

// SoilTest is a persisted soil sample.
type SoilTest struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	SoilSample
	CreatedAt time.Time `json:"created_at"`
}
