package models

import "time"

// Crop is the stored form of a crop profile, referenced by recommendations
// and marketplace listings.
type Crop struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Season        string    `json:"season"`
	MinTemp       float64   `json:"min_temp"`
	MaxTemp       float64   `json:"max_temp"`
	MinRainfall   float64   `json:"min_rainfall"`
	MaxRainfall   float64   `json:"max_rainfall"`
	SoilType      string    `json:"soil_type"`
	ExpectedYield float64   `json:"expected_yield"`
	MarketPrice   float64   `json:"market_price"`
	CreatedAt     time.Time `json:"created_at"`
}

// Recommendation records that a crop was suggested for a soil test.
// Rows are never updated.
type Recommendation struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	SoilTestID int64     `json:"soil_test_id"`
	CropID     int64     `json:"recommended_crop_id"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecommendationHistory joins a recommendation with its crop and soil test.
type RecommendationHistory struct {
	ID                   int64     `json:"id"`
	Crop                 Crop      `json:"crop"`
	Confidence           float64   `json:"confidence"`
	ConfidencePercentage float64   `json:"confidence_percentage"`
	SoilTest             SoilTest  `json:"soil_test"`
	CreatedAt            time.Time `json:"created_at"`
}
