package store

import (
	"context"
	"math"

	"farmeasy/models"
)

// HistoryLimit caps RecommendationHistory.
const HistoryLimit = 10

func (s *Store) CreateRecommendation(ctx context.Context, r *models.Recommendation) error {
	r.CreatedAt = now()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO recommendations (user_id, soil_test_id, crop_id, confidence, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.SoilTestID, r.CropID, r.Confidence, formatTime(r.CreatedAt))
	if err != nil {
		return mapErr("create recommendation", "recommendation", nil, err)
	}
	r.ID, err = res.LastInsertId()
	return mapErr("create recommendation", "recommendation", nil, err)
}

// RecommendationHistory returns the user's latest recommendations, newest
// first, joined with their crop and soil test.
func (s *Store) RecommendationHistory(ctx context.Context, userID int64, limit int) ([]models.RecommendationHistory, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT r.id, r.confidence, r.created_at,
		       c.id, c.name, c.season, c.min_temp, c.max_temp, c.min_rainfall, c.max_rainfall,
		       c.soil_type, c.expected_yield, c.market_price, c.created_at,
		       t.id, t.user_id, t.nitrogen, t.phosphorus, t.potassium, t.ph_level, t.organic_carbon,
		       t.temperature, t.humidity, t.rainfall, t.created_at
		FROM recommendations r
		JOIN crops c ON c.id = r.crop_id
		JOIN soil_tests t ON t.id = r.soil_test_id
		WHERE r.user_id = ?
		ORDER BY r.id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, mapErr("recommendation history", "recommendation", nil, err)
	}
	defer rows.Close()

	out := []models.RecommendationHistory{}
	for rows.Next() {
		var h models.RecommendationHistory
		var rCreated, cCreated, tCreated string
		c, t := &h.Crop, &h.SoilTest
		if err := rows.Scan(&h.ID, &h.Confidence, &rCreated,
			&c.ID, &c.Name, &c.Season, &c.MinTemp, &c.MaxTemp, &c.MinRainfall, &c.MaxRainfall,
			&c.SoilType, &c.ExpectedYield, &c.MarketPrice, &cCreated,
			&t.ID, &t.UserID, &t.Nitrogen, &t.Phosphorus, &t.Potassium, &t.PH, &t.OrganicCarbon,
			&t.Temperature, &t.Humidity, &t.Rainfall, &tCreated); err != nil {
			return nil, mapErr("recommendation history", "recommendation", nil, err)
		}
		h.CreatedAt, c.CreatedAt, t.CreatedAt = parseTime(rCreated), parseTime(cCreated), parseTime(tCreated)
		h.ConfidencePercentage = math.Round(h.Confidence*100*100) / 100
		out = append(out, h)
	}
	return out, mapErr("recommendation history", "recommendation", nil, rows.Err())
}
