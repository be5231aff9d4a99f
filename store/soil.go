package store

import (
	"context"

	"farmeasy/models"
)

// CreateSoilTest persists a sample for userID.
func (s *Store) CreateSoilTest(ctx context.Context, userID int64, sample models.SoilSample) (models.SoilTest, error) {
	t := models.SoilTest{UserID: userID, SoilSample: sample, CreatedAt: now()}
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO soil_tests
			(user_id, nitrogen, phosphorus, potassium, ph_level, organic_carbon, temperature, humidity, rainfall, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, sample.Nitrogen, sample.Phosphorus, sample.Potassium, sample.PH, sample.OrganicCarbon,
		sample.Temperature, sample.Humidity, sample.Rainfall, formatTime(t.CreatedAt))
	if err != nil {
		return t, mapErr("create soil test", "soil test", nil, err)
	}
	t.ID, err = res.LastInsertId()
	return t, mapErr("create soil test", "soil test", nil, err)
}

func (s *Store) SoilTestByID(ctx context.Context, id int64) (models.SoilTest, error) {
	var t models.SoilTest
	var created string
	err := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, nitrogen, phosphorus, potassium, ph_level, organic_carbon, temperature, humidity, rainfall, created_at
		 FROM soil_tests WHERE id = ?`, id).
		Scan(&t.ID, &t.UserID, &t.Nitrogen, &t.Phosphorus, &t.Potassium, &t.PH, &t.OrganicCarbon,
			&t.Temperature, &t.Humidity, &t.Rainfall, &created)
	t.CreatedAt = parseTime(created)
	return t, mapErr("get soil test", "soil test", id, err)
}
