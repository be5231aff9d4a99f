package store

import (
	"context"
	"errors"

	"farmeasy/apperr"
	"farmeasy/models"
)

const cropColumns = `id, name, season, min_temp, max_temp, min_rainfall, max_rainfall, soil_type, expected_yield, market_price, created_at`

func scanCrop(row interface{ Scan(...any) error }) (models.Crop, error) {
	var c models.Crop
	var created string
	err := row.Scan(&c.ID, &c.Name, &c.Season, &c.MinTemp, &c.MaxTemp, &c.MinRainfall, &c.MaxRainfall,
		&c.SoilType, &c.ExpectedYield, &c.MarketPrice, &created)
	c.CreatedAt = parseTime(created)
	return c, err
}

func (s *Store) CropByID(ctx context.Context, id int64) (models.Crop, error) {
	c, err := scanCrop(s.q.QueryRowContext(ctx, `SELECT `+cropColumns+` FROM crops WHERE id = ?`, id))
	return c, mapErr("get crop", "crop", id, err)
}

func (s *Store) CropByName(ctx context.Context, name string) (models.Crop, error) {
	c, err := scanCrop(s.q.QueryRowContext(ctx, `SELECT `+cropColumns+` FROM crops WHERE name = ?`, name))
	return c, mapErr("get crop", "crop", name, err)
}

func (s *Store) ListCrops(ctx context.Context) ([]models.Crop, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+cropColumns+` FROM crops ORDER BY name`)
	if err != nil {
		return nil, mapErr("list crops", "crop", nil, err)
	}
	defer rows.Close()
	out := []models.Crop{}
	for rows.Next() {
		c, err := scanCrop(rows)
		if err != nil {
			return nil, mapErr("list crops", "crop", nil, err)
		}
		out = append(out, c)
	}
	return out, mapErr("list crops", "crop", nil, rows.Err())
}

// CreateCrop inserts c and fills its ID and CreatedAt.
func (s *Store) CreateCrop(ctx context.Context, c *models.Crop) error {
	c.CreatedAt = now()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO crops (name, season, min_temp, max_temp, min_rainfall, max_rainfall, soil_type, expected_yield, market_price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Season, c.MinTemp, c.MaxTemp, c.MinRainfall, c.MaxRainfall, c.SoilType, c.ExpectedYield, c.MarketPrice,
		formatTime(c.CreatedAt))
	if err != nil {
		return mapErr("create crop", "crop", c.Name, err)
	}
	c.ID, err = res.LastInsertId()
	return mapErr("create crop", "crop", c.Name, err)
}

// GetOrCreateCrop returns the crop row named proto.Name, inserting proto
// when missing. If a concurrent writer inserts the same name first, the
// row is reloaded once instead of failing.
func (s *Store) GetOrCreateCrop(ctx context.Context, proto models.Crop) (models.Crop, error) {
	c, err := s.CropByName(ctx, proto.Name)
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		return c, err
	}

	c = proto
	err = s.CreateCrop(ctx, &c)
	var conflict *apperr.ConflictError
	if errors.As(err, &conflict) {
		s.log.Debug().Str("crop", proto.Name).Msg("Crop created concurrently, reloading")
		return s.CropByName(ctx, proto.Name)
	}
	return c, err
}
