package store

import (
	"context"
	"database/sql"

	"farmeasy/catalog"
	"farmeasy/models"
)

// SeedSubsidies upserts one row per catalog scheme. Crop-specific schemes
// are linked to their crop row, which is created from the catalog profile
// if needed.
func (s *Store) SeedSubsidies(ctx context.Context, c *catalog.Catalog) error {
	return s.WithTx(ctx, func(tx *Store) error {
		for _, sc := range c.Schemes() {
			var cropID sql.NullInt64
			if sc.Crop != "" {
				crop, err := tx.GetOrCreateCrop(ctx, CropFromProfile(c, sc.Crop))
				if err != nil {
					return err
				}
				cropID = sql.NullInt64{Int64: crop.ID, Valid: true}
			}
			_, err := tx.q.ExecContext(ctx, `
				INSERT INTO subsidies (crop_id, scheme_name, amount, eligibility, region, is_active, created_at)
				VALUES (?, ?, ?, ?, ?, 1, ?)
				ON CONFLICT(scheme_name) DO UPDATE SET
					crop_id = excluded.crop_id,
					amount = excluded.amount,
					eligibility = excluded.eligibility,
					region = excluded.region`,
				cropID, sc.Name, sc.Amount, sc.Eligibility, sc.Region, formatTime(now()))
			if err != nil {
				return mapErr("seed subsidies", "subsidy", sc.Name, err)
			}
		}
		return nil
	})
}

// ActiveSubsidies lists active schemes. When cropID is non-zero only
// schemes for that crop and crop-independent schemes are returned.
func (s *Store) ActiveSubsidies(ctx context.Context, cropID int64) ([]models.Subsidy, error) {
	q := `SELECT id, crop_id, scheme_name, amount, eligibility, region, is_active, created_at
	      FROM subsidies WHERE is_active = 1`
	var args []any
	if cropID != 0 {
		q += ` AND (crop_id = ? OR crop_id IS NULL)`
		args = append(args, cropID)
	}
	q += ` ORDER BY scheme_name`

	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr("list subsidies", "subsidy", nil, err)
	}
	defer rows.Close()
	out := []models.Subsidy{}
	for rows.Next() {
		var sub models.Subsidy
		var crop sql.NullInt64
		var created string
		if err := rows.Scan(&sub.ID, &crop, &sub.SchemeName, &sub.Amount, &sub.Eligibility, &sub.Region,
			&sub.IsActive, &created); err != nil {
			return nil, mapErr("list subsidies", "subsidy", nil, err)
		}
		if crop.Valid {
			sub.CropID = &crop.Int64
		}
		sub.CreatedAt = parseTime(created)
		out = append(out, sub)
	}
	return out, mapErr("list subsidies", "subsidy", nil, rows.Err())
}

// CropFromProfile builds the crop row for name from the catalog. Unknown
// crops get the default season and no agronomic ranges.
func CropFromProfile(c *catalog.Catalog, name string) models.Crop {
	name = catalog.Normalize(name)
	crop := models.Crop{Name: name, Season: c.SeasonFor(name)}
	p, ok := c.Lookup(name)
	if !ok {
		return crop
	}
	m, sp := p.Climate.Mean, p.Climate.Spread
	crop.MinTemp, crop.MaxTemp = m.Temperature-2*sp.Temperature, m.Temperature+2*sp.Temperature
	crop.MinRainfall, crop.MaxRainfall = max(0, m.Rainfall-2*sp.Rainfall), m.Rainfall+2*sp.Rainfall
	crop.SoilType = soilTypeFor(m.PH)
	crop.ExpectedYield = p.AvgYieldPerHectare
	crop.MarketPrice = p.BasePricePerKg
	return crop
}

func soilTypeFor(ph float64) string {
	switch {
	case ph < 6.5:
		return "Slightly acidic loam"
	case ph <= 7.2:
		return "Neutral loam"
	default:
		return "Alkaline clay loam"
	}
}
