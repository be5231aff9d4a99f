package store

import (
	"context"
	"database/sql"
	"fmt"

	"farmeasy/apperr"
	"farmeasy/models"
)

const listingColumns = `l.id, l.farmer_id, l.buyer_id, l.crop_id, l.quantity, l.price, l.total_amount,
	l.status, l.quality, l.location, l.blockchain_hash, l.created_at, l.completed_at`

func scanListing(row interface{ Scan(...any) error }, extra ...any) (models.Listing, error) {
	var l models.Listing
	var buyer sql.NullInt64
	var created string
	var completed sql.NullString
	dest := append([]any{&l.ID, &l.FarmerID, &buyer, &l.CropID, &l.Quantity, &l.Price, &l.TotalAmount,
		&l.Status, &l.Quality, &l.Location, &l.BlockchainHash, &created, &completed}, extra...)
	if err := row.Scan(dest...); err != nil {
		return l, err
	}
	if buyer.Valid {
		l.BuyerID = &buyer.Int64
	}
	l.CreatedAt = parseTime(created)
	if completed.Valid {
		t := parseTime(completed.String)
		l.CompletedAt = &t
	}
	return l, nil
}

// CreateListing inserts a pending listing and fills ID, TotalAmount, Status
// and CreatedAt.
func (s *Store) CreateListing(ctx context.Context, l *models.Listing) error {
	l.TotalAmount = l.Quantity * l.Price
	l.Status = models.ListingPending
	l.CreatedAt = now()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO listings (farmer_id, crop_id, quantity, price, total_amount, status, quality, location, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.FarmerID, l.CropID, l.Quantity, l.Price, l.TotalAmount, l.Status, l.Quality, l.Location, formatTime(l.CreatedAt))
	if err != nil {
		return mapErr("create listing", "listing", nil, err)
	}
	l.ID, err = res.LastInsertId()
	return mapErr("create listing", "listing", nil, err)
}

func (s *Store) ListingByID(ctx context.Context, id int64) (models.Listing, error) {
	l, err := scanListing(s.q.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = ?`, id))
	return l, mapErr("get listing", "product", id, err)
}

// CompleteListing moves a pending listing to completed for buyerID. It is
// a compare-and-set on status: if another buyer got there first it returns
// a ConflictError.
func (s *Store) CompleteListing(ctx context.Context, id, buyerID int64) (models.Listing, error) {
	res, err := s.q.ExecContext(ctx,
		`UPDATE listings SET status = ?, buyer_id = ?, completed_at = ? WHERE id = ? AND status = ?`,
		models.ListingCompleted, buyerID, formatTime(now()), id, models.ListingPending)
	if err != nil {
		return models.Listing{}, mapErr("complete listing", "product", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Listing{}, mapErr("complete listing", "product", id, err)
	}
	if n == 0 {
		return models.Listing{}, apperr.Conflict("product not available", nil)
	}
	return s.ListingByID(ctx, id)
}

// SetListingHash records the ledger block hash for a completed listing.
func (s *Store) SetListingHash(ctx context.Context, id int64, hash string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE listings SET blockchain_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return mapErr("set listing hash", "product", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}

// Products lists pending listings without a buyer, newest first.
func (s *Store) Products(ctx context.Context) ([]models.Product, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT l.id, c.name, u.username, u.id, l.quantity, l.price, l.quality, l.location, l.created_at
		FROM listings l
		JOIN crops c ON c.id = l.crop_id
		JOIN users u ON u.id = l.farmer_id
		WHERE l.status = ? AND l.buyer_id IS NULL
		ORDER BY l.id DESC`, models.ListingPending)
	if err != nil {
		return nil, mapErr("list products", "product", nil, err)
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		var p models.Product
		var created string
		if err := rows.Scan(&p.ID, &p.CropName, &p.FarmerName, &p.FarmerID, &p.Quantity, &p.Price,
			&p.Quality, &p.Location, &created); err != nil {
			return nil, mapErr("list products", "product", nil, err)
		}
		p.TotalAmount = p.Quantity * p.Price
		p.CreatedAt = parseTime(created)
		p.HarvestDate = p.CreatedAt.Format("2006-01-02")
		out = append(out, p)
	}
	return out, mapErr("list products", "product", nil, rows.Err())
}

// Orders returns the user's purchases and sales, newest first.
func (s *Store) Orders(ctx context.Context, userID int64) (purchases, sales []models.Order, err error) {
	if purchases, err = s.orders(ctx, "purchase", `l.buyer_id = ?`, `l.farmer_id`, userID); err != nil {
		return nil, nil, err
	}
	if sales, err = s.orders(ctx, "sale", `l.farmer_id = ?`, `l.buyer_id`, userID); err != nil {
		return nil, nil, err
	}
	return purchases, sales, nil
}

// orders joins listings matching where with their crop and the
// counterparty found through counterpartyCol.
func (s *Store) orders(ctx context.Context, kind, where, counterpartyCol string, userID int64) ([]models.Order, error) {
	q := fmt.Sprintf(`
		SELECT %s,
		       c.id, c.name, c.season, c.min_temp, c.max_temp, c.min_rainfall, c.max_rainfall,
		       c.soil_type, c.expected_yield, c.market_price, c.created_at,
		       u.id, u.username, u.email, u.phone, u.created_at
		FROM listings l
		JOIN crops c ON c.id = l.crop_id
		LEFT JOIN users u ON u.id = %s
		WHERE %s
		ORDER BY l.id DESC`, listingColumns, counterpartyCol, where)
	rows, err := s.q.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, mapErr("list orders", "order", nil, err)
	}
	defer rows.Close()

	out := []models.Order{}
	for rows.Next() {
		var o models.Order
		var cCreated string
		var uID sql.NullInt64
		var uName, uEmail, uPhone, uCreated sql.NullString
		c := &o.Crop
		l, err := scanListing(rows,
			&c.ID, &c.Name, &c.Season, &c.MinTemp, &c.MaxTemp, &c.MinRainfall, &c.MaxRainfall,
			&c.SoilType, &c.ExpectedYield, &c.MarketPrice, &cCreated,
			&uID, &uName, &uEmail, &uPhone, &uCreated)
		if err != nil {
			return nil, mapErr("list orders", "order", nil, err)
		}
		o.Type = kind
		o.Transaction = l
		c.CreatedAt = parseTime(cCreated)
		if uID.Valid {
			u := &models.User{
				ID:        uID.Int64,
				Username:  uName.String,
				Email:     uEmail.String,
				Phone:     uPhone.String,
				CreatedAt: parseTime(uCreated.String),
			}
			if kind == "purchase" {
				o.Farmer = u
			} else {
				o.Buyer = u
			}
		}
		out = append(out, o)
	}
	return out, mapErr("list orders", "order", nil, rows.Err())
}
