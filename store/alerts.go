package store

import (
	"context"

	"farmeasy/apperr"
	"farmeasy/models"
)

func (s *Store) CreateAlert(ctx context.Context, a *models.Alert) error {
	a.CreatedAt = now()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO alerts (user_id, message, alert_type, severity, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Message, a.AlertType, a.Severity, a.IsRead, formatTime(a.CreatedAt))
	if err != nil {
		return mapErr("create alert", "alert", nil, err)
	}
	a.ID, err = res.LastInsertId()
	return mapErr("create alert", "alert", nil, err)
}

// AlertFilter narrows AlertsForUser. Zero values match everything.
type AlertFilter struct {
	UnreadOnly bool
	Type       models.AlertType
	Severity   models.Severity
	Limit      int
}

// AlertsForUser returns the user's alerts, newest first.
func (s *Store) AlertsForUser(ctx context.Context, userID int64, f AlertFilter) ([]models.Alert, error) {
	q := `SELECT id, user_id, message, alert_type, severity, is_read, created_at FROM alerts WHERE user_id = ?`
	args := []any{userID}
	if f.UnreadOnly {
		q += ` AND is_read = 0`
	}
	if f.Type != "" {
		q += ` AND alert_type = ?`
		args = append(args, f.Type)
	}
	if f.Severity != "" {
		q += ` AND severity = ?`
		args = append(args, f.Severity)
	}
	q += ` ORDER BY id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr("list alerts", "alert", nil, err)
	}
	defer rows.Close()
	out := []models.Alert{}
	for rows.Next() {
		var a models.Alert
		var created string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Message, &a.AlertType, &a.Severity, &a.IsRead, &created); err != nil {
			return nil, mapErr("list alerts", "alert", nil, err)
		}
		a.CreatedAt = parseTime(created)
		out = append(out, a)
	}
	return out, mapErr("list alerts", "alert", nil, rows.Err())
}

// MarkAlertsRead flags the given alerts of userID as read.
func (s *Store) MarkAlertsRead(ctx context.Context, userID int64, ids ...int64) error {
	for _, id := range ids {
		res, err := s.q.ExecContext(ctx, `UPDATE alerts SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return mapErr("mark alert read", "alert", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("alert", id)
		}
	}
	return nil
}
