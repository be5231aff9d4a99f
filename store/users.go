package store

import (
	"context"

	"farmeasy/models"
)

const userColumns = `id, username, email, password_hash, phone, created_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	var created string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Phone, &created)
	u.CreatedAt = parseTime(created)
	return u, err
}

// CreateUser inserts u and fills its ID and CreatedAt. A taken username or
// email is a ConflictError.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = now()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, phone, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.Phone, formatTime(u.CreatedAt))
	if err != nil {
		return mapErr("create user", "user", u.Email, err)
	}
	u.ID, err = res.LastInsertId()
	return mapErr("create user", "user", u.Email, err)
}

func (s *Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, mapErr("get user", "user", id, err)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	return u, mapErr("get user", "user", email, err)
}

// UserExists reports whether the email or the username is taken.
func (s *Store) UserExists(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error) {
	err = s.q.QueryRowContext(ctx,
		`SELECT
			EXISTS (SELECT 1 FROM users WHERE email = ?),
			EXISTS (SELECT 1 FROM users WHERE username = ?)`,
		email, username).Scan(&emailTaken, &usernameTaken)
	return emailTaken, usernameTaken, mapErr("check user", "user", email, err)
}
