package main

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"farmeasy/apperr"
	"farmeasy/models"
)

var emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w+$`)

// passwordProblem returns why pw is too weak, or "".
func passwordProblem(pw string) string {
	if len(pw) < 6 {
		return "Password must be at least 6 characters"
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "Password must contain upper case, lower case and a digit"
	}
	return ""
}

// handleRegister creates a new user with a bcrypt-hashed password and
// logs them in.
func (a *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.TrimSpace(req.Name)
	}
	if username == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			username = email[:at]
		}
	}

	fields := map[string]string{}
	switch {
	case email == "":
		fields["email"] = "email is required"
	case !emailPattern.MatchString(email):
		fields["email"] = "Invalid email format"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	} else if p := passwordProblem(req.Password); p != "" {
		fields["password"] = p
	}
	if username == "" {
		fields["username"] = "username or name is required"
	}
	if len(fields) > 0 {
		writeError(w, r, apperr.Validation("invalid registration", fields))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	emailTaken, nameTaken, err := a.store.UserExists(ctx, email, username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if emailTaken {
		writeMessage(w, r, http.StatusConflict, "Email already registered")
		return
	}
	if nameTaken {
		writeMessage(w, r, http.StatusConflict, "Username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := a.store.CreateUser(ctx, &u); err != nil {
		writeError(w, r, err)
		return
	}
	a.writeToken(w, r, http.StatusCreated, "User registered successfully", u)
}

// handleLogin verifies credentials and returns a JWT token.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := a.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		writeMessage(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeMessage(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	a.writeToken(w, r, http.StatusOK, "Login successful", u)
}

func (a *App) writeToken(w http.ResponseWriter, r *http.Request, status int, msg string, u models.User) {
	tok, err := signJWT(a.cfg.JWTSecret, u.ID, a.cfg.JWTTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, status, tokenResp{Message: msg, Token: tok, AccessToken: tok, User: u})
}

// handleProfile returns the current user's profile.
func (a *App) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, err := a.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"user": u})
}

// handleVerify reports whether the bearer token still maps to a user.
func (a *App) handleVerify(w http.ResponseWriter, r *http.Request) {
	u, err := a.currentUser(r)
	if err != nil {
		writeJSON(w, r, http.StatusUnauthorized, map[string]any{"valid": false})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"valid": true, "user": u})
}

func (a *App) handleAuthHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.store.Ping(ctx); err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "component": "auth"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy", "component": "auth"})
}

func (a *App) currentUser(r *http.Request) (models.User, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	u, err := a.store.UserByID(ctx, mustUserID(r))
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return models.User{}, apperr.NotFound("user", nil)
	}
	return u, err
}
