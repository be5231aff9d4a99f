package main

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	tok, err := signJWT("secret", 42, time.Hour)
	require.NoError(t, err)

	uid, err := parseJWT("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)
}

func TestParseJWTRejects(t *testing.T) {
	expired, err := signJWT("secret", 7, -time.Minute)
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "7",
		Issuer:  jwtIssuer,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	good, err := signJWT("secret", 7, time.Hour)
	require.NoError(t, err)

	cases := map[string]struct{ secret, token string }{
		"expired":      {"secret", expired},
		"wrong issuer": {"secret", foreign},
		"no expiry":    {"secret", noExpiry},
		"wrong secret": {"other", good},
		"garbage":      {"secret", "a.b.c"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseJWT(tc.secret, tc.token)
			assert.Error(t, err)
		})
	}
}
