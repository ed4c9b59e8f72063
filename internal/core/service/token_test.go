package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/blog-api/internal/core/domain"
)

func TestTokenManager_IssueVerify(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tm := NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return now })

	token, exp, err := tm.Issue(&domain.User{ID: "u1", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	id, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: "u1", Role: domain.RoleAdmin}, id)
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	now := time.Now()
	tm := NewTokenManager("secret", 0).WithClock(func() time.Time { return now })

	_, exp, err := tm.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(24*time.Hour), exp, time.Second)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := issuedAt
	tm := NewTokenManager("secret", time.Minute).WithClock(func() time.Time { return clock })

	token, _, err := tm.Issue(&domain.User{ID: "u1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	clock = issuedAt.Add(30 * time.Second)
	_, err = tm.Verify(token)
	require.NoError(t, err, "token must be valid before expiry")

	clock = issuedAt.Add(2 * time.Minute)
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	token, _, err := NewTokenManager("other", time.Hour).Issue(&domain.User{ID: "u1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTokenManager_RejectsMalformedClaims(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	cases := map[string]string{
		"no exp": sign(Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}},
			jwt.SigningMethodHS256, []byte("secret")),
		"no subject": sign(Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}},
			jwt.SigningMethodHS256, []byte("secret")),
		"unknown role": sign(Claims{Role: "root", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp}},
			jwt.SigningMethodHS256, []byte("secret")),
		"other hmac alg": sign(Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp}},
			jwt.SigningMethodHS512, []byte("secret")),
		"alg none": sign(Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp}},
			jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType),
		"garbage": "not.a.token",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Verify(raw)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}
