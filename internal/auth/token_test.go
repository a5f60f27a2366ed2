package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetsapi/planets/internal/model"
)

func newTestIssuer(t *testing.T, now time.Time) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer([]byte("test-secret"), "planets-test", 15*time.Minute)
	require.NoError(t, err)
	return iss.WithClock(func() time.Time { return now })
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	iss := newTestIssuer(t, now)

	tok, issued, err := iss.Issue("test@test.com")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(tok, ".")+1)
	assert.NotEmpty(t, issued.TokenID)
	assert.True(t, now.Add(15*time.Minute).Equal(issued.ExpiresAt))

	got, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "test@test.com", got.Subject)
	assert.Equal(t, issued.TokenID, got.TokenID)
	assert.True(t, issued.ExpiresAt.Equal(got.ExpiresAt))
}

func TestTokenIssuer_TokenIDsAreUnique(t *testing.T) {
	t.Parallel()
	iss := newTestIssuer(t, time.Now())

	_, a, err := iss.Issue("a@test.com")
	require.NoError(t, err)
	_, b, err := iss.Issue("a@test.com")
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tok, _, err := newTestIssuer(t, now).Issue("a@test.com")
	require.NoError(t, err)

	later := newTestIssuer(t, now.Add(16*time.Minute))
	_, err = later.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tok, _, err := newTestIssuer(t, now).Issue("a@test.com")
	require.NoError(t, err)

	other, err := NewTokenIssuer([]byte("other-secret"), "planets-test", time.Minute)
	require.NoError(t, err)

	_, err = other.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_WrongIssuer(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tok, _, err := newTestIssuer(t, now).Issue("a@test.com")
	require.NoError(t, err)

	other, err := NewTokenIssuer([]byte("test-secret"), "someone-else", time.Minute)
	require.NoError(t, err)

	_, err = other.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()
	iss := newTestIssuer(t, time.Now())

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "a@test.com",
		Issuer:    "planets-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Malformed(t *testing.T) {
	t.Parallel()
	_, err := newTestIssuer(t, time.Now()).Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuer_Validation(t *testing.T) {
	t.Parallel()
	_, err := NewTokenIssuer(nil, "x", time.Minute)
	require.Error(t, err)

	_, err = NewTokenIssuer([]byte("k"), "x", 0)
	require.Error(t, err)
}

func TestPrincipalContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assert.Nil(t, PrincipalFromContext(ctx))
	assert.Equal(t, "", SubjectFromContext(ctx))

	ctx = ContextWithPrincipal(ctx, &model.Principal{Subject: "a@test.com"})
	assert.Equal(t, "a@test.com", SubjectFromContext(ctx))
}
