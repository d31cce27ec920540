package jwt

import (
	"strings"
	"testing"
	"time"

	"user_service/internal/models"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	p, err := New(Config{
		Secret:     testSecret,
		Issuer:     "user-service",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	return p
}

func TestNew_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Secret: "short", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	assert.Error(t, err)

	_, err = New(Config{Secret: testSecret, AccessTTL: 0, RefreshTTL: time.Hour})
	assert.Error(t, err)
}

func TestCreateTokens_RoundTrip(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)

	pair, err := p.CreateTokens("a@b.com", models.UserTypeSeller, "seller-1")
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := p.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, models.Claims{Email: "a@b.com", UserType: models.UserTypeSeller, UserID: "seller-1"}, claims)

	claims, err = p.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)

	email, err := p.EmailFromToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)

	userType, err := p.UserTypeFromToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeSeller, userType)

	userID, err := p.UserIDFromToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "seller-1", userID)
}

func TestCreateTokens_UniquePerIssuance(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)

	first, err := p.CreateTokens("a@b.com", models.UserTypeUser, "u1")
	require.NoError(t, err)
	second, err := p.CreateTokens("a@b.com", models.UserTypeUser, "u1")
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}

func TestParse_WrongTokenType(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)

	access, err := p.CreateAccessToken("a@b.com", models.UserTypeUser, "u1")
	require.NoError(t, err)

	_, err = p.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	pair, err := p.CreateTokens("a@b.com", models.UserTypeUser, "u1")
	require.NoError(t, err)

	_, err = p.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParse_TamperedSignature(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)

	pair, err := p.CreateTokens("a@b.com", models.UserTypeUser, "u1")
	require.NoError(t, err)

	parts := strings.Split(pair.RefreshToken, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = p.ParseRefreshToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, p.ValidateToken(tampered))
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)
	other, err := New(Config{
		Secret:     "ffffffffffffffffffffffffffffffff",
		Issuer:     "user-service",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	require.NoError(t, err)

	tok, err := other.CreateAccessToken("a@b.com", models.UserTypeUser, "u1")
	require.NoError(t, err)

	assert.False(t, p.ValidateToken(tok))
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	p := &Provider{
		secret:     []byte(testSecret),
		issuer:     "user-service",
		accessTTL:  -time.Minute,
		refreshTTL: -time.Minute,
	}

	tok, err := p.CreateAccessToken("a@b.com", models.UserTypeUser, "u1")
	require.NoError(t, err)

	_, err = p.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)

	claims := gojwt.MapClaims{
		"sub":        "a@b.com",
		"user_type":  "user",
		"token_type": "access",
		"iss":        "user-service",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.False(t, p.ValidateToken(tok))
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)

	_, err := p.EmailFromToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = p.UserTypeFromToken("")
	assert.Error(t, err)
}
