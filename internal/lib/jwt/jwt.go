// Package jwt issues and validates the HS256 access and refresh tokens of the
// service. Both token kinds carry the subject email, the user type and the
// external user id.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"user_service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Provider struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type tokenClaims struct {
	UserType  string    `json:"user_type"`
	UserID    string    `json:"user_id"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

func New(cfg Config) (*Provider, error) {
	const op = "jwt.New"

	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("%s: secret must be at least 32 bytes", op)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%s: token ttl must be positive", op)
	}

	return &Provider{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (p *Provider) CreateAccessToken(email string, userType models.UserType, userID string) (string, error) {
	return p.sign(email, userType, userID, TokenTypeAccess, p.accessTTL)
}

// CreateTokens issues a fresh access/refresh pair. Every token gets its own
// jti, so two pairs minted within the same second still differ.
func (p *Provider) CreateTokens(email string, userType models.UserType, userID string) (models.TokenPair, error) {
	const op = "jwt.CreateTokens"

	access, err := p.sign(email, userType, userID, TokenTypeAccess, p.accessTTL)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := p.sign(email, userType, userID, TokenTypeRefresh, p.refreshTTL)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (p *Provider) ParseAccessToken(tokenStr string) (models.Claims, error) {
	return p.parseAs(tokenStr, TokenTypeAccess)
}

func (p *Provider) ParseRefreshToken(tokenStr string) (models.Claims, error) {
	return p.parseAs(tokenStr, TokenTypeRefresh)
}

func (p *Provider) EmailFromToken(tokenStr string) (string, error) {
	c, err := p.parse(tokenStr)
	if err != nil {
		return "", err
	}

	return c.Subject, nil
}

func (p *Provider) UserTypeFromToken(tokenStr string) (models.UserType, error) {
	c, err := p.parse(tokenStr)
	if err != nil {
		return "", err
	}

	return models.ParseUserType(c.UserType)
}

func (p *Provider) UserIDFromToken(tokenStr string) (string, error) {
	c, err := p.parse(tokenStr)
	if err != nil {
		return "", err
	}

	return c.UserID, nil
}

// ValidateToken reports whether the token has a valid signature and has not
// expired. The token kind is not checked.
func (p *Provider) ValidateToken(tokenStr string) bool {
	_, err := p.parse(tokenStr)

	return err == nil
}

func (p *Provider) sign(
	email string,
	userType models.UserType,
	userID string,
	tokenType TokenType,
	ttl time.Duration,
) (string, error) {
	now := time.Now()

	claims := tokenClaims{
		UserType:  userType.String(),
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(p.secret)
}

func (p *Provider) parse(tokenStr string) (*tokenClaims, error) {
	const op = "jwt.parse"

	claims := &tokenClaims{}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		options = append(options, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w: missing subject", op, ErrInvalidToken)
	}

	return claims, nil
}

func (p *Provider) parseAs(tokenStr string, want TokenType) (models.Claims, error) {
	const op = "jwt.parseAs"

	c, err := p.parse(tokenStr)
	if err != nil {
		return models.Claims{}, err
	}

	if c.TokenType != want {
		return models.Claims{}, fmt.Errorf("%s: %w: got %q", op, ErrWrongTokenType, c.TokenType)
	}

	userType, err := models.ParseUserType(c.UserType)
	if err != nil {
		return models.Claims{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	return models.Claims{
		Email:    c.Subject,
		UserType: userType,
		UserID:   c.UserID,
	}, nil
}
