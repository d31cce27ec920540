package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sl "user_service/internal/lib/logger"
	"user_service/internal/models"
	"user_service/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

// Error kinds. Every error returned by Auth wraps exactly one of them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream failure")
)

var (
	ErrRefreshTokenRequired = newError(ErrInvalidInput, "refresh token is required")
	ErrDecodeRefreshToken   = newError(ErrInvalidInput, "failed to decode refresh token")
	ErrInvalidUserType      = newError(ErrInvalidInput, "invalid user type")
	ErrInvalidEmail         = newError(ErrInvalidInput, "invalid email")
	ErrCodeMismatch         = newError(ErrInvalidInput, "verification code mismatch")
	ErrEmailNotVerified     = newError(ErrInvalidInput, "email is not verified")
	ErrWrongAccountType     = newError(ErrInvalidInput, "operation is not available for this account type")

	ErrRefreshTokenNotFound = newError(ErrUnauthorized, "refresh token does not exist")
	ErrRefreshTokenMismatch = newError(ErrUnauthorized, "refresh token mismatch")
	ErrInvalidBearer        = newError(ErrUnauthorized, "invalid token")
	ErrMissingBearer        = newError(ErrUnauthorized, "authorization header is required")
	ErrInvalidCredentials   = newError(ErrUnauthorized, "invalid credentials")

	ErrUserExists   = newError(ErrConflict, "user already exists")
	ErrSellerExists = newError(ErrConflict, "seller already exists")

	ErrAccountNotFound = newError(ErrNotFound, "account not found")
)

// Error is a client-safe failure of a known kind.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

type Auth struct {
	log           *slog.Logger
	tokens        TokenProvider
	refreshTokens RefreshTokenStore
	verification  VerificationStore
	usrSaver      UserSaver
	usrProvider   UserProvider
	mail          MailSender
	codeLength    int
	mailSubject   string
}

type TokenProvider interface {
	CreateTokens(email string, userType models.UserType, userID string) (models.TokenPair, error)
	ParseRefreshToken(token string) (models.Claims, error)
	ParseAccessToken(token string) (models.Claims, error)
}

type RefreshTokenStore interface {
	SaveRefreshToken(ctx context.Context, userType models.UserType, email, token string) error
	RotateRefreshToken(ctx context.Context, userType models.UserType, email, presented, next string) error
	DeleteRefreshTokenIfMatch(ctx context.Context, userType models.UserType, email, presented string) error
	DeleteRefreshToken(ctx context.Context, userType models.UserType, email string) error
}

type VerificationStore interface {
	SaveVerificationCode(ctx context.Context, email, code string) error
	ConsumeVerificationCode(ctx context.Context, email, code string) error
	HasCompletedVerification(ctx context.Context, email string) (bool, error)
}

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) (models.User, error)
	SaveSeller(ctx context.Context, seller models.Seller) (models.Seller, error)
	UpdateNickname(ctx context.Context, userID, nickname string) (time.Time, error)
	UpdateSellerName(ctx context.Context, sellerID, sellerName string) (time.Time, error)
	UpdatePassword(ctx context.Context, userType models.UserType, externalID string, passHash []byte) (time.Time, error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	Seller(ctx context.Context, email string) (models.Seller, error)
}

type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Options struct {
	CodeLength  int
	MailSubject string
}

func New(
	log *slog.Logger,
	tokens TokenProvider,
	refreshTokens RefreshTokenStore,
	verification VerificationStore,
	userSaver UserSaver,
	userProvider UserProvider,
	mail MailSender,
	opts Options,
) *Auth {
	return &Auth{
		log:           log,
		tokens:        tokens,
		refreshTokens: refreshTokens,
		verification:  verification,
		usrSaver:      userSaver,
		usrProvider:   userProvider,
		mail:          mail,
		codeLength:    opts.CodeLength,
		mailSubject:   opts.MailSubject,
	}
}

// * Refresh exchanges a live refresh token for a new token pair. The stored
// token is swapped atomically, so of concurrent refreshes with one token only
// one succeeds.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	const op = "auth.Refresh"

	log := a.log.With(slog.String("op", op))

	if refreshToken == "" {
		return models.TokenPair{}, ErrRefreshTokenRequired
	}

	claims, err := a.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		log.Warn("failed to decode refresh token", sl.Err(err))
		return models.TokenPair{}, ErrDecodeRefreshToken
	}

	log = log.With(slog.String("user_type", claims.UserType.String()))

	pair, err := a.tokens.CreateTokens(claims.Email, claims.UserType, claims.UserID)
	if err != nil {
		log.Error("failed to create tokens", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	err = a.refreshTokens.RotateRefreshToken(ctx, claims.UserType, claims.Email, refreshToken, pair.RefreshToken)
	if err != nil {
		if mapped := refreshStoreError(err); mapped != nil {
			log.Warn("refresh rejected", sl.Err(err))
			return models.TokenPair{}, mapped
		}

		log.Error("failed to rotate refresh token", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	log.Info("tokens refreshed")

	return pair, nil
}

// * Logout revokes the refresh token. authorization is the raw Authorization
// header; when present it must carry a valid bearer token.
func (a *Auth) Logout(ctx context.Context, authorization, refreshToken string) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	if authorization != "" {
		if _, err := a.Authenticate(authorization); err != nil {
			log.Warn("invalid bearer token")
			return err
		}
	}

	if refreshToken == "" {
		return ErrRefreshTokenRequired
	}

	claims, err := a.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		log.Warn("failed to decode refresh token", sl.Err(err))
		return ErrDecodeRefreshToken
	}

	err = a.refreshTokens.DeleteRefreshTokenIfMatch(ctx, claims.UserType, claims.Email, refreshToken)
	if err != nil {
		if mapped := refreshStoreError(err); mapped != nil {
			log.Warn("logout rejected", sl.Err(err))
			return mapped
		}

		log.Error("failed to delete refresh token", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	log.Info("logout successful", slog.String("user_type", claims.UserType.String()))

	return nil
}

// * Authenticate parses an "Authorization: Bearer <access token>" header value.
// Refresh tokens are not accepted as bearer tokens.
func (a *Auth) Authenticate(authorization string) (models.Claims, error) {
	if authorization == "" {
		return models.Claims{}, ErrMissingBearer
	}

	bearer, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok {
		return models.Claims{}, ErrInvalidBearer
	}

	claims, err := a.tokens.ParseAccessToken(strings.TrimSpace(bearer))
	if err != nil {
		a.log.Debug("bearer rejected", slog.String("op", "auth.Authenticate"), sl.Err(err))
		return models.Claims{}, ErrInvalidBearer
	}

	return claims, nil
}

// * Login checks credentials of a user or seller and issues a token pair.
// The new refresh token replaces any previously stored one.
func (a *Auth) Login(ctx context.Context, email, password, userType string) (models.TokenPair, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	ut, err := models.ParseUserType(userType)
	if err != nil {
		return models.TokenPair{}, ErrInvalidUserType
	}

	email = normalizeEmail(email)

	account, err := a.account(ctx, ut, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, storage.ErrSellerNotFound) {
			log.Info("account not found")
			return models.TokenPair{}, ErrInvalidCredentials
		}

		log.Error("failed to get account", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	if err := bcrypt.CompareHashAndPassword(account.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return models.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := a.tokens.CreateTokens(account.Email, account.Type, account.ExternalID)
	if err != nil {
		log.Error("failed to create tokens", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.refreshTokens.SaveRefreshToken(ctx, account.Type, account.Email, pair.RefreshToken); err != nil {
		log.Error("failed to save refresh token", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	log.Info("logged in", slog.String("user_type", ut.String()), slog.String("uid", account.ExternalID))

	return pair, nil
}

func (a *Auth) account(ctx context.Context, ut models.UserType, email string) (models.Account, error) {
	if ut == models.UserTypeSeller {
		s, err := a.usrProvider.Seller(ctx, email)
		if err != nil {
			return models.Account{}, err
		}
		return s.Account(), nil
	}

	u, err := a.usrProvider.User(ctx, email)
	if err != nil {
		return models.Account{}, err
	}
	return u.Account(), nil
}

// refreshStoreError maps store rejections to client errors; nil means the
// error is an infrastructure failure.
func refreshStoreError(err error) error {
	switch {
	case errors.Is(err, storage.ErrRefreshTokenNotFound):
		return ErrRefreshTokenNotFound
	case errors.Is(err, storage.ErrRefreshTokenMismatch):
		return ErrRefreshTokenMismatch
	default:
		return nil
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
