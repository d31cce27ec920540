package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "user_service/internal/lib/logger"
	"user_service/internal/models"
	"user_service/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

// * AccountInfo returns the profile of the authenticated account.
func (a *Auth) AccountInfo(ctx context.Context, claims models.Claims) (models.AccountInfo, error) {
	const op = "auth.AccountInfo"

	log := a.log.With(slog.String("op", op))

	if claims.UserType == models.UserTypeSeller {
		s, err := a.usrProvider.Seller(ctx, claims.Email)
		if err != nil {
			return models.AccountInfo{}, accountError(log, op, err)
		}
		return s.Info(), nil
	}

	u, err := a.usrProvider.User(ctx, claims.Email)
	if err != nil {
		return models.AccountInfo{}, accountError(log, op, err)
	}
	return u.Info(), nil
}

func (a *Auth) UpdateNickname(ctx context.Context, claims models.Claims, nickname string) (time.Time, error) {
	const op = "auth.UpdateNickname"

	log := a.log.With(slog.String("op", op))

	if claims.UserType != models.UserTypeUser {
		return time.Time{}, ErrWrongAccountType
	}

	updatedAt, err := a.usrSaver.UpdateNickname(ctx, claims.UserID, nickname)
	if err != nil {
		return time.Time{}, accountError(log, op, err)
	}

	log.Info("nickname updated", slog.String("uid", claims.UserID))

	return updatedAt, nil
}

func (a *Auth) UpdateSellerName(ctx context.Context, claims models.Claims, sellerName string) (time.Time, error) {
	const op = "auth.UpdateSellerName"

	log := a.log.With(slog.String("op", op))

	if claims.UserType != models.UserTypeSeller {
		return time.Time{}, ErrWrongAccountType
	}

	updatedAt, err := a.usrSaver.UpdateSellerName(ctx, claims.UserID, sellerName)
	if err != nil {
		return time.Time{}, accountError(log, op, err)
	}

	log.Info("seller name updated", slog.String("sid", claims.UserID))

	return updatedAt, nil
}

// * UpdatePassword replaces the password after checking the current one.
// The stored refresh token is revoked, so other sessions must log in again.
func (a *Auth) UpdatePassword(ctx context.Context, claims models.Claims, oldPassword, newPassword string) error {
	const op = "auth.UpdatePassword"

	log := a.log.With(slog.String("op", op))

	account, err := a.account(ctx, claims.UserType, claims.Email)
	if err != nil {
		return accountError(log, op, err)
	}

	if err := bcrypt.CompareHashAndPassword(account.PassHash, []byte(oldPassword)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return ErrInvalidCredentials
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := a.usrSaver.UpdatePassword(ctx, account.Type, account.ExternalID, passHash); err != nil {
		return accountError(log, op, err)
	}

	if err := a.refreshTokens.DeleteRefreshToken(ctx, account.Type, account.Email); err != nil {
		log.Error("failed to revoke refresh token", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	log.Info("password updated", slog.String("uid", account.ExternalID))

	return nil
}

func accountError(log *slog.Logger, op string, err error) error {
	if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, storage.ErrSellerNotFound) {
		log.Warn("account not found")
		return ErrAccountNotFound
	}

	log.Error("account storage failure", sl.Err(err))
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
