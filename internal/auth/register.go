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

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterUserInput struct {
	Email     string
	Password  string
	Nickname  string
	Birthdate time.Time
}

type RegisterSellerInput struct {
	Email      string
	Password   string
	SellerName string
	SellerLogo []byte
}

func (a *Auth) RegisterUser(ctx context.Context, in RegisterUserInput) (models.User, error) {
	const op = "auth.RegisterUser"

	log := a.log.With(slog.String("op", op))

	log.Info("registering new user")

	email := normalizeEmail(in.Email)

	passHash, err := a.prepareAccount(ctx, op, email, in.Password)
	if err != nil {
		return models.User{}, err
	}

	user, err := a.usrSaver.SaveUser(ctx, models.User{
		UserID:    uuid.NewString(),
		Email:     email,
		PassHash:  passHash,
		Nickname:  in.Nickname,
		Birthdate: in.Birthdate,
		Role:      models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return models.User{}, ErrUserExists
		}

		log.Error("failed to save user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	log.Info("user registered", slog.String("uid", user.UserID))

	return user, nil
}

func (a *Auth) RegisterSeller(ctx context.Context, in RegisterSellerInput) (models.Seller, error) {
	const op = "auth.RegisterSeller"

	log := a.log.With(slog.String("op", op))

	log.Info("registering new seller")

	email := normalizeEmail(in.Email)

	passHash, err := a.prepareAccount(ctx, op, email, in.Password)
	if err != nil {
		return models.Seller{}, err
	}

	seller, err := a.usrSaver.SaveSeller(ctx, models.Seller{
		SellerID:   uuid.NewString(),
		Email:      email,
		PassHash:   passHash,
		SellerName: in.SellerName,
		SellerLogo: in.SellerLogo,
	})
	if err != nil {
		if errors.Is(err, storage.ErrSellerExists) {
			log.Warn("seller already exists")
			return models.Seller{}, ErrSellerExists
		}

		log.Error("failed to save seller", sl.Err(err))
		return models.Seller{}, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	log.Info("seller registered", slog.String("sid", seller.SellerID))

	return seller, nil
}

// prepareAccount checks that the email finished verification and hashes the password.
func (a *Auth) prepareAccount(ctx context.Context, op, email, password string) ([]byte, error) {
	done, err := a.HasCompletedVerification(ctx, email)
	if err != nil {
		a.log.Error("failed to check verification", slog.String("op", op), sl.Err(err))
		return nil, err
	}
	if !done {
		return nil, ErrEmailNotVerified
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.log.Error("failed to generate password hash", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return passHash, nil
}
