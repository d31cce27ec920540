package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"user_service/internal/lib/api/validate"
	sl "user_service/internal/lib/logger"
	"user_service/internal/lib/verification"
	"user_service/internal/storage"
)

// * SendVerificationCode mails a fresh one-time code and stores it for the email.
// The code is stored only after the mail gateway accepted it.
func (a *Auth) SendVerificationCode(ctx context.Context, email string) error {
	const op = "auth.SendVerificationCode"

	log := a.log.With(slog.String("op", op))

	email = normalizeEmail(email)
	if !validate.IsEmail(email) {
		return ErrInvalidEmail
	}

	code, err := verification.GenerateCode(a.codeLengthOrDefault())
	if err != nil {
		log.Error("failed to generate code", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.mail.Send(ctx, email, a.subjectOrDefault(), verification.MessageBody(code)); err != nil {
		log.Error("failed to send verification mail", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	if err := a.verification.SaveVerificationCode(ctx, email, code); err != nil {
		log.Error("failed to save verification code", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	log.Info("verification code sent")

	return nil
}

// * VerifyCode consumes the pending code and marks the email as verified.
func (a *Auth) VerifyCode(ctx context.Context, email, code string) error {
	const op = "auth.VerifyCode"

	log := a.log.With(slog.String("op", op))

	email = normalizeEmail(email)

	if err := a.verification.ConsumeVerificationCode(ctx, email, code); err != nil {
		if errors.Is(err, storage.ErrVerificationCodeMismatch) {
			log.Info("verification code mismatch")
			return ErrCodeMismatch
		}

		log.Error("failed to consume verification code", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	log.Info("email verified")

	return nil
}

func (a *Auth) HasCompletedVerification(ctx context.Context, email string) (bool, error) {
	const op = "auth.HasCompletedVerification"

	done, err := a.verification.HasCompletedVerification(ctx, normalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	return done, nil
}

func (a *Auth) codeLengthOrDefault() int {
	if a.codeLength == 0 {
		return verification.DefaultCodeLength
	}
	return a.codeLength
}

func (a *Auth) subjectOrDefault() string {
	if a.mailSubject == "" {
		return verification.DefaultSubject
	}
	return a.mailSubject
}
