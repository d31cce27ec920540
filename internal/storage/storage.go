package storage

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrSellerNotFound = errors.New("seller not found")
	ErrSellerExists   = errors.New("seller already exists")

	ErrRefreshTokenNotFound = errors.New("refresh token does not exist")
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")

	ErrVerificationCodeMismatch = errors.New("verification code mismatch")
)
