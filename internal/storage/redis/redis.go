package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user_service/internal/config"
	"user_service/internal/models"
	"user_service/internal/storage"

	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenPrefix          = "refresh_token"
	verificationCodePrefix      = "verification:code"
	verificationCompletedPrefix = "verification:completed"
)

// Script results shared by the compare-and-* scripts.
const (
	scriptNotFound = 0
	scriptOK       = 1
	scriptMismatch = -1
)

// KEYS[1] = refresh token key
// ARGV[1] = presented token, ARGV[2] = next token, ARGV[3] = ttl in ms
var rotateRefreshTokenLua = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return -1
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// KEYS[1] = refresh token key
// ARGV[1] = presented token
var deleteRefreshTokenLua = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return -1
end
redis.call('DEL', KEYS[1])
return 1
`)

// KEYS[1] = code key, KEYS[2] = completion key
// ARGV[1] = candidate code, ARGV[2] = completion ttl in ms
var consumeVerificationCodeLua = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return -1
end
redis.call('DEL', KEYS[1])
redis.call('SET', KEYS[2], '1', 'PX', ARGV[2])
return 1
`)

type TTLs struct {
	RefreshToken          time.Duration
	VerificationCode      time.Duration
	VerificationCompleted time.Duration
}

type RedisRepo struct {
	client redis.UniversalClient
	ttls   TTLs
}

func New(ctx context.Context, cfg *config.Config) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithClient(client, TTLs{
		RefreshToken:          cfg.Tokens.RefreshTokenTTL,
		VerificationCode:      cfg.Verification.CodeTTL,
		VerificationCompleted: cfg.Verification.CompletionTTL,
	}), nil
}

func NewWithClient(client redis.UniversalClient, ttls TTLs) *RedisRepo {
	return &RedisRepo{
		client: client,
		ttls:   ttls,
	}
}

func refreshTokenKey(userType models.UserType, email string) string {
	return fmt.Sprintf("%s:%s:%s", refreshTokenPrefix, userType, email)
}

func verificationCodeKey(email string) string {
	return fmt.Sprintf("%s:%s", verificationCodePrefix, email)
}

func verificationCompletedKey(email string) string {
	return fmt.Sprintf("%s:%s", verificationCompletedPrefix, email)
}

// * FindRefreshToken returns the last refresh token issued for the account
func (r *RedisRepo) FindRefreshToken(ctx context.Context, userType models.UserType, email string) (string, error) {
	const op = "storage.redis.FindRefreshToken"

	token, err := r.client.Get(ctx, refreshTokenKey(userType, email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrRefreshTokenNotFound
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// * SaveRefreshToken overwrites any token previously issued for the account
func (r *RedisRepo) SaveRefreshToken(ctx context.Context, userType models.UserType, email, token string) error {
	const op = "storage.redis.SaveRefreshToken"

	if err := r.client.Set(ctx, refreshTokenKey(userType, email), token, r.ttls.RefreshToken).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) DeleteRefreshToken(ctx context.Context, userType models.UserType, email string) error {
	const op = "storage.redis.DeleteRefreshToken"

	if err := r.client.Del(ctx, refreshTokenKey(userType, email)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * RotateRefreshToken replaces presented with next only if presented is still the stored value
func (r *RedisRepo) RotateRefreshToken(
	ctx context.Context,
	userType models.UserType,
	email, presented, next string,
) error {
	const op = "storage.redis.RotateRefreshToken"

	res, err := rotateRefreshTokenLua.Run(ctx, r.client,
		[]string{refreshTokenKey(userType, email)},
		presented,
		next,
		r.ttls.RefreshToken.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return scriptResult(op, res, storage.ErrRefreshTokenNotFound, storage.ErrRefreshTokenMismatch)
}

// * DeleteRefreshTokenIfMatch removes the stored token only if it equals presented
func (r *RedisRepo) DeleteRefreshTokenIfMatch(
	ctx context.Context,
	userType models.UserType,
	email, presented string,
) error {
	const op = "storage.redis.DeleteRefreshTokenIfMatch"

	res, err := deleteRefreshTokenLua.Run(ctx, r.client,
		[]string{refreshTokenKey(userType, email)},
		presented,
	).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return scriptResult(op, res, storage.ErrRefreshTokenNotFound, storage.ErrRefreshTokenMismatch)
}

func (r *RedisRepo) SaveVerificationCode(ctx context.Context, email, code string) error {
	const op = "storage.redis.SaveVerificationCode"

	if err := r.client.Set(ctx, verificationCodeKey(email), code, r.ttls.VerificationCode).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * CheckVerificationCode compares without consuming the code
func (r *RedisRepo) CheckVerificationCode(ctx context.Context, email, code string) (bool, error) {
	const op = "storage.redis.CheckVerificationCode"

	stored, err := r.client.Get(ctx, verificationCodeKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return stored == code, nil
}

func (r *RedisRepo) DeleteVerificationCode(ctx context.Context, email string) error {
	const op = "storage.redis.DeleteVerificationCode"

	if err := r.client.Del(ctx, verificationCodeKey(email)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) SaveVerificationCompletion(ctx context.Context, email string) error {
	const op = "storage.redis.SaveVerificationCompletion"

	err := r.client.Set(ctx, verificationCompletedKey(email), "1", r.ttls.VerificationCompleted).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * ConsumeVerificationCode deletes a matching code and sets the completion marker in one step.
// A mismatch leaves the pending code untouched.
func (r *RedisRepo) ConsumeVerificationCode(ctx context.Context, email, code string) error {
	const op = "storage.redis.ConsumeVerificationCode"

	res, err := consumeVerificationCodeLua.Run(ctx, r.client,
		[]string{verificationCodeKey(email), verificationCompletedKey(email)},
		code,
		r.ttls.VerificationCompleted.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return scriptResult(op, res, storage.ErrVerificationCodeMismatch, storage.ErrVerificationCodeMismatch)
}

func (r *RedisRepo) HasCompletedVerification(ctx context.Context, email string) (bool, error) {
	const op = "storage.redis.HasCompletedVerification"

	n, err := r.client.Exists(ctx, verificationCompletedKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n == 1, nil
}

// * Close closes the underlying client.
func (r *RedisRepo) Close() {
	_ = r.client.Close()
}

func scriptResult(op string, res int, notFound, mismatch error) error {
	switch res {
	case scriptOK:
		return nil
	case scriptNotFound:
		return notFound
	case scriptMismatch:
		return mismatch
	default:
		return fmt.Errorf("%s: unexpected script result %d", op, res)
	}
}
