package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"user_service/internal/config"
	"user_service/internal/models"
	"user_service/internal/storage"
	"user_service/internal/storage/postgres/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const uniqueViolation = "23505"

// DBTX is the subset of *pgxpool.Pool used by the repository.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepo struct {
	db   DBTX
	pool *pgxpool.Pool
}

func gooseUp(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PostgresRepo{db: pool, pool: pool}, nil
}

func NewWithDB(db DBTX) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// * Migrate applies the embedded goose migrations through a database/sql view of the pool
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const op = "storage.postgres.Migrate"

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := gooseUp(ctx, db); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (user_id, email, password_hash, nickname, birthdate, role, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id, created_at, updated_at;
	`

	err := r.db.QueryRow(ctx, query,
		user.UserID,
		user.Email,
		string(user.PassHash),
		user.Nickname,
		user.Birthdate,
		string(user.Role),
		user.Provider,
		user.ProviderID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrUserExists
		}

		return models.User{}, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return user, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.User"

	query := `
		SELECT id, user_id, email, password_hash, nickname, birthdate, role,
		       COALESCE(provider, ''), COALESCE(provider_id, ''), created_at, updated_at
		FROM users
		WHERE email = $1;
	`

	var (
		u    models.User
		role string
	)

	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.UserID,
		&u.Email,
		&u.PassHash,
		&u.Nickname,
		&u.Birthdate,
		&role,
		&u.Provider,
		&u.ProviderID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u.Role = models.Role(role)

	return u, nil
}

func (r *PostgresRepo) UpdateNickname(ctx context.Context, userID, nickname string) (time.Time, error) {
	const op = "storage.postgres.UpdateNickname"

	query := `UPDATE users SET nickname = $1, updated_at = now() WHERE user_id = $2 RETURNING updated_at`

	return r.update(ctx, op, storage.ErrUserNotFound, query, nickname, userID)
}

func (r *PostgresRepo) UpdateSellerName(ctx context.Context, sellerID, sellerName string) (time.Time, error) {
	const op = "storage.postgres.UpdateSellerName"

	query := `UPDATE sellers SET seller_name = $1, updated_at = now() WHERE seller_id = $2 RETURNING updated_at`

	return r.update(ctx, op, storage.ErrSellerNotFound, query, sellerName, sellerID)
}

// * UpdatePassword stores a new hash for the user or seller with the given external id
func (r *PostgresRepo) UpdatePassword(
	ctx context.Context,
	userType models.UserType,
	externalID string,
	passHash []byte,
) (time.Time, error) {
	const op = "storage.postgres.UpdatePassword"

	if userType == models.UserTypeSeller {
		query := `UPDATE sellers SET password_hash = $1, updated_at = now() WHERE seller_id = $2 RETURNING updated_at`

		return r.update(ctx, op, storage.ErrSellerNotFound, query, string(passHash), externalID)
	}

	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE user_id = $2 RETURNING updated_at`

	return r.update(ctx, op, storage.ErrUserNotFound, query, string(passHash), externalID)
}

func (r *PostgresRepo) update(ctx context.Context, op string, notFound error, query string, args ...any) (time.Time, error) {
	var updatedAt time.Time

	if err := r.db.QueryRow(ctx, query, args...).Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, notFound
		}

		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return updatedAt, nil
}

func (r *PostgresRepo) SaveSeller(ctx context.Context, seller models.Seller) (models.Seller, error) {
	const op = "storage.postgres.SaveSeller"

	query := `
		INSERT INTO sellers (seller_id, email, password_hash, seller_name, seller_logo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;
	`

	err := r.db.QueryRow(ctx, query,
		seller.SellerID,
		seller.Email,
		string(seller.PassHash),
		seller.SellerName,
		seller.SellerLogo,
	).Scan(&seller.ID, &seller.CreatedAt, &seller.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Seller{}, storage.ErrSellerExists
		}

		return models.Seller{}, fmt.Errorf("%s: failed to save seller: %w", op, err)
	}

	return seller, nil
}

func (r *PostgresRepo) Seller(ctx context.Context, email string) (models.Seller, error) {
	const op = "storage.postgres.Seller"

	query := `
		SELECT id, seller_id, email, password_hash, seller_name, seller_logo, created_at, updated_at
		FROM sellers
		WHERE email = $1;
	`

	var s models.Seller

	err := r.db.QueryRow(ctx, query, email).Scan(
		&s.ID,
		&s.SellerID,
		&s.Email,
		&s.PassHash,
		&s.SellerName,
		&s.SellerLogo,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Seller{}, storage.ErrSellerNotFound
		}

		return models.Seller{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (r *PostgresRepo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// * dsn builds the connection string from config.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
