package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trandaiky/techshop-discounts/internal/service"
	"github.com/trandaiky/techshop-discounts/pkg/database"
)

// QueryPoolInterface defines the database operations needed by RedemptionRepository.
type QueryPoolInterface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// RedemptionRepository provides data access for coupon redemptions using pgx.
type RedemptionRepository struct {
	pool QueryPoolInterface
}

// NewRedemptionRepository creates a new RedemptionRepository with the given pool.
func NewRedemptionRepository(pool *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

// NewRedemptionRepositoryWithPool creates a new RedemptionRepository with a custom pool interface.
// This is primarily used for testing.
func NewRedemptionRepositoryWithPool(pool QueryPoolInterface) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

// ListUsers retrieves all user IDs who have redeemed a specific coupon.
// On success, returns an empty slice (not nil) when no redemptions exist.
// On error, returns nil and the wrapped error.
func (r *RedemptionRepository) ListUsers(ctx context.Context, code string) ([]string, error) {
	query := `SELECT user_id FROM redemptions WHERE coupon_code = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("get redemptions for coupon %s: %w", code, err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan redemption user_id: %w", err)
		}
		users = append(users, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate redemption rows: %w", err)
	}

	// Return empty slice, not nil
	if users == nil {
		users = []string{}
	}

	return users, nil
}

// Insert inserts a new redemption record within a transaction.
// Returns service.ErrAlreadyRedeemed if the user has already redeemed this coupon.
func (r *RedemptionRepository) Insert(ctx context.Context, tx database.TxQuerier, userID, code string) error {
	query := `INSERT INTO redemptions (user_id, coupon_code) VALUES ($1, $2)`

	_, err := tx.Exec(ctx, query, userID, code)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrAlreadyRedeemed
		}
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}
