package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trandaiky/techshop-discounts/internal/model"
)

// PromotionPoolInterface defines the database operations needed by PromotionRepository.
type PromotionPoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PromotionRepository provides data access for automatic promotions using pgx.
type PromotionRepository struct {
	pool PromotionPoolInterface
}

// NewPromotionRepository creates a new PromotionRepository with the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// NewPromotionRepositoryWithPool creates a new PromotionRepository with a custom pool interface.
// This is primarily used for testing.
func NewPromotionRepositoryWithPool(pool PromotionPoolInterface) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// Insert inserts a new promotion into the database.
func (r *PromotionRepository) Insert(ctx context.Context, promo *model.Promotion) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO promotions (id, name, scope, target, kind, value, starts_at, ends_at, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		promo.ID, promo.Name, promo.Scope, promo.Target, promo.Kind, promo.Value,
		promo.StartsAt, promo.EndsAt, promo.Active)
	if err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

// ListActive retrieves the promotions in effect at the given instant:
// active rows whose validity window covers it. Ordered by creation time so
// the quote path sees a stable rule order.
func (r *PromotionRepository) ListActive(ctx context.Context, at time.Time) ([]model.Promotion, error) {
	query := `SELECT id, name, scope, target, kind, value, starts_at, ends_at, active, created_at
		FROM promotions
		WHERE active
		  AND (starts_at IS NULL OR starts_at <= $1)
		  AND (ends_at IS NULL OR ends_at > $1)
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, at)
	if err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}
	defer rows.Close()

	var promos []model.Promotion
	for rows.Next() {
		var p model.Promotion
		err := rows.Scan(&p.ID, &p.Name, &p.Scope, &p.Target, &p.Kind, &p.Value,
			&p.StartsAt, &p.EndsAt, &p.Active, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		promos = append(promos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotion rows: %w", err)
	}

	// Return empty slice, not nil
	if promos == nil {
		promos = []model.Promotion{}
	}

	return promos, nil
}
