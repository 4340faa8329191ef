package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/trandaiky/techshop-discounts/internal/model"
	"github.com/trandaiky/techshop-discounts/pkg/database"
)

var oneHundred = decimal.NewFromInt(100)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	IncrementRedeemed(ctx context.Context, tx database.TxQuerier, code string) error
}

// RedemptionRepositoryInterface defines the interface for redemption data access.
type RedemptionRepositoryInterface interface {
	ListUsers(ctx context.Context, code string) ([]string, error)
	Insert(ctx context.Context, tx database.TxQuerier, userID, code string) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CouponService provides business logic for coupon operations.
type CouponService struct {
	pool           TxBeginner
	couponRepo     CouponRepositoryInterface
	redemptionRepo RedemptionRepositoryInterface
}

// NewCouponService creates a new CouponService with the given pool and repositories.
func NewCouponService(pool *pgxpool.Pool, couponRepo CouponRepositoryInterface, redemptionRepo RedemptionRepositoryInterface) *CouponService {
	return &CouponService{
		pool:           pool,
		couponRepo:     couponRepo,
		redemptionRepo: redemptionRepo,
	}
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom TxBeginner.
// Primarily used for testing.
func NewCouponServiceWithTxBeginner(pool TxBeginner, couponRepo CouponRepositoryInterface, redemptionRepo RedemptionRepositoryInterface) *CouponService {
	return &CouponService{
		pool:           pool,
		couponRepo:     couponRepo,
		redemptionRepo: redemptionRepo,
	}
}

// NormalizeCode canonicalizes a coupon code for storage and lookup:
// trimmed, lower-cased. Codes are case-insensitive at the API surface.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Create creates a new coupon from the request.
// Returns ErrCouponExists if a coupon with the same code already exists.
// Returns ErrInvalidRequest if the discount value or validity window is inconsistent.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) error {
	// Defense-in-depth: check for nil pointer even though handler validates
	if req == nil {
		return ErrInvalidRequest
	}
	if !req.Value.IsPositive() {
		return ErrInvalidRequest
	}
	if req.Kind == model.KindPercentage && req.Value.GreaterThan(oneHundred) {
		return ErrInvalidRequest
	}
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return ErrInvalidRequest
	}

	coupon := &model.Coupon{
		Code:           NormalizeCode(req.Code),
		Kind:           req.Kind,
		Value:          req.Value,
		Scope:          req.Scope,
		Target:         req.Target,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		MaxRedemptions: req.MaxRedemptions,
	}
	return s.couponRepo.Insert(ctx, coupon)
}

// GetByCode retrieves a coupon by code with the list of users who redeemed it.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) GetByCode(ctx context.Context, code string) (*model.CouponResponse, error) {
	normalized := NormalizeCode(code)

	coupon, err := s.couponRepo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	redeemedBy, err := s.redemptionRepo.ListUsers(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("get redemptions: %w", err)
	}

	return &model.CouponResponse{
		Coupon:     *coupon,
		RedeemedBy: redeemedBy,
	}, nil
}

// Redeem atomically records a coupon redemption for a user.
// Uses SELECT FOR UPDATE to lock the coupon row during the transaction.
// Returns:
//   - ErrCouponNotFound if the coupon doesn't exist
//   - ErrCouponExpired if the coupon is outside its validity window
//   - ErrCouponExhausted if the redemption limit is reached
//   - ErrAlreadyRedeemed if the user has already redeemed this coupon
func (s *CouponService) Redeem(ctx context.Context, userID, code string) error {
	normalized := NormalizeCode(code)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the coupon row (SELECT FOR UPDATE)
	coupon, err := s.couponRepo.GetForUpdate(ctx, tx, normalized)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("get coupon for update: %w", err)
	}

	// 2. Check validity window and redemption limit
	if !coupon.ValidAt(time.Now()) {
		return ErrCouponExpired
	}
	if coupon.Exhausted() {
		return ErrCouponExhausted
	}

	// 3. Insert redemption (UNIQUE constraint catches duplicates)
	err = s.redemptionRepo.Insert(ctx, tx, userID, normalized)
	if err != nil {
		if errors.Is(err, ErrAlreadyRedeemed) {
			return ErrAlreadyRedeemed
		}
		return fmt.Errorf("insert redemption: %w", err)
	}

	// 4. Bump the usage counter
	err = s.couponRepo.IncrementRedeemed(ctx, tx, normalized)
	if err != nil {
		return fmt.Errorf("increment redeemed count: %w", err)
	}

	return tx.Commit(ctx)
}
