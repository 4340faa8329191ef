package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteCartItem is one cart line in a quote request.
type QuoteCartItem struct {
	ProductID string          `json:"product_id" validate:"required,notblank,max=255"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
	Category  string          `json:"category" validate:"max=255"`
}

// QuoteRequest is the DTO for requesting a discount resolution.
// ConfirmCoupon is the second phase of the confirmation flow: the caller
// re-submits the same quote with it set after the user has accepted a coupon
// that is worse than the automatic discount.
type QuoteRequest struct {
	Items         []QuoteCartItem `json:"items" validate:"required,min=1,dive"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	CouponCode    string          `json:"coupon_code" validate:"omitempty,max=64"`
	ConfirmCoupon bool            `json:"confirm_coupon"`
}

// CreateCouponRequest is the DTO for creating a coupon.
type CreateCouponRequest struct {
	Code           string          `json:"code" validate:"required,notblank,couponcode,max=64"`
	Kind           Kind            `json:"kind" validate:"required,oneof=fixed percentage"`
	Value          decimal.Decimal `json:"value"`
	Scope          Scope           `json:"scope" validate:"required,oneof=all category product"`
	Target         string          `json:"target" validate:"required_unless=Scope all,max=255"`
	StartsAt       *time.Time      `json:"starts_at"`
	EndsAt         *time.Time      `json:"ends_at"`
	MaxRedemptions *int            `json:"max_redemptions" validate:"omitempty,gte=1"`
}

// CouponResponse is the API response DTO for GET /api/coupons/:code.
type CouponResponse struct {
	Coupon
	RedeemedBy []string `json:"redeemed_by"`
}

// RedeemCouponRequest is the DTO for redeeming a coupon at checkout.
type RedeemCouponRequest struct {
	UserID     string `json:"user_id" validate:"required,notblank,max=255"`
	CouponCode string `json:"coupon_code" validate:"required,notblank,max=64"`
}

// CreatePromotionRequest is the DTO for creating an automatic promotion.
type CreatePromotionRequest struct {
	Name     string          `json:"name" validate:"required,notblank,max=255"`
	Scope    Scope           `json:"scope" validate:"required,oneof=all category product"`
	Target   string          `json:"target" validate:"required_unless=Scope all,max=255"`
	Kind     Kind            `json:"kind" validate:"required,oneof=fixed percentage"`
	Value    decimal.Decimal `json:"value"`
	StartsAt *time.Time      `json:"starts_at"`
	EndsAt   *time.Time      `json:"ends_at"`
}

// SuggestBuildRequest is the DTO for requesting PC build suggestions.
type SuggestBuildRequest struct {
	Requirement string `json:"requirement" validate:"required,notblank,max=2000"`
}
