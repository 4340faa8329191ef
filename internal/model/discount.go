package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scope identifies which cart lines a discount rule applies to.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeCategory Scope = "category"
	ScopeProduct  Scope = "product"
)

// Kind is the discount calculation strategy.
type Kind string

const (
	KindFixed      Kind = "fixed"
	KindPercentage Kind = "percentage"
)

// AppliedSource indicates which discount source won the resolution.
type AppliedSource string

const (
	SourceAutomatic AppliedSource = "automatic"
	SourceManual    AppliedSource = "manual"
)

// CartItem is one line of the cart snapshot a resolution runs against.
// The snapshot is immutable per call; the caller owns it.
type CartItem struct {
	ProductID string          `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category"`
}

// LineSubtotal returns unit price times quantity.
func (i CartItem) LineSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Promotion is a store-wide automatic discount rule.
type Promotion struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Scope     Scope           `json:"scope"`
	Target    string          `json:"target,omitempty"`
	Kind      Kind            `json:"kind"`
	Value     decimal.Decimal `json:"value"`
	StartsAt  *time.Time      `json:"starts_at,omitempty"`
	EndsAt    *time.Time      `json:"ends_at,omitempty"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"-"` // Not exposed in API
}

// Coupon is a manually entered discount code. Codes are stored normalized
// (trimmed, lower-case); at most one coupon participates in a resolution.
type Coupon struct {
	Code           string          `json:"code"`
	Kind           Kind            `json:"kind"`
	Value          decimal.Decimal `json:"value"`
	Scope          Scope           `json:"scope"`
	Target         string          `json:"target,omitempty"`
	StartsAt       *time.Time      `json:"starts_at,omitempty"`
	EndsAt         *time.Time      `json:"ends_at,omitempty"`
	MaxRedemptions *int            `json:"max_redemptions,omitempty"`
	RedeemedCount  int             `json:"redeemed_count"`
	CreatedAt      time.Time       `json:"-"` // Not exposed in API
}

// ValidAt reports whether the coupon's validity window covers t. A nil
// bound is open-ended.
func (c *Coupon) ValidAt(t time.Time) bool {
	if c.StartsAt != nil && t.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && !t.Before(*c.EndsAt) {
		return false
	}
	return true
}

// Exhausted reports whether the coupon's redemption limit is reached.
func (c *Coupon) Exhausted() bool {
	return c.MaxRedemptions != nil && c.RedeemedCount >= *c.MaxRedemptions
}

// ResolvedItem is a cart line with its share of the winning discount.
// DiscountAmount and DiscountedSubtotal are exact; DiscountedUnitPrice is
// rounded to two places for display.
type ResolvedItem struct {
	CartItem
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	DiscountedSubtotal  decimal.Decimal `json:"discounted_subtotal"`
	DiscountedUnitPrice decimal.Decimal `json:"discounted_unit_price"`
}

// Resolution is the output of one discount resolution: the automatic and
// coupon totals computed independently, the winning source, and the cart
// lines with the final amount distributed across them. Items preserves the
// length and ordering of the input snapshot.
type Resolution struct {
	Subtotal             decimal.Decimal `json:"subtotal"`
	AutomaticDiscount    decimal.Decimal `json:"automatic_discount"`
	CouponDiscount       decimal.Decimal `json:"coupon_discount"`
	AppliedSource        AppliedSource   `json:"applied_source"`
	FinalDiscount        decimal.Decimal `json:"final_discount"`
	Total                decimal.Decimal `json:"total"`
	Items                []ResolvedItem  `json:"items"`
	RequiresConfirmation bool            `json:"requires_confirmation"`
	CouponError          string          `json:"coupon_error,omitempty"`
}
