package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/trandaiky/techshop-discounts/internal/discount"
	"github.com/trandaiky/techshop-discounts/internal/model"
)

// Human-readable coupon failure messages surfaced in the quote response.
// Coupon failures never fail a quote: the automatic pass always proceeds.
const (
	MsgCouponNotFound     = "coupon code not found"
	MsgCouponExpired      = "coupon has expired"
	MsgCouponExhausted    = "coupon redemption limit reached"
	MsgCouponLookupFailed = "coupon lookup failed, automatic discounts still apply"
)

// PromotionCatalogInterface supplies currently active automatic rules.
type PromotionCatalogInterface interface {
	ListActive(ctx context.Context, at time.Time) ([]model.Promotion, error)
}

// CouponLookupInterface resolves a coupon code to its rule.
// Returns nil, nil when the code does not exist.
type CouponLookupInterface interface {
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
}

// DiscountService orchestrates a discount resolution: it loads the active
// promotions, resolves the coupon code, and hands both to the engine.
// It holds no state between calls; a superseded quote is simply discarded
// by the caller.
type DiscountService struct {
	promotions PromotionCatalogInterface
	coupons    CouponLookupInterface
}

// NewDiscountService creates a DiscountService with the given catalogs.
func NewDiscountService(promotions PromotionCatalogInterface, coupons CouponLookupInterface) *DiscountService {
	return &DiscountService{
		promotions: promotions,
		coupons:    coupons,
	}
}

// Quote computes the discount breakdown for a cart snapshot.
// Returns ErrInvalidRequest on malformed cart lines. Coupon failures are
// reported inside the resolution as CouponError, never as a Go error.
func (s *DiscountService) Quote(ctx context.Context, req *model.QuoteRequest) (*model.Resolution, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, ErrInvalidRequest
	}

	items := make([]model.CartItem, len(req.Items))
	for i, it := range req.Items {
		if it.UnitPrice.IsNegative() || it.Quantity < 1 {
			return nil, ErrInvalidRequest
		}
		items[i] = model.CartItem{
			ProductID: it.ProductID,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Category:  it.Category,
		}
	}

	now := time.Now()

	promos, err := s.promotions.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}

	in := discount.Input{
		Items:         items,
		Promotions:    promos,
		ConfirmCoupon: req.ConfirmCoupon,
	}

	if code := NormalizeCode(req.CouponCode); code != "" {
		coupon, err := s.coupons.FindByCode(ctx, code)
		switch {
		case err != nil:
			// Degrade to the automatic result rather than failing the quote.
			log.Warn().Err(err).Str("coupon_code", code).Msg("coupon lookup failed")
			in.CouponError = MsgCouponLookupFailed
		case coupon == nil:
			in.CouponError = MsgCouponNotFound
		case !coupon.ValidAt(now):
			in.CouponError = MsgCouponExpired
		case coupon.Exhausted():
			in.CouponError = MsgCouponExhausted
		default:
			in.Coupon = coupon
		}
	}

	res := discount.Resolve(in)

	// The engine recomputes the subtotal from the lines; the client value is
	// advisory only.
	if !req.Subtotal.IsZero() && !req.Subtotal.Equal(res.Subtotal) {
		log.Debug().
			Str("client_subtotal", req.Subtotal.String()).
			Str("computed_subtotal", res.Subtotal.String()).
			Msg("client subtotal disagrees with cart lines")
	}

	return &res, nil
}
