// Package discount implements the discount resolution engine: a pure
// computation that reconciles store-wide automatic promotions with a
// user-entered coupon over a cart snapshot.
//
// Automatic and coupon totals are computed independently against original
// prices (never against each other's discounted prices), and exactly one
// source is applied to the final total. When the coupon is worse than the
// automatic discount the engine does not pick for the user: it pins the
// final amount to the automatic total and raises RequiresConfirmation until
// the caller re-resolves with ConfirmCoupon set.
package discount

import (
	"github.com/shopspring/decimal"

	"github.com/trandaiky/techshop-discounts/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Input carries everything a single resolution needs. The coupon, when
// present, has already been looked up and validated by the caller; lookup
// failures arrive as a non-empty CouponError and leave the automatic pass
// untouched.
type Input struct {
	Items         []model.CartItem
	Promotions    []model.Promotion
	Coupon        *model.Coupon
	CouponError   string
	ConfirmCoupon bool
}

// Resolve computes the discount breakdown for a cart snapshot. It performs
// no I/O and holds no state: identical inputs yield identical output.
func Resolve(in Input) model.Resolution {
	subtotal := cartSubtotal(in.Items)

	autoAmount, autoScope := automaticDiscount(in.Items, in.Promotions, subtotal)

	couponAmount := decimal.Zero
	var couponScope []int
	hasCoupon := in.Coupon != nil && in.CouponError == ""
	if hasCoupon {
		couponAmount, couponScope = ruleDiscount(in.Items, in.Coupon.Scope, in.Coupon.Target, in.Coupon.Kind, in.Coupon.Value)
	}

	res := model.Resolution{
		Subtotal:          subtotal,
		AutomaticDiscount: autoAmount,
		CouponDiscount:    couponAmount,
		CouponError:       in.CouponError,
	}

	// Selection policy: one source wins, never the sum of both.
	switch {
	case !hasCoupon:
		res.AppliedSource = model.SourceAutomatic
		res.FinalDiscount = autoAmount
		res.Items = distribute(in.Items, autoScope, autoAmount)
	case couponAmount.GreaterThanOrEqual(autoAmount):
		// Coupon is at least as good; apply it without asking.
		res.AppliedSource = model.SourceManual
		res.FinalDiscount = couponAmount
		res.Items = distribute(in.Items, couponScope, couponAmount)
	case in.ConfirmCoupon:
		// The user insists on the worse coupon. Honor the explicit choice.
		res.AppliedSource = model.SourceManual
		res.FinalDiscount = couponAmount
		res.Items = distribute(in.Items, couponScope, couponAmount)
	default:
		// Coupon is worse than the automatic discount: keep the better
		// default and wait for the user to confirm.
		res.AppliedSource = model.SourceAutomatic
		res.FinalDiscount = autoAmount
		res.RequiresConfirmation = true
		res.Items = distribute(in.Items, autoScope, autoAmount)
	}

	res.Total = subtotal.Sub(res.FinalDiscount)
	return res
}

func cartSubtotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineSubtotal())
	}
	return total
}

// automaticDiscount sums all applicable promotion amounts (additive
// stacking, never compounded). Each rule is capped at its scoped subtotal,
// and the stacked total is capped at the subtotal of the union of scoped
// lines so no line can be discounted below zero. Returns the total and the
// indices of the lines in scope of at least one contributing rule.
func automaticDiscount(items []model.CartItem, promos []model.Promotion, subtotal decimal.Decimal) (decimal.Decimal, []int) {
	total := decimal.Zero
	inScope := make(map[int]bool)

	for _, p := range promos {
		amount, scope := ruleDiscount(items, p.Scope, p.Target, p.Kind, p.Value)
		if !amount.IsPositive() {
			continue
		}
		total = total.Add(amount)
		for _, idx := range scope {
			inScope[idx] = true
		}
	}

	scope := make([]int, 0, len(inScope))
	for i := range items {
		if inScope[i] {
			scope = append(scope, i)
		}
	}

	limit := scopedSubtotal(items, scope)
	if limit.GreaterThan(subtotal) {
		limit = subtotal
	}
	if total.GreaterThan(limit) {
		total = limit
	}
	return total, scope
}

// ruleDiscount computes a single rule's amount against original prices:
// fixed amounts are taken directly, percentages against the scoped
// subtotal. The amount is capped at the scoped subtotal. A scope matching
// zero lines yields a zero amount, not an error.
func ruleDiscount(items []model.CartItem, scope model.Scope, target string, kind model.Kind, value decimal.Decimal) (decimal.Decimal, []int) {
	var scoped []int
	for i, it := range items {
		if itemInScope(it, scope, target) {
			scoped = append(scoped, i)
		}
	}

	sub := scopedSubtotal(items, scoped)
	if !sub.IsPositive() {
		return decimal.Zero, scoped
	}

	var amount decimal.Decimal
	switch kind {
	case model.KindPercentage:
		amount = sub.Mul(value).Div(hundred).Round(2)
	default:
		amount = value
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(sub) {
		amount = sub
	}
	return amount, scoped
}

func itemInScope(it model.CartItem, scope model.Scope, target string) bool {
	switch scope {
	case model.ScopeAll:
		return true
	case model.ScopeCategory:
		return it.Category == target
	case model.ScopeProduct:
		return it.ProductID == target
	default:
		// Unknown scope matches nothing rather than widening to the cart.
		return false
	}
}

func scopedSubtotal(items []model.CartItem, scope []int) decimal.Decimal {
	total := decimal.Zero
	for _, idx := range scope {
		total = total.Add(items[idx].LineSubtotal())
	}
	return total
}

// distribute projects the final amount onto the cart lines: in-scope lines
// carry a share proportional to their contribution to the scoped subtotal,
// out-of-scope lines keep their original price. Shares are rounded down to
// two places and the remainder is assigned to the last in-scope line. No
// share exceeds its line's subtotal: excess from a capped line is pushed
// back onto earlier lines with headroom, so the per-line amounts still sum
// to the final amount exactly and no line goes below zero.
func distribute(items []model.CartItem, scope []int, amount decimal.Decimal) []model.ResolvedItem {
	resolved := make([]model.ResolvedItem, len(items))
	for i, it := range items {
		resolved[i] = model.ResolvedItem{
			CartItem:            it,
			DiscountAmount:      decimal.Zero,
			DiscountedSubtotal:  it.LineSubtotal(),
			DiscountedUnitPrice: it.UnitPrice,
		}
	}

	sub := scopedSubtotal(items, scope)
	if len(scope) == 0 || !amount.IsPositive() || !sub.IsPositive() {
		return resolved
	}

	shares := make([]decimal.Decimal, len(scope))
	allocated := decimal.Zero
	for n, idx := range scope {
		line := items[idx].LineSubtotal()
		var share decimal.Decimal
		if n == len(scope)-1 {
			share = amount.Sub(allocated)
		} else {
			share = amount.Mul(line).Div(sub).RoundDown(2)
		}
		if share.GreaterThan(line) {
			share = line
		}
		shares[n] = share
		allocated = allocated.Add(share)
	}

	// Capping the last line can leave part of the amount unallocated; the
	// amount never exceeds the scoped subtotal, so earlier lines always have
	// the headroom to absorb it.
	for n := len(scope) - 1; n >= 0; n-- {
		leftover := amount.Sub(allocated)
		if !leftover.IsPositive() {
			break
		}
		room := items[scope[n]].LineSubtotal().Sub(shares[n])
		if room.GreaterThan(leftover) {
			room = leftover
		}
		shares[n] = shares[n].Add(room)
		allocated = allocated.Add(room)
	}

	for n, idx := range scope {
		line := items[idx].LineSubtotal()
		share := shares[n]
		resolved[idx].DiscountAmount = share
		resolved[idx].DiscountedSubtotal = line.Sub(share)
		if items[idx].Quantity > 0 {
			resolved[idx].DiscountedUnitPrice = line.Sub(share).
				DivRound(decimal.NewFromInt(int64(items[idx].Quantity)), 2)
		}
	}
	return resolved
}
