package service

import "errors"

var (
	// ErrCouponExists is returned when attempting to create a coupon whose code already exists
	ErrCouponExists = errors.New("coupon already exists")

	// ErrCouponNotFound is returned when a coupon code cannot be resolved
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponExpired is returned when a coupon is outside its validity window
	ErrCouponExpired = errors.New("coupon expired")

	// ErrCouponExhausted is returned when a coupon's redemption limit is reached
	ErrCouponExhausted = errors.New("coupon redemption limit reached")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAlreadyRedeemed is returned when a user attempts to redeem a coupon they already redeemed
	ErrAlreadyRedeemed = errors.New("coupon already redeemed by user")
)
