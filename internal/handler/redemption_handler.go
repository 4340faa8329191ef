package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/trandaiky/techshop-discounts/internal/model"
	"github.com/trandaiky/techshop-discounts/internal/service"
)

// RedemptionServiceInterface defines the interface for redemption business logic.
type RedemptionServiceInterface interface {
	Redeem(ctx context.Context, userID, code string) error
}

// RedemptionHandler handles HTTP requests for coupon redemption.
type RedemptionHandler struct {
	service   RedemptionServiceInterface
	validator *validator.Validate
}

// NewRedemptionHandler creates a new RedemptionHandler with the given service and validator.
func NewRedemptionHandler(svc RedemptionServiceInterface, v *validator.Validate) *RedemptionHandler {
	return &RedemptionHandler{service: svc, validator: v}
}

// formatRedeemValidationError converts validator errors to stable messages.
func formatRedeemValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "UserID":
				if tag == "required" {
					return "invalid request: user_id is required"
				}
				if tag == "max" {
					return "invalid request: user_id exceeds maximum length of 255"
				}
				return "invalid request: user_id is invalid"
			case "CouponCode":
				if tag == "required" {
					return "invalid request: coupon_code is required"
				}
				if tag == "max" {
					return "invalid request: coupon_code exceeds maximum length of 64"
				}
				return "invalid request: coupon_code is invalid"
			default:
				if tag == "required" {
					return "invalid request: " + field + " is required"
				}
				if tag == "max" {
					return "invalid request: " + field + " exceeds maximum length"
				}
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

// RedeemCoupon handles POST /api/coupons/redeem requests to redeem a coupon.
func (h *RedemptionHandler) RedeemCoupon(c *fiber.Ctx) error {
	var req model.RedeemCouponRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatRedeemValidationError(err)})
	}

	if err := h.service.Redeem(c.Context(), req.UserID, req.CouponCode); err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "coupon not found"})
		case errors.Is(err, service.ErrCouponExpired):
			return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "coupon has expired"})
		case errors.Is(err, service.ErrCouponExhausted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "coupon redemption limit reached"})
		case errors.Is(err, service.ErrAlreadyRedeemed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "coupon already redeemed"})
		}
		log.Error().Err(err).
			Str("user_id", req.UserID).
			Str("coupon_code", req.CouponCode).
			Msg("failed to redeem coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("user_id", req.UserID).
		Str("coupon_code", req.CouponCode).
		Msg("coupon redeemed")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "redeemed"})
}
