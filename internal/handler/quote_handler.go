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

// DiscountServiceInterface defines the interface for discount resolution logic.
type DiscountServiceInterface interface {
	Quote(ctx context.Context, req *model.QuoteRequest) (*model.Resolution, error)
}

// QuoteHandler handles HTTP requests for discount resolution.
type QuoteHandler struct {
	service   DiscountServiceInterface
	validator *validator.Validate
}

// NewQuoteHandler creates a new QuoteHandler with the given service and validator.
func NewQuoteHandler(svc DiscountServiceInterface, v *validator.Validate) *QuoteHandler {
	return &QuoteHandler{service: svc, validator: v}
}

// formatQuoteValidationError converts validator errors to stable messages.
func formatQuoteValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "Items":
				if tag == "required" || tag == "min" {
					return "invalid request: items are required"
				}
				return "invalid request: items are invalid"
			case "ProductID":
				if tag == "required" {
					return "invalid request: product_id is required"
				}
				if tag == "notblank" {
					return "invalid request: product_id cannot be whitespace only"
				}
				return "invalid request: product_id is invalid"
			case "Quantity":
				return "invalid request: quantity must be at least 1"
			case "CouponCode":
				return "invalid request: coupon_code exceeds maximum length of 64"
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

// Quote handles POST /api/discounts/quote requests to resolve the discount
// breakdown for a cart snapshot. Coupon failures are carried inside the
// resolution body, not as HTTP errors.
func (h *QuoteHandler) Quote(c *fiber.Ctx) error {
	var req model.QuoteRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatQuoteValidationError(err)})
	}

	resolution, err := h.service.Quote(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Int("items", len(req.Items)).Msg("failed to resolve discounts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	if resolution.RequiresConfirmation {
		log.Info().
			Str("coupon_code", req.CouponCode).
			Str("automatic_discount", resolution.AutomaticDiscount.String()).
			Str("coupon_discount", resolution.CouponDiscount.String()).
			Msg("coupon is worse than automatic discount, confirmation required")
	}

	return c.JSON(resolution)
}
