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

// PromotionServiceInterface defines the interface for promotion business logic.
type PromotionServiceInterface interface {
	Create(ctx context.Context, req *model.CreatePromotionRequest) (*model.Promotion, error)
	ListActive(ctx context.Context) ([]model.Promotion, error)
}

// PromotionHandler handles HTTP requests for automatic promotions.
type PromotionHandler struct {
	service   PromotionServiceInterface
	validator *validator.Validate
}

// NewPromotionHandler creates a new PromotionHandler with the given service and validator.
func NewPromotionHandler(svc PromotionServiceInterface, v *validator.Validate) *PromotionHandler {
	return &PromotionHandler{service: svc, validator: v}
}

// formatPromotionValidationError converts validator errors to stable messages.
func formatPromotionValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "Name":
				if tag == "required" {
					return "invalid request: name is required"
				}
				if tag == "notblank" {
					return "invalid request: name cannot be whitespace only"
				}
				return "invalid request: name is invalid"
			case "Kind":
				return "invalid request: kind must be fixed or percentage"
			case "Scope":
				return "invalid request: scope must be all, category or product"
			case "Target":
				return "invalid request: target is required for scoped promotions"
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

// CreatePromotion handles POST /api/promotions requests to create a promotion.
func (h *PromotionHandler) CreatePromotion(c *fiber.Ctx) error {
	var req model.CreatePromotionRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatPromotionValidationError(err)})
	}

	promo, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Str("promotion_name", req.Name).Msg("failed to create promotion")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(promo)
}

// ListPromotions handles GET /api/promotions requests to list active promotions.
func (h *PromotionHandler) ListPromotions(c *fiber.Ctx) error {
	promos, err := h.service.ListActive(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list promotions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(promos)
}
