package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/trandaiky/techshop-discounts/internal/model"
)

// BuildSuggesterInterface defines the interface for the build-suggestion client.
type BuildSuggesterInterface interface {
	Suggest(ctx context.Context, requirement string) (*model.BuildSuggestion, error)
}

// SuggestHandler handles HTTP requests for PC build suggestions.
type SuggestHandler struct {
	client    BuildSuggesterInterface
	validator *validator.Validate
}

// NewSuggestHandler creates a new SuggestHandler with the given client and validator.
func NewSuggestHandler(client BuildSuggesterInterface, v *validator.Validate) *SuggestHandler {
	return &SuggestHandler{client: client, validator: v}
}

// formatSuggestValidationError converts validator errors to stable messages.
func formatSuggestValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if fe.Field() == "Requirement" {
				if fe.Tag() == "required" {
					return "invalid request: requirement is required"
				}
				if fe.Tag() == "notblank" {
					return "invalid request: requirement cannot be whitespace only"
				}
				return "invalid request: requirement exceeds maximum length of 2000"
			}
		}
	}
	return "invalid request"
}

// SuggestBuild handles POST /api/builds/suggest requests by forwarding the
// requirement to the external suggestion backend.
func (h *SuggestHandler) SuggestBuild(c *fiber.Ctx) error {
	var req model.SuggestBuildRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatSuggestValidationError(err)})
	}

	suggestion, err := h.client.Suggest(c.Context(), req.Requirement)
	if err != nil {
		log.Error().Err(err).Msg("build suggestion backend failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "suggestion service unavailable"})
	}

	return c.JSON(suggestion)
}
