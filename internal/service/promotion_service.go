package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trandaiky/techshop-discounts/internal/model"
)

// PromotionRepositoryInterface defines the interface for promotion data access.
type PromotionRepositoryInterface interface {
	Insert(ctx context.Context, promo *model.Promotion) error
	ListActive(ctx context.Context, at time.Time) ([]model.Promotion, error)
}

// PromotionService provides business logic for automatic promotions.
type PromotionService struct {
	repo PromotionRepositoryInterface
}

// NewPromotionService creates a new PromotionService with the given repository.
func NewPromotionService(repo PromotionRepositoryInterface) *PromotionService {
	return &PromotionService{repo: repo}
}

// Create creates a new automatic promotion and returns it with its assigned id.
// Returns ErrInvalidRequest if the discount value or validity window is inconsistent.
func (s *PromotionService) Create(ctx context.Context, req *model.CreatePromotionRequest) (*model.Promotion, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	if !req.Value.IsPositive() {
		return nil, ErrInvalidRequest
	}
	if req.Kind == model.KindPercentage && req.Value.GreaterThan(oneHundred) {
		return nil, ErrInvalidRequest
	}
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return nil, ErrInvalidRequest
	}

	promo := &model.Promotion{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Scope:    req.Scope,
		Target:   req.Target,
		Kind:     req.Kind,
		Value:    req.Value,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Active:   true,
	}
	if err := s.repo.Insert(ctx, promo); err != nil {
		return nil, fmt.Errorf("insert promotion: %w", err)
	}
	return promo, nil
}

// ListActive returns the promotions currently in effect.
func (s *PromotionService) ListActive(ctx context.Context) ([]model.Promotion, error) {
	promos, err := s.repo.ListActive(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}
	return promos, nil
}
