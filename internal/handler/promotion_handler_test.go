package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trandaiky/techshop-discounts/internal/model"
	"github.com/trandaiky/techshop-discounts/internal/validator"
)

// mockPromotionService is a mock implementation of PromotionServiceInterface.
type mockPromotionService struct {
	createFn     func(ctx context.Context, req *model.CreatePromotionRequest) (*model.Promotion, error)
	listActiveFn func(ctx context.Context) ([]model.Promotion, error)
}

func (m *mockPromotionService) Create(ctx context.Context, req *model.CreatePromotionRequest) (*model.Promotion, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil, nil
}

func (m *mockPromotionService) ListActive(ctx context.Context) ([]model.Promotion, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

func setupPromotionApp(mockSvc *mockPromotionService) *fiber.App {
	app := fiber.New()
	h := NewPromotionHandler(mockSvc, validator.New())
	app.Post("/api/promotions", h.CreatePromotion)
	app.Get("/api/promotions", h.ListPromotions)
	return app
}

func TestCreatePromotion_Success(t *testing.T) {
	mockSvc := &mockPromotionService{
		createFn: func(ctx context.Context, req *model.CreatePromotionRequest) (*model.Promotion, error) {
			return &model.Promotion{
				ID:     "9f3c2a1e-0000-4000-8000-000000000001",
				Name:   req.Name,
				Scope:  req.Scope,
				Kind:   req.Kind,
				Value:  req.Value,
				Active: true,
			}, nil
		},
	}
	app := setupPromotionApp(mockSvc)

	body := `{"name": "Summer Sale", "scope": "all", "kind": "percentage", "value": "10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/promotions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result map[string]any
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "Summer Sale", result["name"])
	assert.Equal(t, true, result["active"])
	assert.NotEmpty(t, result["id"])
}

func TestCreatePromotion_MissingName(t *testing.T) {
	app := setupPromotionApp(&mockPromotionService{})

	body := `{"scope": "all", "kind": "percentage", "value": "10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/promotions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: name is required", result["error"])
}

func TestCreatePromotion_ScopedWithoutTarget(t *testing.T) {
	app := setupPromotionApp(&mockPromotionService{})

	body := `{"name": "SSD Sale", "scope": "category", "kind": "percentage", "value": "15"}`
	req := httptest.NewRequest(http.MethodPost, "/api/promotions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: target is required for scoped promotions", result["error"])
}

func TestCreatePromotion_ServiceError(t *testing.T) {
	mockSvc := &mockPromotionService{
		createFn: func(ctx context.Context, req *model.CreatePromotionRequest) (*model.Promotion, error) {
			return nil, errors.New("database connection failed")
		},
	}
	app := setupPromotionApp(mockSvc)

	body := `{"name": "Summer Sale", "scope": "all", "kind": "percentage", "value": "10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/promotions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestListPromotions_Success(t *testing.T) {
	mockSvc := &mockPromotionService{
		listActiveFn: func(ctx context.Context) ([]model.Promotion, error) {
			return []model.Promotion{
				{
					ID:     "9f3c2a1e-0000-4000-8000-000000000001",
					Name:   "Summer Sale",
					Scope:  model.ScopeAll,
					Kind:   model.KindPercentage,
					Value:  decimal.NewFromInt(10),
					Active: true,
				},
				{
					ID:     "9f3c2a1e-0000-4000-8000-000000000002",
					Name:   "SSD Clearance",
					Scope:  model.ScopeCategory,
					Target: "storage",
					Kind:   model.KindFixed,
					Value:  decimal.NewFromInt(50000),
					Active: true,
				},
			}, nil
		},
	}
	app := setupPromotionApp(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/promotions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result []map[string]any
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Summer Sale", result[0]["name"])
	assert.Equal(t, "SSD Clearance", result[1]["name"])
}

func TestListPromotions_Empty(t *testing.T) {
	mockSvc := &mockPromotionService{
		listActiveFn: func(ctx context.Context) ([]model.Promotion, error) {
			return []model.Promotion{}, nil
		},
	}
	app := setupPromotionApp(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/promotions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result []map[string]any
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestListPromotions_ServiceError(t *testing.T) {
	mockSvc := &mockPromotionService{
		listActiveFn: func(ctx context.Context) ([]model.Promotion, error) {
			return nil, errors.New("database connection failed")
		},
	}
	app := setupPromotionApp(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/promotions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
