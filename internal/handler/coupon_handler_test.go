package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trandaiky/techshop-discounts/internal/model"
	"github.com/trandaiky/techshop-discounts/internal/service"
	"github.com/trandaiky/techshop-discounts/internal/validator"
)

// mockCouponService is a mock implementation of CouponServiceInterface.
type mockCouponService struct {
	createFn    func(ctx context.Context, req *model.CreateCouponRequest) error
	getByCodeFn func(ctx context.Context, code string) (*model.CouponResponse, error)
}

func (m *mockCouponService) Create(ctx context.Context, req *model.CreateCouponRequest) error {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil
}

func (m *mockCouponService) GetByCode(ctx context.Context, code string) (*model.CouponResponse, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func setupCouponApp(mockSvc *mockCouponService) *fiber.App {
	app := fiber.New()
	h := NewCouponHandler(mockSvc, validator.New())
	app.Post("/api/coupons", h.CreateCoupon)
	app.Get("/api/coupons/:code", h.GetCoupon)
	return app
}

func TestCreateCoupon_Success(t *testing.T) {
	mockSvc := &mockCouponService{
		createFn: func(ctx context.Context, req *model.CreateCouponRequest) error {
			return nil
		},
	}
	app := setupCouponApp(mockSvc)

	body := `{"code": "SAVE50K", "kind": "fixed", "value": "50000", "scope": "all"}`
	req := httptest.NewRequest(http.MethodPost, "/api/coupons", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode, "Expected 201 Created")

	// Verify empty body
	respBody, _ := io.ReadAll(resp.Body)
	assert.Empty(t, respBody, "Response body should be empty on success")
}

func TestCreateCoupon_MissingCode(t *testing.T) {
	app := setupCouponApp(&mockCouponService{})

	body := `{"kind": "fixed", "value": "50000", "scope": "all"}`
	req := httptest.NewRequest(http.MethodPost, "/api/coupons", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: code is required", result["error"])
}

func TestCreateCoupon_InvalidCodeCharacters(t *testing.T) {
	app := setupCouponApp(&mockCouponService{})

	body := `{"code": "SAVE 50K!", "kind": "fixed", "value": "50000", "scope": "all"}`
	req := httptest.NewRequest(http.MethodPost, "/api/coupons", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: code may only contain letters, digits, dashes and underscores", result["error"])
}

func TestCreateCoupon_InvalidKind(t *testing.T) {
	app := setupCouponApp(&mockCouponService{})

	body := `{"code": "SAVE50K", "kind": "bogus", "value": "50000", "scope": "all"}`
	req := httptest.NewRequest(http.MethodPost, "/api/coupons", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: kind must be fixed or percentage", result["error"])
}

func TestCreateCoupon_ScopedWithoutTarget(t *testing.T) {
	app := setupCouponApp(&mockCouponService{})

	body := `{"code": "STORAGE10", "kind": "percentage", "value": "10", "scope": "category"}`
	req := httptest.NewRequest(http.MethodPost, "/api/coupons", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: target is required for scoped coupons", result["error"])
}

func TestCreateCoupon_Duplicate(t *testing.T) {
	mockSvc := &mockCouponService{
		createFn: func(ctx context.Context, req *model.CreateCouponRequest) error {
			return service.ErrCouponExists
		},
	}
	app := setupCouponApp(mockSvc)

	body := `{"code": "SAVE50K", "kind": "fixed", "value": "50000", "scope": "all"}`
	req := httptest.NewRequest(http.MethodPost, "/api/coupons", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCreateCoupon_ServiceError(t *testing.T) {
	mockSvc := &mockCouponService{
		createFn: func(ctx context.Context, req *model.CreateCouponRequest) error {
			return errors.New("database connection failed")
		},
	}
	app := setupCouponApp(mockSvc)

	body := `{"code": "SAVE50K", "kind": "fixed", "value": "50000", "scope": "all"}`
	req := httptest.NewRequest(http.MethodPost, "/api/coupons", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestGetCoupon_Success(t *testing.T) {
	mockSvc := &mockCouponService{
		getByCodeFn: func(ctx context.Context, code string) (*model.CouponResponse, error) {
			return &model.CouponResponse{
				Coupon: model.Coupon{
					Code:          "save50k",
					Kind:          model.KindFixed,
					Value:         decimal.NewFromInt(50000),
					Scope:         model.ScopeAll,
					RedeemedCount: 2,
				},
				RedeemedBy: []string{"user_001", "user_002"},
			}, nil
		},
	}
	app := setupCouponApp(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/coupons/SAVE50K", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]any
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "save50k", result["code"])
	assert.Equal(t, []any{"user_001", "user_002"}, result["redeemed_by"])
}

func TestGetCoupon_NotFound(t *testing.T) {
	mockSvc := &mockCouponService{
		getByCodeFn: func(ctx context.Context, code string) (*model.CouponResponse, error) {
			return nil, service.ErrCouponNotFound
		},
	}
	app := setupCouponApp(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/coupons/NONEXISTENT", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "coupon not found", result["error"])
}
