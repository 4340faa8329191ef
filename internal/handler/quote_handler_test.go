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
	"github.com/trandaiky/techshop-discounts/internal/service"
	"github.com/trandaiky/techshop-discounts/internal/validator"
)

// mockDiscountService is a mock implementation of DiscountServiceInterface.
type mockDiscountService struct {
	quoteFn func(ctx context.Context, req *model.QuoteRequest) (*model.Resolution, error)
}

func (m *mockDiscountService) Quote(ctx context.Context, req *model.QuoteRequest) (*model.Resolution, error) {
	if m.quoteFn != nil {
		return m.quoteFn(ctx, req)
	}
	return &model.Resolution{AppliedSource: model.SourceAutomatic}, nil
}

func setupQuoteApp(mockSvc *mockDiscountService) *fiber.App {
	app := fiber.New()
	h := NewQuoteHandler(mockSvc, validator.New())
	app.Post("/api/discounts/quote", h.Quote)
	return app
}

func TestQuote_Success(t *testing.T) {
	mockSvc := &mockDiscountService{
		quoteFn: func(ctx context.Context, req *model.QuoteRequest) (*model.Resolution, error) {
			return &model.Resolution{
				Subtotal:             decimal.NewFromInt(1000000),
				AutomaticDiscount:    decimal.NewFromInt(100000),
				CouponDiscount:       decimal.NewFromInt(50000),
				AppliedSource:        model.SourceAutomatic,
				FinalDiscount:        decimal.NewFromInt(100000),
				Total:                decimal.NewFromInt(900000),
				RequiresConfirmation: true,
			}, nil
		},
	}
	app := setupQuoteApp(mockSvc)

	body := `{"items": [{"product_id": "cpu-5600", "unit_price": "400000", "quantity": 1, "category": "cpu"}], "coupon_code": "SAVE50K"}`
	req := httptest.NewRequest(http.MethodPost, "/api/discounts/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]any
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "automatic", result["applied_source"])
	assert.Equal(t, true, result["requires_confirmation"])
}

func TestQuote_MissingItems(t *testing.T) {
	app := setupQuoteApp(&mockDiscountService{})

	body := `{"coupon_code": "SAVE50K"}`
	req := httptest.NewRequest(http.MethodPost, "/api/discounts/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: items are required", result["error"])
}

func TestQuote_ZeroQuantity(t *testing.T) {
	app := setupQuoteApp(&mockDiscountService{})

	body := `{"items": [{"product_id": "cpu-5600", "unit_price": "400000", "quantity": 0}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/discounts/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: quantity must be at least 1", result["error"])
}

func TestQuote_MalformedBody(t *testing.T) {
	app := setupQuoteApp(&mockDiscountService{})

	req := httptest.NewRequest(http.MethodPost, "/api/discounts/quote", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestQuote_ServiceInvalidRequest(t *testing.T) {
	mockSvc := &mockDiscountService{
		quoteFn: func(ctx context.Context, req *model.QuoteRequest) (*model.Resolution, error) {
			return nil, service.ErrInvalidRequest
		},
	}
	app := setupQuoteApp(mockSvc)

	body := `{"items": [{"product_id": "p1", "unit_price": "-5", "quantity": 1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/discounts/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestQuote_ServiceError(t *testing.T) {
	mockSvc := &mockDiscountService{
		quoteFn: func(ctx context.Context, req *model.QuoteRequest) (*model.Resolution, error) {
			return nil, errors.New("database connection failed")
		},
	}
	app := setupQuoteApp(mockSvc)

	body := `{"items": [{"product_id": "p1", "unit_price": "100", "quantity": 1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/discounts/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestQuote_CouponErrorCarriedInBody(t *testing.T) {
	mockSvc := &mockDiscountService{
		quoteFn: func(ctx context.Context, req *model.QuoteRequest) (*model.Resolution, error) {
			return &model.Resolution{
				Subtotal:      decimal.NewFromInt(1000),
				AppliedSource: model.SourceAutomatic,
				CouponError:   "coupon code not found",
			}, nil
		},
	}
	app := setupQuoteApp(mockSvc)

	body := `{"items": [{"product_id": "p1", "unit_price": "1000", "quantity": 1}], "coupon_code": "NOPE"}`
	req := httptest.NewRequest(http.MethodPost, "/api/discounts/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "coupon failures are not HTTP errors")

	var result map[string]any
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "coupon code not found", result["coupon_error"])
}
