package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/takeaway/internal/domain"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(string, string, string, map[string]interface{})         {}
func (nopLogger) Debug(string, string, string, map[string]interface{})        {}
func (nopLogger) Warn(string, string, string, map[string]interface{})         {}
func (nopLogger) Error(string, string, string, map[string]interface{}, error) {}

// fakeService lets each test override just the method it exercises.
type fakeService struct {
	submit       func(ctx context.Context, userID int64, cmd interfaces.SubmitOrderCommand) (*interfaces.SubmitOrderResult, error)
	cancelByUser func(ctx context.Context, userID, orderID int64) error
	accept       func(ctx context.Context, orderID int64) error
	details      func(ctx context.Context, orderID int64) (*interfaces.OrderDetailsResult, error)
}

func (f *fakeService) Submit(ctx context.Context, userID int64, cmd interfaces.SubmitOrderCommand) (*interfaces.SubmitOrderResult, error) {
	return f.submit(ctx, userID, cmd)
}

func (f *fakeService) Pay(context.Context, int64, string) (*interfaces.PrepayTicket, error) {
	return &interfaces.PrepayTicket{}, nil
}

func (f *fakeService) ConfirmPayment(context.Context, string) error { return nil }

func (f *fakeService) CancelByUser(ctx context.Context, userID, orderID int64) error {
	return f.cancelByUser(ctx, userID, orderID)
}

func (f *fakeService) Accept(ctx context.Context, orderID int64) error {
	return f.accept(ctx, orderID)
}

func (f *fakeService) Reject(context.Context, int64, string) error { return nil }
func (f *fakeService) Cancel(context.Context, int64, string) error { return nil }
func (f *fakeService) Dispatch(context.Context, int64) error       { return nil }
func (f *fakeService) Complete(context.Context, int64) error       { return nil }
func (f *fakeService) Reminder(context.Context, int64) error       { return nil }
func (f *fakeService) Repeat(context.Context, int64, int64) error  { return nil }

func (f *fakeService) Details(ctx context.Context, orderID int64) (*interfaces.OrderDetailsResult, error) {
	return f.details(ctx, orderID)
}

func (f *fakeService) PageForUser(context.Context, int64, *domain.Status, int, int) (*interfaces.OrderPageResult, error) {
	return &interfaces.OrderPageResult{}, nil
}

func (f *fakeService) PageForAdmin(context.Context, domain.OrderPageQuery) (*interfaces.OrderPageResult, error) {
	return &interfaces.OrderPageResult{}, nil
}

func (f *fakeService) Statistics(context.Context) (*interfaces.OrderStatistics, error) {
	return &interfaces.OrderStatistics{}, nil
}

func newMux(svc interfaces.OrderService) *http.ServeMux {
	mux := http.NewServeMux()
	NewOrderHandler(svc, nopLogger{}).Register(mux)
	NewAdminHandler(svc, nopLogger{}).Register(mux)
	return mux
}

func TestSubmitEndpoint(t *testing.T) {
	svc := &fakeService{
		submit: func(_ context.Context, userID int64, cmd interfaces.SubmitOrderCommand) (*interfaces.SubmitOrderResult, error) {
			assert.Equal(t, int64(1), userID)
			assert.Equal(t, int64(10), cmd.AddressBookID)
			return &interfaces.SubmitOrderResult{
				OrderID:     42,
				OrderNumber: "202503141230451234",
				OrderTime:   time.Date(2025, 3, 14, 12, 30, 45, 0, time.UTC),
				Amount:      42.50,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/user/order/submit", strings.NewReader(`{"address_book_id":10}`))
	req.Header.Set("X-User-ID", "1")
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SubmitOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.OrderID)
	assert.Equal(t, "202503141230451234", resp.OrderNumber)
	assert.Equal(t, 42.50, resp.Amount)
}

func TestSubmitRequiresUserIdentity(t *testing.T) {
	svc := &fakeService{}

	req := httptest.NewRequest(http.MethodPost, "/user/order/submit", strings.NewReader(`{"address_book_id":10}`))
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitEmptyCartMapsToBadRequest(t *testing.T) {
	svc := &fakeService{
		submit: func(context.Context, int64, interfaces.SubmitOrderCommand) (*interfaces.SubmitOrderResult, error) {
			return nil, domain.ErrCartEmpty
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/user/order/submit", strings.NewReader(`{"address_book_id":10}`))
	req.Header.Set("X-User-ID", "1")
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelConflictMapsTo409(t *testing.T) {
	svc := &fakeService{
		cancelByUser: func(_ context.Context, userID, orderID int64) error {
			assert.Equal(t, int64(1), userID)
			assert.Equal(t, int64(42), orderID)
			return &domain.StatusConflictError{
				Expected: domain.StatusToBeConfirmed,
				Actual:   domain.StatusDeliveryInProgress,
			}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/user/order/cancel/42", nil)
	req.Header.Set("X-User-ID", "1")
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDetailsNotFoundMapsTo404(t *testing.T) {
	svc := &fakeService{
		details: func(context.Context, int64) (*interfaces.OrderDetailsResult, error) {
			return nil, domain.ErrOrderNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/user/order/details/404", nil)
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminConfirmEndpoint(t *testing.T) {
	var accepted int64
	svc := &fakeService{
		accept: func(_ context.Context, orderID int64) error {
			accepted = orderID
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/admin/order/confirm", strings.NewReader(`{"id":42}`))
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), accepted)
}

func TestAdminConfirmRejectsMissingID(t *testing.T) {
	svc := &fakeService{}

	req := httptest.NewRequest(http.MethodPut, "/admin/order/confirm", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
