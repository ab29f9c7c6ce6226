package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mca-deal-ledger/internal/domain/audit"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditHandler_GetByDeal(t *testing.T) {
	logger := newTestLogger()

	t.Run("Paginated", func(t *testing.T) {
		mockService := new(MockAuditService)
		h := NewAuditHandler(logger, mockService)

		index := 4
		records := []*audit.Record{{
			EventID:      uuid.New(),
			Type:         shared.EventTypePaymentStatusChange,
			DealID:       "D101",
			PaymentIndex: &index,
			Details:      map[string]string{"status": "paid"},
			OccurredAt:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			RecordedAt:   time.Date(2025, 3, 10, 9, 0, 1, 0, time.UTC),
		}}
		mockService.On("DealTrail", mock.Anything, "D101", 2, 5).Return(records, int64(11), nil).Once()

		router := setupTestRouter()
		router.GET("/deals/:id/audit", h.GetByDeal)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/deals/D101/audit?page=2&per_page=5", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp AuditTrailResponse
		env := decodeEnvelope(t, rr, &resp)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 3, env.Meta.TotalPages)
		assert.Equal(t, 11, env.Meta.TotalItems)
		require.Len(t, resp.Records, 1)
		assert.Equal(t, "payment.status_changed", resp.Records[0].Type)
		assert.Equal(t, "paid", resp.Records[0].Details["status"])
	})

	t.Run("DefaultsApplied", func(t *testing.T) {
		mockService := new(MockAuditService)
		h := NewAuditHandler(logger, mockService)
		mockService.On("DealTrail", mock.Anything, "D101", 1, 20).Return([]*audit.Record{}, int64(0), nil).Once()

		router := setupTestRouter()
		router.GET("/deals/:id/audit", h.GetByDeal)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/deals/D101/audit", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		mockService := new(MockAuditService)
		h := NewAuditHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/deals/:id/audit", h.GetByDeal)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/deals/D101/audit?per_page=500", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("StoreError", func(t *testing.T) {
		mockService := new(MockAuditService)
		h := NewAuditHandler(logger, mockService)
		mockService.On("DealTrail", mock.Anything, "D101", 1, 20).Return(nil, int64(0), errors.New("mongo unavailable")).Once()

		router := setupTestRouter()
		router.GET("/deals/:id/audit", h.GetByDeal)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/deals/D101/audit", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
