package mca_api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/config"
	"github.com/mca-deal-ledger/internal/data/memory"
	"github.com/mca-deal-ledger/internal/mca_api/service"
	"github.com/mca-deal-ledger/internal/platform/messaging/producers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	now := time.Now()
	clock := func() time.Time { return now }
	publisher := producers.NoopPublisher{}

	dealRepo := memory.NewDealRepository()
	paymentRepo := memory.NewPaymentRepository()
	participantRepo := memory.NewParticipantRepository()
	allocationRepo := memory.NewSyndicationRepository()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 0, ShutdownTimeout: time.Second},
		Ledger: config.LedgerConfig{SeriesWindowDays: 7},
	}

	deals := service.NewDealService(logger, dealRepo, paymentRepo, publisher, clock)
	srv := NewServer(logger, cfg, Services{
		Deals:        deals,
		Payments:     service.NewPaymentService(logger, paymentRepo, publisher, clock),
		Syndications: service.NewSyndicationService(logger, dealRepo, participantRepo, allocationRepo, publisher, clock),
		Participants: service.NewParticipantService(logger, participantRepo, publisher, clock),
		Metrics:      service.NewMetricsService(dealRepo, paymentRepo, allocationRepo, clock),
	})
	return srv.Handler()
}

type apiResponse struct {
	Data  map[string]interface{} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return rr.Code, resp
}

func TestServer_LedgerWorkflow(t *testing.T) {
	h := newTestServer(t)

	for _, name := range []string{"Albert", "jacobo"} {
		code, _ := call(t, h, http.MethodPost, "/api/v1/participants", `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, code)
	}

	code, resp := call(t, h, http.MethodPost, "/api/v1/deals", `{"name":"Green Cafe","size":30000,"rate":1.49,"term":30}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "D101", resp.Data["id"])
	assert.Equal(t, "44700", resp.Data["total_obligation"])

	code, resp = call(t, h, http.MethodPut, "/api/v1/deals/D101/syndication", `{"shares":{"albert":40,"jacobo":50}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "CONSTRAINT_VIOLATION", resp.Error.Code)

	code, _ = call(t, h, http.MethodPut, "/api/v1/deals/D101/syndication", `{"shares":{"albert":40,"jacobo":60}}`)
	require.Equal(t, http.StatusOK, code)

	code, resp = call(t, h, http.MethodGet, "/api/v1/deals/D101/syndication/albert", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "12000", resp.Data["amount"])

	code, _ = call(t, h, http.MethodPut, "/api/v1/deals/D101/payments/0/status", `{"status":"paid"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, h, http.MethodPut, "/api/v1/deals/D101/payments/1/status", `{"status":"missed"}`)
	require.Equal(t, http.StatusOK, code)

	code, resp = call(t, h, http.MethodPost, "/api/v1/deals/D101/payments/2/modifications", `{"amount":1000,"note":"short"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "modified", resp.Data["status"])
	assert.Equal(t, "1490", resp.Data["original_amount"])

	code, resp = call(t, h, http.MethodPut, "/api/v1/deals/D101/payments/30/status", `{"status":"paid"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	code, resp = call(t, h, http.MethodGet, "/api/v1/metrics/summary", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1490", resp.Data["total_collected"])
	assert.EqualValues(t, 1, resp.Data["missed_count"])

	code, resp = call(t, h, http.MethodGet, "/api/v1/deals/D101/progress", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, resp.Data["percent"])

	code, resp = call(t, h, http.MethodGet, "/api/v1/metrics/daily-collections", "")
	require.Equal(t, http.StatusOK, code)
	series, ok := resp.Data["series"].([]interface{})
	require.True(t, ok)
	assert.Len(t, series, 7)

	code, _ = call(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestServer_AuditRouteRequiresAuditStore(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals/D101/audit", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
