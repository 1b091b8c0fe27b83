package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"taxiledger/internal/app/apptest"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/pkg/logger"
)

type testAPI struct {
	*apptest.Fixture
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	f := apptest.New(t)
	core, _ := observer.New(zapcore.InfoLevel)
	return &testAPI{
		Fixture: f,
		router: NewRouter(RouterConfig{
			Container: f.Container,
			Logger:    logger.NewFromCore(core),
			Version:   "test",
		}),
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator-ID", "cashier-1")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, body = api.do(t, http.MethodGet, "/health/info", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", body["version"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAccountLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ownerID := api.Directory.Register(entity.AccountMember, "Ana Perez")

	rec, account := api.do(t, http.MethodPost, "/api/v1/accounts", map[string]any{
		"kind":    "MEMBER",
		"ownerId": ownerID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	accountID := account["id"].(string)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/accounts", map[string]any{
		"kind":    "MEMBER",
		"ownerId": ownerID.String(),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, movement := api.do(t, http.MethodPost, "/api/v1/account-movements", map[string]any{
		"account":         map[string]any{"kind": "MEMBER", "id": accountID},
		"kind":            "MONTHLY_EXPENSE",
		"amount":          "300",
		"period":          "2025-01",
		"postImmediately": true,
		"postDate":        "01/02/2025",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, movement["added"])
	assert.Equal(t, "01/02/2025", movement["addedDate"])

	rec, balance := api.do(t, http.MethodGet, "/api/v1/accounts/member/"+accountID+"/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "-300", balance["balance"])

	rec, summary := api.do(t, http.MethodGet, "/api/v1/account-movements/"+movement["id"].(string)+"/settlement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "300", summary["outstanding"])
	assert.Equal(t, false, summary["fullyPaid"])

	rec, _ = api.do(t, http.MethodDelete, "/api/v1/accounts/member/"+accountID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestErrorResponses(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodGet, "/api/v1/accounts/boat/"+id.New().String(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	rec, body = api.do(t, http.MethodGet, "/api/v1/accounts/vehicle/"+id.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	rec, body = api.do(t, http.MethodGet, "/api/v1/receipts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id", body["details"].(map[string]any)["param"])

	rec, body = api.do(t, http.MethodPost, "/api/v1/money-movements", map[string]any{
		"kind":         "CASH",
		"movementType": "OTHER",
		"amount":       "0",
		"date":         "03/02/2025",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount", body["details"].(map[string]any)["field"])
}

func TestCashMovementUpdatesRegister(t *testing.T) {
	api := newTestAPI(t)

	rec, movement := api.do(t, http.MethodPost, "/api/v1/money-movements", map[string]any{
		"kind":         "CASH",
		"movementType": "OTHER",
		"isIncome":     true,
		"amount":       "150.50",
		"date":         "03/02/2025",
		"description":  "office float",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "CAJ-2025-00001", movement["number"])

	rec, register := api.do(t, http.MethodGet, "/api/v1/cash", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "150.5", register["amount"])

	rec, _ = api.do(t, http.MethodDelete, "/api/v1/money-movements/"+movement["id"].(string)+"?date=04/02/2025", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, register = api.do(t, http.MethodGet, "/api/v1/cash", nil)
	assert.Equal(t, "0", register["amount"])
}

func TestJobs(t *testing.T) {
	api := newTestAPI(t)

	for i := 0; i < 2; i++ {
		rec, _ := api.do(t, http.MethodPost, "/api/v1/jobs/open-day", map[string]any{"date": "03/02/2025"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec, report := api.do(t, http.MethodPost, "/api/v1/jobs/close-month", map[string]any{"period": "2025-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-01", report["period"])

	rec, body := api.do(t, http.MethodPost, "/api/v1/jobs/rebuild-everything", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	rec, _ = api.do(t, http.MethodPost, "/api/v1/jobs/close-month", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
