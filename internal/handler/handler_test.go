package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-api/internal/metrics"
	"ledger-api/internal/model"
	"ledger-api/internal/repository/memory"
	"ledger-api/internal/service"
	"ledger-api/internal/validation"
)

type brokenAccountStore struct{}

func (brokenAccountStore) Save(context.Context, *model.Account) error { return errors.New("db down") }

func (brokenAccountStore) GetByID(context.Context, string) (*model.Account, error) {
	return nil, errors.New("db down")
}

func (brokenAccountStore) GetByEmail(context.Context, string) (*model.Account, error) {
	return nil, errors.New("db down")
}

func newTestRouter(t *testing.T, accountStore service.AccountStore) *mux.Router {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	accounts := service.NewAccountService(accountStore, service.PlainPasswordEncoder{}, nil, logger)
	assets := service.NewAssetService(memory.NewAssetStore(), service.AssetServiceOptions{}, logger)
	facade := service.NewAccountAssetService(accounts, assets, logger)
	orders := service.NewOrderService(accounts, memory.NewOrderStore(), nil, nil, logger)

	return NewRouter(
		NewAccountHandler(accounts, facade, logger),
		NewOrderHandler(orders, logger),
		RouterOptions{AllowedOrigin: "*", Metrics: metrics.New()},
		logger,
	)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&out))
	return out
}

const signupBody = `{"name":"Gustavo B","email":"a@example.com","password":"Test1234","document":"11144477735"}`

func signup(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/signup", signupBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[model.SignupOutput](t, rec)
	require.True(t, validation.IsValidUUID(out.AccountID))
	return out.AccountID
}

func TestSignupAndGetAccount(t *testing.T) {
	router := newTestRouter(t, memory.NewAccountStore())
	accountID := signup(t, router)

	rec := do(t, router, http.MethodGet, "/accounts/"+accountID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[map[string]any](t, rec)
	assert.Equal(t, accountID, body["accountId"])
	assert.Equal(t, "Gustavo B", body["name"])
	assert.Equal(t, "a@example.com", body["email"])
	assert.Equal(t, "11144477735", body["document"])
	assert.NotContains(t, body, "password")
	assert.Equal(t, []any{}, body["assets"])
}

func TestSignupFailures(t *testing.T) {
	router := newTestRouter(t, memory.NewAccountStore())
	signup(t, router)

	rec := do(t, router, http.MethodPost, "/signup", signupBody)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Duplicated email", decode[errorResponse](t, rec).Error)

	rec = do(t, router, http.MethodPost, "/signup", `{"name":"Gustavo","email":"b@example.com","password":"Test1234","document":"11144477735"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid name format. Name must contain first and last name.", decode[errorResponse](t, rec).Error)

	rec = do(t, router, http.MethodPost, "/signup", `{"name":`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid request body", decode[errorResponse](t, rec).Error)
}

func TestGetAccountFailures(t *testing.T) {
	router := newTestRouter(t, memory.NewAccountStore())

	rec := do(t, router, http.MethodGet, "/accounts/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invalid accountId format.", decode[errorResponse](t, rec).Error)

	rec = do(t, router, http.MethodGet, "/accounts/6f813af6-f151-4cbf-a423-6135909daa51", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Account not found", decode[errorResponse](t, rec).Error)
}

func TestStorageFailureIsInternalError(t *testing.T) {
	router := newTestRouter(t, brokenAccountStore{})

	rec := do(t, router, http.MethodPost, "/signup", signupBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode[errorResponse](t, rec).Error)
}

func TestDepositAndWithdraw(t *testing.T) {
	router := newTestRouter(t, memory.NewAccountStore())
	accountID := signup(t, router)

	for i := 0; i < 2; i++ {
		rec := do(t, router, http.MethodPost, "/deposit", `{"accountId":"`+accountID+`","assetId":"BTC","quantity":10}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "Deposit successful", decode[model.AssetResult](t, rec).Message)
	}

	rec := do(t, router, http.MethodPost, "/withdraw", `{"accountId":"`+accountID+`","assetId":"BTC","quantity":"5.5"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Withdraw successful", decode[model.AssetResult](t, rec).Message)

	rec = do(t, router, http.MethodPost, "/withdraw", `{"accountId":"`+accountID+`","assetId":"BTC","quantity":100}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Insufficient asset quantity", decode[errorResponse](t, rec).Error)

	rec = do(t, router, http.MethodGet, "/accounts/"+accountID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[model.AccountWithAssets](t, rec)
	require.Len(t, view.Assets, 1)
	assert.Equal(t, "BTC", view.Assets[0].AssetID)
	assert.True(t, decimal.RequireFromString("14.5").Equal(view.Assets[0].Quantity))
}

func TestDepositRules(t *testing.T) {
	router := newTestRouter(t, memory.NewAccountStore())
	accountID := signup(t, router)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown asset", `{"accountId":"` + accountID + `","assetId":"EUR","quantity":1}`, "Invalid assetId"},
		{"zero quantity", `{"accountId":"` + accountID + `","assetId":"BTC","quantity":0}`, "Invalid quantity"},
		{"text quantity", `{"accountId":"` + accountID + `","assetId":"BTC","quantity":"ten"}`, "Invalid quantity"},
		{"missing quantity", `{"accountId":"` + accountID + `","assetId":"BTC"}`, "Invalid quantity"},
		{"unknown account", `{"accountId":"6f813af6-f151-4cbf-a423-6135909daa51","assetId":"BTC","quantity":1}`, "Account not found"},
		{"malformed", `[`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/deposit", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, tt.want, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestCreateAccountWithAssets(t *testing.T) {
	router := newTestRouter(t, memory.NewAccountStore())

	body := `{"name":"John Doe","email":"john@example.com","password":"Test1234","document":"52998224725",
		"assets":[{"assetId":"USD","quantity":"250.75"},{"assetId":"BTC","quantity":1}]}`
	rec := do(t, router, http.MethodPost, "/accounts", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	accountID := decode[model.SignupOutput](t, rec).AccountID

	rec = do(t, router, http.MethodGet, "/accounts/"+accountID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[model.AccountWithAssets](t, rec)
	require.Len(t, view.Assets, 2)
	assert.Equal(t, "BTC", view.Assets[0].AssetID)
	assert.True(t, decimal.RequireFromString("250.75").Equal(view.Assets[1].Quantity))

	rec = do(t, router, http.MethodPost, "/accounts", `{"name":"Jane Doe","email":"jane@example.com","password":"Test1234","document":"52998224725","assets":[{"assetId":"EUR","quantity":1}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid assetId", decode[errorResponse](t, rec).Error)
}

func TestOrders(t *testing.T) {
	router := newTestRouter(t, memory.NewAccountStore())
	accountID := signup(t, router)

	rec := do(t, router, http.MethodPost, "/orders", `{"accountId":"`+accountID+`","marketId":"BTC/USD","side":"buy","quantity":"1","price":"94000","status":"open","timestamp":"2025-01-02T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := decode[model.OrderOutput](t, rec).OrderID
	assert.True(t, validation.IsValidUUID(orderID))

	rec = do(t, router, http.MethodPost, "/orders", `{"accountId":"`+accountID+`","marketId":"BTC/USD","side":"sell","quantity":"1","price":"95000","status":"closed"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/accounts/"+accountID+"/orders?status=open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]model.Order](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].OrderID)
	assert.Equal(t, model.OrderSideBuy, orders[0].Side)

	rec = do(t, router, http.MethodGet, "/accounts/"+accountID+"/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Order](t, rec), 2)

	rec = do(t, router, http.MethodPost, "/orders", `{"accountId":"6f813af6-f151-4cbf-a423-6135909daa51","marketId":"BTC/USD"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Account not found", decode[errorResponse](t, rec).Error)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, memory.NewAccountStore())

	rec := do(t, router, http.MethodOptions, "/deposit", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	rec = do(t, router, http.MethodPost, "/signup", signupBody)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, memory.NewAccountStore())

	rec := do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	do(t, router, http.MethodPost, "/signup", signupBody)

	rec = do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ledger_http_requests_total{method="POST",route="/signup",status="201"} 1`)
}

func TestParseQuantity(t *testing.T) {
	assert.True(t, decimal.RequireFromString("10").Equal(parseQuantity(json.RawMessage(`10`))))
	assert.True(t, decimal.RequireFromString("0.25").Equal(parseQuantity(json.RawMessage(`"0.25"`))))
	assert.True(t, parseQuantity(json.RawMessage(`"abc"`)).IsZero())
	assert.True(t, parseQuantity(json.RawMessage(`null`)).IsZero())
	assert.True(t, parseQuantity(nil).IsZero())
	assert.True(t, parseQuantity(json.RawMessage(`true`)).IsZero())
}
