package handler_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riteshkumar/account-ledger/internal/handler"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/repository"
	"github.com/riteshkumar/account-ledger/internal/service"
)

const keyHeader = "cpf"

type testServer struct {
	handler http.Handler
	clock   time.Time
}

func newTestServer(t *testing.T, deleteReturnsAccounts bool) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accountRepo := repository.NewAccountRepository()
	auditRepo := repository.NewAuditRepository()
	accountService := service.NewAccountService(accountRepo, auditRepo, logger)
	transactionService := service.NewTransactionService(accountRepo, auditRepo, logger)
	statementService := service.NewStatementService(time.UTC, logger)

	ts := &testServer{clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	transactionService.SetClock(func() time.Time { return ts.clock })

	ts.handler = handler.NewRouter(handler.RouterConfig{
		Accounts:       handler.NewAccountHandler(accountService, deleteReturnsAccounts, logger),
		Transactions:   handler.NewTransactionHandler(transactionService, logger),
		Statements:     handler.NewStatementHandler(statementService, logger),
		Resolver:       handler.NewAccountResolver(accountService, keyHeader, logger),
		AllowedOrigins: []string{"*"},
		KeyHeader:      keyHeader,
		Logger:         logger,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, key, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(keyHeader, key)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestLedgerScenario(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/account", "", `{"cpf":"111","name":"Alice"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/deposit", "111", `{"amount":100,"description":"init"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/balance", "111", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `100`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/withdraw", "111", `{"amount":150}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient funds", errorOf(t, rec))

	rec = ts.do(t, http.MethodGet, "/balance", "111", "")
	assert.JSONEq(t, `100`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/withdraw", "111", `{"amount":60}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/balance", "111", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `40`, rec.Body.String())
}

func TestCreateAccount_DuplicateKey(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/account", "", `{"cpf":"222","name":"Bob"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/account", "", `{"cpf":"222","name":"Bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Customer already exists", errorOf(t, rec))
}

func TestCreateAccount_InvalidBody(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"malformed json", `{"cpf":`, "invalid request payload"},
		{"missing key", `{"name":"Alice"}`, "validation error"},
		{"missing name", `{"cpf":"111"}`, "validation error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/account", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.expected, errorOf(t, rec))
		})
	}
}

func TestUnknownKeyIsRejected(t *testing.T) {
	ts := newTestServer(t, false)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/account", "", `{"cpf":"111","name":"Alice"}`).Code)

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/deposit", `{"amount":10}`},
		{http.MethodPost, "/withdraw", `{"amount":10}`},
		{http.MethodPut, "/account", `{"name":"x"}`},
		{http.MethodGet, "/account", ""},
		{http.MethodGet, "/statement", ""},
		{http.MethodGet, "/statement/date?date=2024-01-01", ""},
		{http.MethodGet, "/balance", ""},
		{http.MethodDelete, "/account", ""},
		{http.MethodGet, "/account/audit", ""},
	}

	for _, key := range []string{"999", ""} {
		for _, r := range requests {
			rec := ts.do(t, r.method, r.path, key, r.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s key=%q", r.method, r.path, key)
			assert.Equal(t, "Customer not found", errorOf(t, rec))
		}
	}

	rec := ts.do(t, http.MethodGet, "/account", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var alice models.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alice))
	assert.Equal(t, "Alice", alice.Name)
	assert.Empty(t, alice.Statement)
}

func TestGetAccountAndUpdate(t *testing.T) {
	ts := newTestServer(t, false)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/account", "", `{"cpf":"111","name":"Alice"}`).Code)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/deposit", "111", `{"amount":"12.34","description":"gift"}`).Code)

	rec := ts.do(t, http.MethodPut, "/account", "111", `{"name":"Alicia"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/account", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "111", body["cpf"])
	assert.Equal(t, "Alicia", body["name"])

	statement, ok := body["statement"].([]interface{})
	require.True(t, ok)
	require.Len(t, statement, 1)
	entry := statement[0].(map[string]interface{})
	assert.Equal(t, "credit", entry["type"])
	assert.Equal(t, 12.34, entry["amount"])
	assert.Equal(t, "gift", entry["description"])
	assert.Equal(t, "2024-01-01T12:00:00Z", entry["created_at"])
}

func TestWithdraw_InvalidAmount(t *testing.T) {
	ts := newTestServer(t, false)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/account", "", `{"cpf":"111","name":"Alice"}`).Code)

	rec := ts.do(t, http.MethodPost, "/withdraw", "111", `{"amount":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid amount", errorOf(t, rec))

	rec = ts.do(t, http.MethodPost, "/deposit", "111", `{"amount":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request payload", errorOf(t, rec))
}

func TestStatementEndpoints(t *testing.T) {
	ts := newTestServer(t, false)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/account", "", `{"cpf":"111","name":"Alice"}`).Code)

	ts.clock = time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/deposit", "111", `{"amount":50,"description":"late"}`).Code)
	ts.clock = time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/withdraw", "111", `{"amount":20}`).Code)

	rec := ts.do(t, http.MethodGet, "/statement", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var statement []models.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statement))
	require.Len(t, statement, 2)
	assert.Equal(t, models.OperationCredit, statement[0].Type)
	assert.Equal(t, models.OperationDebit, statement[1].Type)

	rec = ts.do(t, http.MethodGet, "/statement/date?date=2024-01-01", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	statement = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statement))
	require.Len(t, statement, 1)
	assert.Equal(t, "late", statement[0].Description)

	for _, path := range []string{"/statement/date?date=not-a-date", "/statement/date"} {
		rec = ts.do(t, http.MethodGet, path, "111", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	}
}

func TestDeleteAccount_Confirmation(t *testing.T) {
	ts := newTestServer(t, false)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/account", "", `{"cpf":"111","name":"Alice"}`).Code)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/account", "", `{"cpf":"222","name":"Bob"}`).Code)

	rec := ts.do(t, http.MethodDelete, "/account", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.DeleteAccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "account deleted", resp.Message)
	assert.NotEmpty(t, resp.ID)
	assert.NotContains(t, rec.Body.String(), "Bob")

	rec = ts.do(t, http.MethodGet, "/account", "111", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/account", "222", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteAccount_ReturnsRemainingAccounts(t *testing.T) {
	ts := newTestServer(t, true)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/account", "", `{"cpf":"111","name":"Alice"}`).Code)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/account", "", `{"cpf":"222","name":"Bob"}`).Code)

	rec := ts.do(t, http.MethodDelete, "/account", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var remaining []models.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &remaining))
	require.Len(t, remaining, 1)
	assert.Equal(t, "222", remaining[0].Key)

	rec = ts.do(t, http.MethodDelete, "/account", "222", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAuditTrailEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/account", "", `{"cpf":"111","name":"Alice"}`).Code)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/deposit", "111", `{"amount":5}`).Code)

	rec := ts.do(t, http.MethodGet, "/account/audit", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []models.AuditLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionCredit, logs[0].Action)
	assert.Equal(t, models.AuditActionCreate, logs[1].Action)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	ts.do(t, http.MethodGet, "/balance", "nobody", "")

	rec = ts.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ledger_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/balance"`)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/deposit", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", keyHeader)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), keyHeader)
}
