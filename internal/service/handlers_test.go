package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat_economy/internal/app"
	"chat_economy/internal/audit"
	"chat_economy/internal/catalog"
	"chat_economy/internal/config"
	"chat_economy/internal/cooldown"
	"chat_economy/internal/models"
	"chat_economy/internal/pkg/auth"
	"chat_economy/internal/pkg/logger"
	"chat_economy/internal/storage"
	"chat_economy/internal/storage/mocks"
)

func testRequest(t *testing.T, ts *httptest.Server, method, path string, requestBody []byte) (*http.Response, string) {
	return testRequestWithAuth(t, ts, method, path, requestBody, "")
}

func testRequestWithAuth(t *testing.T, ts *httptest.Server, method, path string, requestBody []byte, token string) (*http.Response, string) {
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func newTestServer(t *testing.T, db storage.Storage) *httptest.Server {
	t.Helper()
	l, err := logger.CreateLogger("fatal")
	require.NoError(t, err)

	appInstance := app.NewApp(db, cooldown.NewStoreTracker(db, l), audit.NewLogger(db, nil, l), l,
		app.WithDefaultSettings(config.DefaultSettings()))
	service := NewService(appInstance, config.ServerRunAddress, l)
	testServer := httptest.NewServer(service.NewRouter())
	t.Cleanup(testServer.Close)
	return testServer
}

func newMemoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := storage.NewMemory()
	items, err := catalog.Load("../../assets/catalog.yaml")
	require.NoError(t, err)
	require.NoError(t, db.UpsertItems(context.Background(), items))
	return newTestServer(t, db)
}

func TestAuthHandler_Gomock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mocks.NewMockStorage(ctrl)
	testServer := newTestServer(t, mockDB)

	type expectedData struct {
		expectedContentType string
		expectedStatusCode  int
		expectedBody        string
	}

	testCases := []struct {
		name        string
		requestBody []byte
		setupMock   func()
		expected    expectedData
	}{
		{
			name:        "Invalid JSON",
			requestBody: []byte("some body"),
			setupMock:   func() {},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        "{\"errors\":\"invalid character 's' looking for beginning of value\"}\n",
			},
		},
		{
			name:        "Missing account id",
			requestBody: []byte(`{"account_id": "  ", "display_name": "Alice"}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        "{\"errors\":\"missing account id\"}\n",
			},
		},
		{
			name:        "Store failure",
			requestBody: []byte(`{"account_id": "alice"}`),
			setupMock: func() {
				mockDB.EXPECT().EnsureAccount(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
			},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusInternalServerError,
				expectedBody:        "{\"errors\":\"internal error\"}\n",
			},
		},
		{
			name:        "Successful authorization",
			requestBody: []byte(`{"account_id": "alice", "display_name": "Alice"}`),
			setupMock: func() {
				mockDB.EXPECT().EnsureAccount(gomock.Any(), models.Account{ID: "alice", DisplayName: "Alice", Coins: 1000}).
					Return(&models.Account{ID: "alice", DisplayName: "Alice", Coins: 1000, Level: 1}, nil)
			},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusOK,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			resp, body := testRequest(t, testServer, http.MethodPost, "/api/auth", tc.requestBody)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)
			assert.Equal(t, tc.expected.expectedContentType, resp.Header.Get("Content-Type"))

			if tc.expected.expectedStatusCode == http.StatusOK {
				var authResp models.AuthResponse
				err := json.Unmarshal([]byte(body), &authResp)
				require.NoError(t, err)

				claims, err := auth.ParseToken(authResp.Token)
				require.NoError(t, err)
				assert.Equal(t, "alice", claims.AccountID)
			} else {
				assert.Equal(t, tc.expected.expectedBody, body)
			}
		})
	}
}

func TestActionHandler(t *testing.T) {
	testServer := newMemoryServer(t)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	type expectedData struct {
		expectedStatusCode int
		expectedStatus     string
		expectedReason     models.RejectionReason
		expectedCoins      int64
		expectedBody       string
	}

	// Cases run in order against the same store.
	testCases := []struct {
		name        string
		path        string
		requestBody []byte
		token       string
		expected    expectedData
	}{
		{
			name:     "Unauthorized - no token",
			path:     "/api/actions/daily",
			expected: expectedData{expectedStatusCode: http.StatusUnauthorized, expectedBody: "{\"errors\":\"missing auth header\"}\n"},
		},
		{
			name:     "Unknown action",
			path:     "/api/actions/gamble",
			token:    token,
			expected: expectedData{expectedStatusCode: http.StatusNotFound, expectedBody: "{\"errors\":\"unknown action\"}\n"},
		},
		{
			name:        "Invalid JSON",
			path:        "/api/actions/pay",
			requestBody: []byte("{"),
			token:       token,
			expected:    expectedData{expectedStatusCode: http.StatusBadRequest, expectedBody: "{\"errors\":\"unexpected end of JSON input\"}\n"},
		},
		{
			name:     "Daily claim",
			path:     "/api/actions/daily",
			token:    token,
			expected: expectedData{expectedStatusCode: http.StatusOK, expectedStatus: models.StatusOK, expectedCoins: 1500},
		},
		{
			name:     "Daily on cooldown",
			path:     "/api/actions/daily",
			token:    token,
			expected: expectedData{expectedStatusCode: http.StatusTooManyRequests, expectedStatus: models.StatusRejected, expectedReason: models.ReasonOnCooldown},
		},
		{
			name:        "Buy unknown item",
			path:        "/api/actions/buy",
			requestBody: []byte(`{"item": "Flux Capacitor"}`),
			token:       token,
			expected:    expectedData{expectedStatusCode: http.StatusNotFound, expectedStatus: models.StatusRejected, expectedReason: models.ReasonItemNotFound},
		},
		{
			name:        "Buy beyond balance",
			path:        "/api/actions/buy",
			requestBody: []byte(`{"item": "Coffee Machine"}`),
			token:       token,
			expected:    expectedData{expectedStatusCode: http.StatusBadRequest, expectedStatus: models.StatusRejected, expectedReason: models.ReasonInsufficientFunds},
		},
		{
			name:        "Pay yourself",
			path:        "/api/actions/pay",
			requestBody: []byte(`{"target_id": "alice", "amount": 10}`),
			token:       token,
			expected:    expectedData{expectedStatusCode: http.StatusBadRequest, expectedStatus: models.StatusRejected, expectedReason: models.ReasonInvalidTarget},
		},
		{
			name:        "Pay another account",
			path:        "/api/actions/pay",
			requestBody: []byte(`{"target_id": "bob", "target_name": "Bob", "amount": 500}`),
			token:       token,
			expected:    expectedData{expectedStatusCode: http.StatusOK, expectedStatus: models.StatusOK, expectedCoins: 1000},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := testRequestWithAuth(t, testServer, http.MethodPost, tc.path, tc.requestBody, tc.token)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			if tc.expected.expectedBody != "" {
				assert.Equal(t, tc.expected.expectedBody, body)
				return
			}

			var outcome models.Outcome
			require.NoError(t, json.Unmarshal([]byte(body), &outcome))
			assert.Equal(t, tc.expected.expectedStatus, outcome.Status)
			if outcome.Rejected() {
				require.NotNil(t, outcome.Rejection)
				assert.Equal(t, tc.expected.expectedReason, outcome.Rejection.Reason)
			} else {
				assert.Equal(t, tc.expected.expectedCoins, outcome.Account.Coins)
			}
		})
	}
}

func TestActionHandler_Gomock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mocks.NewMockStorage(ctrl)
	testServer := newTestServer(t, mockDB)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	mockDB.EXPECT().EnsureAccount(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	resp, body := testRequestWithAuth(t, testServer, http.MethodPost, "/api/actions/work", nil, token)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "{\"errors\":\"internal error\"}\n", body)
}

func TestShopHandler(t *testing.T) {
	testServer := newMemoryServer(t)

	resp, body := testRequest(t, testServer, http.MethodGet, "/api/shop?category=tool", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.Item
	require.NoError(t, json.Unmarshal([]byte(body), &items))
	require.NotEmpty(t, items)
	for _, it := range items {
		assert.Equal(t, models.CategoryTool, it.Category)
	}

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/shop?category=vehicle", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "{\"errors\":\"unknown category\"}\n", body)
}

func TestLeaderboardHandler(t *testing.T) {
	testServer := newMemoryServer(t)

	for _, id := range []string{"alice", "bob"} {
		token, err := auth.GenerateToken(id)
		require.NoError(t, err)
		resp, _ := testRequestWithAuth(t, testServer, http.MethodPost, "/api/actions/daily", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	testCases := []struct {
		name               string
		path               string
		expectedStatusCode int
		expectedRows       int
		expectedBody       string
	}{
		{name: "Default metric", path: "/api/leaderboard", expectedStatusCode: http.StatusOK, expectedRows: 2},
		{name: "Limited", path: "/api/leaderboard?metric=xp&limit=1", expectedStatusCode: http.StatusOK, expectedRows: 1},
		{name: "Unknown metric", path: "/api/leaderboard?metric=karma", expectedStatusCode: http.StatusBadRequest, expectedBody: "{\"errors\":\"unknown metric\"}\n"},
		{name: "Invalid limit", path: "/api/leaderboard?limit=ten", expectedStatusCode: http.StatusBadRequest, expectedBody: "{\"errors\":\"invalid limit\"}\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := testRequest(t, testServer, http.MethodGet, tc.path, nil)
			assert.Equal(t, tc.expectedStatusCode, resp.StatusCode)
			if tc.expectedBody != "" {
				assert.Equal(t, tc.expectedBody, body)
				return
			}

			var entries []models.LeaderboardEntry
			require.NoError(t, json.Unmarshal([]byte(body), &entries))
			require.Len(t, entries, tc.expectedRows)
			assert.Equal(t, 1, entries[0].Rank)
		})
	}
}

func TestInventoryAndInfoHandlers(t *testing.T) {
	testServer := newMemoryServer(t)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	resp, body := testRequestWithAuth(t, testServer, http.MethodGet, "/api/inventory", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", body)

	resp, _ = testRequestWithAuth(t, testServer, http.MethodPost, "/api/actions/buy", []byte(`{"item": "Rubber Duck"}`), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = testRequestWithAuth(t, testServer, http.MethodGet, "/api/inventory", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []models.InventoryEntry
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Rubber Duck", entries[0].Item.Name)
	assert.Equal(t, 1, entries[0].Quantity)

	resp, body = testRequestWithAuth(t, testServer, http.MethodGet, "/api/info", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info models.InfoResponse
	require.NoError(t, json.Unmarshal([]byte(body), &info))
	assert.Equal(t, int64(900), info.Account.Coins)
	assert.Len(t, info.Inventory, 1)
	require.Len(t, info.Transactions, 1)
	assert.Equal(t, models.TxBuy, info.Transactions[0].Action)

	resp, _ = testRequest(t, testServer, http.MethodGet, "/api/info", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	testServer := newMemoryServer(t)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)
	testRequestWithAuth(t, testServer, http.MethodPost, "/api/actions/work", nil, token)

	resp, body := testRequest(t, testServer, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "economy_actions_total")
}
