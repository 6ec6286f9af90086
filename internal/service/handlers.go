// Package service contains HTTP handler implementations for the chat economy API endpoints.
// It orchestrates request parsing, calls the action engine in the app package,
// maps rejections and errors to status codes, and writes JSON responses.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"chat_economy/internal/app"
	"chat_economy/internal/models"
	"chat_economy/internal/pkg/auth"
	"chat_economy/internal/pkg/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// internalError is the only detail clients get about infrastructure failures.
const internalError = "internal error"

// handlers aggregates dependencies needed by HTTP handlers,
// including the action engine and logger.
type handlers struct {
	app *app.App
	log *logger.Logger
}

// newHandlers initializes a new handlers instance with the provided app and logger dependencies.
func newHandlers(app *app.App, l *logger.Logger) *handlers {
	return &handlers{app: app, log: l}
}

// authHandler handles dispatcher authentication requests.
// It reads the request body, unmarshals it into an AuthRequest,
// invokes the authentication process, and returns a JSON response with a token.
func (handlers *handlers) authHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var authRequest models.AuthRequest
	var authResponse models.AuthResponse

	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	if err = json.Unmarshal(requestBody, &authRequest); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	authResponse.Token, err = handlers.app.ProcessAuth(ctx, authRequest)
	if err != nil {
		if errors.Is(err, app.ErrMissingAccount) {
			writeErrorResponse(res, "missing account id", http.StatusBadRequest)
			return
		}

		if errors.Is(err, app.ErrInvalidDispatcherKey) {
			writeErrorResponse(res, "invalid dispatcher key", http.StatusUnauthorized)
			return
		}
		handlers.internalError(res, "auth", err)
		return
	}

	writeJSONResponse(res, authResponse, http.StatusOK)
}

// actionHandler runs one action for the authenticated account.
// The body is optional; actions without arguments accept an empty one.
// Rejections are answered with the outcome and a 4xx status.
func (handlers *handlers) actionHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	accountID := auth.AccountID(req.Context())
	if accountID == "" {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	var actionRequest models.ActionRequest

	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	if len(requestBody) > 0 {
		if err = json.Unmarshal(requestBody, &actionRequest); err != nil {
			writeErrorResponse(res, err.Error(), http.StatusBadRequest)
			return
		}
	}

	action := models.Action(chi.URLParam(req, "action"))
	outcome, err := handlers.app.Invoke(ctx, accountID, action, models.ParamsFromRequest(actionRequest))
	if err != nil {
		if errors.Is(err, app.ErrUnknownAction) {
			writeErrorResponse(res, "unknown action", http.StatusNotFound)
			return
		}
		handlers.internalError(res, string(action), err)
		return
	}

	status := http.StatusOK
	if outcome.Rejected() {
		status = rejectionStatus(outcome.Rejection.Reason)
	}
	writeJSONResponse(res, outcome, status)
}

// shopHandler lists the catalog ordered by price, optionally filtered by ?category=.
func (handlers *handlers) shopHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	items, err := handlers.app.Catalog(ctx, models.Category(req.URL.Query().Get("category")))
	if err != nil {
		if errors.Is(err, app.ErrUnknownCategory) {
			writeErrorResponse(res, "unknown category", http.StatusBadRequest)
			return
		}
		handlers.internalError(res, "shop", err)
		return
	}

	if items == nil {
		items = []models.Item{}
	}
	writeJSONResponse(res, items, http.StatusOK)
}

// inventoryHandler returns the inventory of the authenticated account.
func (handlers *handlers) inventoryHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	accountID := auth.AccountID(req.Context())
	if accountID == "" {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	inv, err := handlers.app.Inventory(ctx, accountID)
	if err != nil {
		handlers.internalError(res, "inventory", err)
		return
	}

	entries := []models.InventoryEntry(inv)
	if entries == nil {
		entries = []models.InventoryEntry{}
	}
	writeJSONResponse(res, entries, http.StatusOK)
}

// leaderboardHandler ranks accounts by ?metric= (coins or xp), returning at most ?limit= rows.
func (handlers *handlers) leaderboardHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var limit int
	if raw := req.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			writeErrorResponse(res, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	entries, err := handlers.app.Leaderboard(ctx, models.Metric(req.URL.Query().Get("metric")), limit)
	if err != nil {
		if errors.Is(err, app.ErrUnknownMetric) {
			writeErrorResponse(res, "unknown metric", http.StatusBadRequest)
			return
		}
		handlers.internalError(res, "leaderboard", err)
		return
	}

	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	writeJSONResponse(res, entries, http.StatusOK)
}

// infoHandler retrieves account information.
// It extracts the account ID from the context, calls the business logic to obtain the account,
// its inventory and recent transactions, and returns the information in JSON format.
func (handlers *handlers) infoHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	accountID := auth.AccountID(req.Context())
	if accountID == "" {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	info, err := handlers.app.ProcessInfo(ctx, accountID)
	if err != nil {
		handlers.internalError(res, "info", err)
		return
	}

	if info.Transactions == nil {
		info.Transactions = []models.Transaction{}
	}
	writeJSONResponse(res, info, http.StatusOK)
}

func (handlers *handlers) internalError(res http.ResponseWriter, endpoint string, err error) {
	handlers.log.Error("request failed", zap.String("endpoint", endpoint), zap.Error(err))
	writeErrorResponse(res, internalError, http.StatusInternalServerError)
}

// rejectionStatus maps a rejection reason to the HTTP status of the response.
func rejectionStatus(reason models.RejectionReason) int {
	switch reason {
	case models.ReasonOnCooldown:
		return http.StatusTooManyRequests
	case models.ReasonItemNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func writeJSONResponse(res http.ResponseWriter, v any, statusCode int) {
	result, err := json.Marshal(v)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	res.Write(result)
}

func writeErrorResponse(res http.ResponseWriter, errorInfo string, statusCode int) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	json.NewEncoder(res).Encode(models.ErrorResponse{Errors: errorInfo})
}
