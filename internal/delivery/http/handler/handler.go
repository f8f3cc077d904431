package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/user/recipe-service/internal/delivery/http/response"
	"github.com/user/recipe-service/internal/usecase"
)

// Pinger is a dependency whose health can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	parser usecase.RecipeParser
	checks map[string]Pinger
	logger *zap.Logger
}

// NewHandler creates the HTTP handlers. checks maps a dependency name, e.g.
// "postgres", to its health check; it may be empty.
func NewHandler(parser usecase.RecipeParser, checks map[string]Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		parser: parser,
		checks: checks,
		logger: logger,
	}
}

func (h *Handler) HandleParseFromURL(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	recipe, err := h.parser.ParseFromURL(r.Context(), rawURL)
	if err != nil {
		var urlErr *usecase.URLError
		switch {
		case errors.As(err, &urlErr) && errors.Is(err, usecase.ErrInvalidURL):
			h.writeJSONError(w, "Invalid URL: "+urlErr.URL+".", http.StatusBadRequest)
		case errors.As(err, &urlErr) && errors.Is(err, usecase.ErrNoParser):
			h.writeJSONError(w, "No parser found for URL "+urlErr.URL+".", http.StatusBadRequest)
		default:
			h.logger.Error("Failed to parse recipe", zap.String("url", rawURL), zap.Error(err))
			h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, response.Envelope{
		Status:  response.StatusSuccess,
		Message: "Successfully extracted recipe.",
		Data:    response.NewRecipeResponse(recipe),
	})
}

func (h *Handler) HandleGetParsers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.Envelope{
		Status:  response.StatusSuccess,
		Message: "Successfully retrieved list of parsable pages.",
		Data:    h.parser.ListParsers(r.Context()),
	})
}

func (h *Handler) HandleParseHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.parser.RecentParses(r.Context(), limit)
	if err != nil {
		if errors.Is(err, usecase.ErrHistoryDisabled) {
			h.writeJSONError(w, "Parse history is not available", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("Failed to list parse history", zap.Error(err))
		h.writeJSONError(w, "Could not retrieve parse history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.Envelope{
		Status:  response.StatusSuccess,
		Message: "Successfully retrieved parse history.",
		Data:    response.NewParseRecordResponses(records),
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Error("Health check failed", zap.String("dependency", name), zap.Error(err))
			healthStatus[name] = "unhealthy"
			healthStatus["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		healthStatus[name] = "healthy"
	}
	h.writeJSON(w, code, healthStatus)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.Envelope{Status: response.StatusError, Message: message})
}
