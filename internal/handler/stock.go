package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/planetsapi/planets/internal/middleware"
	"github.com/planetsapi/planets/internal/stocks"
)

// notValid is the body of every failed stock lookup.
const notValid = "Not valid"

// StockHandler serves stock price lookups.
type StockHandler struct {
	stocks *stocks.Service
	logger *slog.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(svc *stocks.Service, logger *slog.Logger) *StockHandler {
	return &StockHandler{stocks: svc, logger: logger}
}

// Quote handles GET /stocks/{ticker}.
func (h *StockHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	price, err := h.stocks.Quote(r.Context(), ticker)
	if err != nil {
		h.lookupFailed(w, r, ticker, err)
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("This is the page for the %s ticker, recent price: %s", ticker, formatPrice(price)))
}

// History handles GET /stocks/{ticker}/{date}.
func (h *StockHandler) History(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	points, err := h.stocks.History(r.Context(), ticker, chi.URLParam(r, "date"))
	if err != nil {
		h.lookupFailed(w, r, ticker, err)
		return
	}

	writeJSON(w, http.StatusOK, points)
}

// lookupFailed logs why a lookup failed and answers 200 with the generic body.
func (h *StockHandler) lookupFailed(w http.ResponseWriter, r *http.Request, ticker string, err error) {
	level := slog.LevelError
	switch {
	case errors.Is(err, stocks.ErrInvalidDate):
		level = slog.LevelWarn
	case errors.Is(err, stocks.ErrTickerNotFound):
		level = slog.LevelInfo
	}

	h.logger.Log(r.Context(), level, "stock lookup failed",
		slog.String("ticker", ticker),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	writeText(w, http.StatusOK, notValid)
}

// formatPrice renders p the way Python's float repr does: the shortest
// round-tripping digits, fixed notation with a trailing ".0" for exponents in
// [-4, 16), scientific notation otherwise.
func formatPrice(p float64) string {
	switch {
	case math.IsNaN(p):
		return "nan"
	case math.IsInf(p, 1):
		return "inf"
	case math.IsInf(p, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(p, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
