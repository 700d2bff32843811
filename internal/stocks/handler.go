package stocks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/stockchecker/stockchecker/internal/httputil"
	"github.com/stockchecker/stockchecker/internal/logging"
)

var symbolPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// QuoteFetcher is the upstream surface the handler needs. Implemented by
// Client; tests inject a stub.
type QuoteFetcher interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// Handler serves authenticated stock-quote lookups.
type Handler struct {
	client QuoteFetcher
	cache  *Cache
}

func NewHandler(client QuoteFetcher, cache *Cache) *Handler {
	return &Handler{client: client, cache: cache}
}

// GetQuote returns the quote for a symbol
// @Summary      Get stock quote
// @Description  Fetch the current quote for a stock symbol. Requires authentication.
// @Tags         stocks
// @Produce      json
// @Security     BearerAuth
// @Param        symbol path string true "Stock symbol (1-5 uppercase letters)"
// @Success      200 {object} Quote
// @Failure      401 {object} httputil.ErrorResponse "Auth failure"
// @Failure      404 {object} httputil.ErrorResponse "No data for symbol"
// @Failure      422 {object} httputil.ErrorResponse "Bad symbol format"
// @Failure      503 {object} httputil.ErrorResponse "Upstream failure"
// @Router       /stocks/quote/{symbol} [get]
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	symbol := chi.URLParam(r, "symbol")
	if !symbolPattern.MatchString(symbol) {
		httputil.RespondErrorWithCode(w, "symbol must be 1-5 uppercase letters", httputil.CodeInvalidSymbol, http.StatusUnprocessableEntity)
		return
	}

	logger = logger.WithFields(map[string]any{"symbol": symbol})

	if h.cache != nil {
		if cached, err := h.cache.Get(r.Context(), symbol); err == nil {
			httputil.RespondJSON(w, cached, http.StatusOK)
			return
		} else if !errors.Is(err, ErrCacheMiss) {
			logger.Warn("quote cache read failed", "error", err.Error())
		}
	}

	quote, err := h.client.GetQuote(r.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoData):
			logger.Info("no data for symbol")
			httputil.RespondErrorWithCode(w, fmt.Sprintf("No data found for symbol: %s", symbol), httputil.CodeSymbolNotFound, http.StatusNotFound)
		case errors.Is(err, ErrUpstreamUnavailable):
			logger.Error("upstream quote fetch failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, ErrUpstreamUnavailable.Error(), httputil.CodeUpstreamError, http.StatusServiceUnavailable)
		default:
			logger.Error("unexpected quote fetch failure", "error", err.Error())
			httputil.RespondErrorWithCode(w, "An error occurred while fetching stock data", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), quote); err != nil {
			logger.Warn("quote cache write failed", "error", err.Error())
		}
	}

	httputil.RespondJSON(w, quote, http.StatusOK)
}
