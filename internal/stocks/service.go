package stocks

import (
	"context"
	"strings"
)

// DefaultQuoteDate is the trading day reported by Service.Quote.
const DefaultQuoteDate = "2020-10-07"

// Service answers stock lookups from a TableCache.
type Service struct {
	cache     *TableCache
	quoteDate string
}

// NewService creates a Service. An empty quoteDate uses DefaultQuoteDate.
func NewService(cache *TableCache, quoteDate string) *Service {
	if quoteDate == "" {
		quoteDate = DefaultQuoteDate
	}
	return &Service{cache: cache, quoteDate: quoteDate}
}

// QuoteDate returns the configured trading day.
func (s *Service) QuoteDate() string {
	return s.quoteDate
}

// Quote returns the adjusted close of ticker on the configured trading day.
// ticker is matched case-insensitively.
func (s *Service) Quote(ctx context.Context, ticker string) (float64, error) {
	t, err := s.cache.Get(ctx)
	if err != nil {
		return 0, err
	}

	q, err := t.Quote(normalizeTicker(ticker), s.quoteDate)
	if err != nil {
		return 0, err
	}
	return q.Price()
}

// History returns the adjusted closes of ticker dated strictly before date (YYYY-MM-DD).
func (s *Service) History(ctx context.Context, ticker, date string) ([]Point, error) {
	before, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	t, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	return t.History(normalizeTicker(ticker), before)
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
