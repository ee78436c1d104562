package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang-stock-tracker/internal/monitor/config"
	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "BBCA.JK", "exchangeTimezoneName": "Asia/Jakarta", "regularMarketPrice": 9150, "regularMarketTime": 1704506400},
      "timestamp": [1704333600, 1704420000, 1704506400],
      "indicators": {"quote": [{
        "open":   [9000, 9050, null],
        "high":   [9100, 9200, null],
        "low":    [8950, 9000, null],
        "close":  [9050, 9125, null],
        "volume": [1000, 2000, null]
      }]}
    }],
    "error": null
  }
}`

func newTestYahooRepo(t *testing.T, handler http.HandlerFunc) YahooFinanceRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{YahooFinance: config.YahooFinance{
		BaseURL:             server.URL,
		MaxRequestPerMinute: 6000,
		Range:               "5d",
		Interval:            "1d",
		CacheTTL:            time.Minute,
		RequestTimeout:      time.Second,
	}}
	repo, err := NewYahooFinanceRepository(cfg, logger.NewNop())
	require.NoError(t, err)
	return repo
}

func TestYahooFinanceRepository_GetQuote(t *testing.T) {
	var hits int32
	repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/v8/finance/chart/BBCA.JK", r.URL.Path)
		assert.Equal(t, "5d", r.URL.Query().Get("range"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	})

	quote, err := repo.GetQuote(context.Background(), dto.GetQuoteParam{Symbol: "BBCA", Exchange: "IDX"})
	require.NoError(t, err)

	assert.Equal(t, "BBCA", quote.Symbol)
	assert.Equal(t, "2024-01-05", quote.Date)
	assert.Equal(t, 9125.0, quote.Close)
	require.NotNil(t, quote.High)
	assert.Equal(t, 9200.0, *quote.High)
	require.NotNil(t, quote.Volume)
	assert.Equal(t, int64(2000), *quote.Volume)

	_, err = repo.GetQuote(context.Background(), dto.GetQuoteParam{Symbol: "BBCA", Exchange: "IDX"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestYahooFinanceRepository_AsOf(t *testing.T) {
	repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		_, _ = w.Write([]byte(chartBody))
	})

	asOf := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	quote, err := repo.GetQuote(context.Background(), dto.GetQuoteParam{Symbol: "BBCA.JK", AsOf: &asOf})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-04", quote.Date)
	assert.Equal(t, 9050.0, quote.Close)
}

func TestYahooFinanceRepository_UnknownSymbol(t *testing.T) {
	repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := repo.GetQuote(context.Background(), dto.GetQuoteParam{Symbol: "NOPE", Exchange: "NASDAQ"})
	assert.ErrorIs(t, err, dto.ErrPriceUnavailable)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahooFinanceRepository_ServerError(t *testing.T) {
	repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := repo.GetQuote(context.Background(), dto.GetQuoteParam{Symbol: "AAPL"})
	assert.ErrorIs(t, err, dto.ErrPriceUnavailable)
}

func TestYahooFinanceRepository_FallsBackToMarketPrice(t *testing.T) {
	repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"exchangeTimezoneName":"America/New_York","regularMarketPrice":187.5,"regularMarketTime":1704484800},"timestamp":[1704484800],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`))
	})

	quote, err := repo.GetQuote(context.Background(), dto.GetQuoteParam{Symbol: "AAPL", Exchange: "NASDAQ"})
	require.NoError(t, err)
	assert.Equal(t, 187.5, quote.Close)
	assert.Equal(t, "2024-01-05", quote.Date)
	assert.Nil(t, quote.High)
}

func TestNewYahooFinanceRepository_InvalidRate(t *testing.T) {
	_, err := NewYahooFinanceRepository(&config.Config{}, logger.NewNop())
	assert.Error(t, err)
}

func TestYahooFinanceRepository_ShareClassTicker(t *testing.T) {
	repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/BRK-B", r.URL.Path)
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"exchangeTimezoneName":"America/New_York"},"timestamp":[1704484800],"indicators":{"quote":[{"close":[412.5]}]}}],"error":null}}`))
	})

	quote, err := repo.GetQuote(context.Background(), dto.GetQuoteParam{Symbol: "BRK.B", Exchange: "NYSE"})
	require.NoError(t, err)
	assert.Equal(t, "BRK.B", quote.Symbol)
	assert.Equal(t, 412.5, quote.Close)
}
