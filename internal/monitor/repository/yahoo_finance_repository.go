package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang-stock-tracker/internal/monitor/config"
	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/utils"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// YahooFinanceRepository is the price source: it resolves (symbol, exchange) to the latest daily bar.
type YahooFinanceRepository interface {
	GetQuote(ctx context.Context, param dto.GetQuoteParam) (*dto.Quote, error)
}

type yahooFinanceRepository struct {
	cfg            config.YahooFinance
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	quoteCache     *cache.Cache
}

// NewYahooFinanceRepository creates the price source. The quote cache lives as long as the repository.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) (YahooFinanceRepository, error) {
	if cfg.YahooFinance.MaxRequestPerMinute <= 0 {
		return nil, fmt.Errorf("yahoo_finance.max_request_per_minute must be positive")
	}
	timeout := cfg.YahooFinance.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cacheTTL := cfg.YahooFinance.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	return &yahooFinanceRepository{
		cfg: cfg.YahooFinance,
		log: log,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		quoteCache:     cache.New(cacheTTL, 2*cacheTTL),
	}, nil
}

func (r *yahooFinanceRepository) GetQuote(ctx context.Context, param dto.GetQuoteParam) (*dto.Quote, error) {
	ticker := utils.ProviderTicker(param.Symbol, param.Exchange)
	asOf := ""
	if param.AsOf != nil {
		asOf = utils.DateKey(param.AsOf.UTC())
	}

	cacheKey := ticker + "|" + asOf
	if cached, ok := r.quoteCache.Get(cacheKey); ok {
		quote := cached.(dto.Quote)
		return &quote, nil
	}

	query := url.Values{}
	query.Set("interval", r.cfg.Interval)
	if param.AsOf != nil {
		day := param.AsOf.UTC().Truncate(24 * time.Hour)
		query.Set("period1", fmt.Sprint(day.Add(-24*time.Hour).Unix()))
		query.Set("period2", fmt.Sprint(day.Add(48*time.Hour).Unix()))
	} else {
		query.Set("range", r.cfg.Range)
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", r.cfg.BaseURL, url.PathEscape(ticker), query.Encode())

	body, err := r.sendRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dto.ErrPriceUnavailable, ticker, err)
	}

	var response dto.YahooChartResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %s: invalid response: %v", dto.ErrPriceUnavailable, ticker, err)
	}
	if response.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", dto.ErrPriceUnavailable, ticker, response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s: empty result", dto.ErrPriceUnavailable, ticker)
	}

	quote, ok := latestBar(response.Chart.Result[0], asOf)
	if !ok {
		return nil, fmt.Errorf("%w: %s: no bar available", dto.ErrPriceUnavailable, ticker)
	}
	quote.Symbol = param.Symbol

	r.quoteCache.SetDefault(cacheKey, *quote)
	r.log.DebugContext(ctx, "Resolved quote",
		logger.StringField("ticker", ticker),
		logger.StringField("date", quote.Date),
		logger.Field("close", quote.Close))

	return quote, nil
}

// latestBar picks the newest bar with a close, or the bar dated asOf when given.
// Without any usable bar it falls back to the regular market price.
func latestBar(result dto.YahooChartResult, asOf string) (*dto.Quote, bool) {
	loc := utils.LoadLocation(result.Meta.ExchangeTimezone)

	if len(result.Indicators.Quote) > 0 {
		bars := result.Indicators.Quote[0]
		for i := len(result.Timestamp) - 1; i >= 0; i-- {
			if i >= len(bars.Close) || bars.Close[i] == nil {
				continue
			}
			date := utils.DateKey(time.Unix(result.Timestamp[i], 0).In(loc))
			if asOf != "" && date != asOf {
				continue
			}
			return &dto.Quote{
				Date:   date,
				Open:   at(bars.Open, i),
				High:   at(bars.High, i),
				Low:    at(bars.Low, i),
				Close:  *bars.Close[i],
				Volume: at(bars.Volume, i),
			}, true
		}
	}

	if asOf == "" && result.Meta.RegularMarketPrice != nil && result.Meta.RegularMarketTime > 0 {
		return &dto.Quote{
			Date:  utils.DateKey(time.Unix(result.Meta.RegularMarketTime, 0).In(loc)),
			Close: *result.Meta.RegularMarketPrice,
		}, true
	}
	return nil, false
}

func at[T any](values []*T, i int) *T {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func (r *yahooFinanceRepository) sendRequest(ctx context.Context, endpoint string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("url", endpoint),
		zap.Int("max_request_per_minute", r.cfg.MaxRequestPerMinute),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to Yahoo Finance API", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read response body from Yahoo Finance API", fields...)
		return nil, err
	}

	// the chart API reports unknown symbols as 404 with a JSON error body
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from Yahoo Finance API", fields...)
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	return body, nil
}
