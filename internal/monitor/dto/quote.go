package dto

import "time"

// Quote is one OHLC observation for a symbol. Open, High, Low and Volume may be missing.
type Quote struct {
	Symbol string   `json:"symbol"`
	Date   string   `json:"date"`
	Open   *float64 `json:"open,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Low    *float64 `json:"low,omitempty"`
	Close  float64  `json:"close"`
	Volume *int64   `json:"volume,omitempty"`
}

// GetQuoteParam identifies the quote to resolve.
type GetQuoteParam struct {
	Symbol   string
	Exchange string
	AsOf     *time.Time
}

// HighOrClose returns the intraday high, falling back to close.
func (q *Quote) HighOrClose() float64 {
	if q.High != nil {
		return *q.High
	}
	return q.Close
}

// LowOrClose returns the intraday low, falling back to close.
func (q *Quote) LowOrClose() float64 {
	if q.Low != nil {
		return *q.Low
	}
	return q.Close
}

// YahooChartResponse is the subset of the chart endpoint payload we read.
type YahooChartResponse struct {
	Chart struct {
		Result []YahooChartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type YahooChartResult struct {
	Meta struct {
		Symbol             string   `json:"symbol"`
		ExchangeName       string   `json:"exchangeName"`
		Currency           string   `json:"currency"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		RegularMarketTime  int64    `json:"regularMarketTime"`
		ExchangeTimezone   string   `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}
