package utils

import "strings"

var exchangeSuffixes = map[string]string{
	"IDX":      ".JK",
	"JK":       ".JK",
	"LSE":      ".L",
	"TSX":      ".TO",
	"ASX":      ".AX",
	"HKEX":     ".HK",
	"NSE":      ".NS",
	"BSE":      ".BO",
	"XETRA":    ".DE",
	"EURONEXT": ".PA",
	"TSE":      ".T",
	"SGX":      ".SI",
	"NASDAQ":   "",
	"NYSE":     "",
	"AMEX":     "",
}

var suffixCountries = map[string]string{
	".JK": "ID",
	".L":  "GB",
	".TO": "CA",
	".AX": "AU",
	".HK": "HK",
	".NS": "IN",
	".BO": "IN",
	".DE": "DE",
	".PA": "FR",
	".T":  "JP",
	".SI": "SG",
}

// ProviderTicker maps a symbol and exchange to the market data ticker, e.g. BBCA on IDX -> BBCA.JK.
// Symbols that already carry a known exchange suffix are returned unchanged. Any other dot is a share
// class separator, written with a dash by the provider (BRK.B -> BRK-B).
func ProviderTicker(symbol string, exchange string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := suffixCountries[tickerSuffix(symbol)]; ok {
		return symbol
	}
	symbol = strings.ReplaceAll(symbol, ".", "-")
	return symbol + exchangeSuffixes[strings.ToUpper(strings.TrimSpace(exchange))]
}

// CountryFromTicker derives an ISO country code from a ticker suffix. Tickers without a known suffix
// are US listings.
func CountryFromTicker(ticker string) string {
	if country, ok := suffixCountries[tickerSuffix(ticker)]; ok {
		return country
	}
	return "US"
}

func tickerSuffix(ticker string) string {
	idx := strings.LastIndex(ticker, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToUpper(ticker[idx:])
}
