package coingecko

import "strings"

// coinIDs maps common ticker symbols to CoinGecko coin ids. Symbols outside
// the map pass through lowercased, which lets callers use full ids directly.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"AVAX":  "avalanche-2",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"LTC":   "litecoin",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"XLM":   "stellar",
	"TRX":   "tron",
	"SHIB":  "shiba-inu",
	"NEAR":  "near",
	"APT":   "aptos",
	"ARB":   "arbitrum",
}

// CoinID resolves a ticker symbol to the CoinGecko coin id.
func CoinID(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if id, ok := coinIDs[symbol]; ok {
		return id
	}
	return strings.ToLower(symbol)
}
