package common

import "strings"

const (
	KEY_COIN_PRICE     = "coin_price:%s"
	KEY_TELEGRAM_STATE = "telegram_state:%d"
	KEY_CRYPTO_NEWS    = "crypto_news:%d"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)

const (
	DEFAULT_TIMEZONE = "US/Pacific"
	DISCLAIMER       = "\n\nCryptiq does not offer financial advice."
	GENERIC_ERROR    = "An error occurred. Please try again later. (Logged)"
)

const (
	SYMBOL_BTC = "btc"
	SYMBOL_LTC = "ltc"
)

// coinGeckoIDs maps a ticker symbol to its CoinGecko coin id.
var coinGeckoIDs = map[string]string{
	"btc":   "bitcoin",
	"ltc":   "litecoin",
	"eth":   "ethereum",
	"doge":  "dogecoin",
	"sol":   "solana",
	"xrp":   "ripple",
	"ada":   "cardano",
	"bnb":   "binancecoin",
	"dot":   "polkadot",
	"matic": "matic-network",
	"avax":  "avalanche-2",
	"link":  "chainlink",
	"trx":   "tron",
	"usdt":  "tether",
	"usdc":  "usd-coin",
}

// CoinGeckoID resolves a ticker symbol (any case) to a CoinGecko id.
func CoinGeckoID(symbol string) (string, bool) {
	id, ok := coinGeckoIDs[strings.ToLower(strings.TrimSpace(symbol))]
	return id, ok
}

// ResolveCoinID maps a symbol to its CoinGecko id. Unknown symbols are
// passed through lower-cased since many coins use their name as id.
func ResolveCoinID(symbol string) string {
	if id, ok := CoinGeckoID(symbol); ok {
		return id
	}
	return strings.ToLower(strings.TrimSpace(symbol))
}
