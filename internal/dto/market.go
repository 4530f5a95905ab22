package dto

import "strings"

// CoinPrice is one entry of CoinGecko's /simple/price answer.
type CoinPrice struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
}

// MarketData maps a CoinGecko coin id to its price. Coins the provider did
// not know are absent.
type MarketData map[string]CoinPrice

// USD returns the price of id, or 0 when it is missing.
func (m MarketData) USD(id string) float64 {
	return m[id].USD
}

// CoinMarketResponse is one row of CoinGecko's /coins/markets answer. Only
// the change field of the requested window is filled, null changes stay nil.
type CoinMarketResponse struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	CurrentPrice float64  `json:"current_price"`
	Change24h    *float64 `json:"price_change_percentage_24h_in_currency"`
	Change7d     *float64 `json:"price_change_percentage_7d_in_currency"`
	Change14d    *float64 `json:"price_change_percentage_14d_in_currency"`
	Change30d    *float64 `json:"price_change_percentage_30d_in_currency"`
	Change200d   *float64 `json:"price_change_percentage_200d_in_currency"`
	Change1y     *float64 `json:"price_change_percentage_1y_in_currency"`
}

// ChangePercent returns the change over window ("24h", "7d", ..., "1y"), 0
// when the provider had none.
func (r CoinMarketResponse) ChangePercent(window string) float64 {
	var change *float64
	switch window {
	case "24h":
		change = r.Change24h
	case "7d":
		change = r.Change7d
	case "14d":
		change = r.Change14d
	case "30d":
		change = r.Change30d
	case "200d":
		change = r.Change200d
	case "1y":
		change = r.Change1y
	}
	if change == nil {
		return 0
	}
	return *change
}

// ToCoinMarket reduces the row to the given window.
func (r CoinMarketResponse) ToCoinMarket(window string) CoinMarket {
	return CoinMarket{
		ID:            r.ID,
		Symbol:        strings.ToLower(r.Symbol),
		CurrentPrice:  r.CurrentPrice,
		ChangePercent: r.ChangePercent(window),
	}
}

// CoinMarket is one row of CoinGecko's /coins/markets answer reduced to what
// the backtest needs.
type CoinMarket struct {
	ID            string
	Symbol        string
	CurrentPrice  float64
	ChangePercent float64
}

// StartPrice derives the price at the start of the window from the current
// price and the percentage change over it.
func (c CoinMarket) StartPrice() float64 {
	if c.ChangePercent <= -100 {
		return 0
	}
	return c.CurrentPrice / (1 + c.ChangePercent/100)
}
