package dto

import "time"

type PortfolioLine struct {
	Symbol    string
	Amount    float64
	Price     float64
	Value     float64
	Change24h float64
}

type PortfolioSummary struct {
	Lines    []PortfolioLine
	Total    float64
	Previous *float64
	At       time.Time
}

// Performance returns the absolute and relative change against the previous
// check. ok is false when there is nothing to compare with.
func (s PortfolioSummary) Performance() (diff float64, pct float64, ok bool) {
	if s.Previous == nil {
		return 0, 0, false
	}
	diff = s.Total - *s.Previous
	if *s.Previous != 0 {
		pct = diff / *s.Previous * 100
	}
	return diff, pct, true
}

type CoinPerformance struct {
	Symbol      string
	ChangePct7d float64
}

type BacktestResult struct {
	Days       int
	StartValue float64
	EndValue   float64
	Missing    []string
}

func (b BacktestResult) ChangePercent() float64 {
	if b.StartValue == 0 {
		return 0
	}
	return (b.EndValue - b.StartValue) / b.StartValue * 100
}
