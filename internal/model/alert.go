package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Alert is a one-shot price target. It is deleted once it fires.
type Alert struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	Coin      string    `gorm:"not null" json:"coin"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Alert) TableName() string {
	return "price_alerts"
}

func NewAlert(userID, coin string, price float64) Alert {
	return Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		Coin:      strings.ToLower(strings.TrimSpace(coin)),
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
}

// AlertBook groups alerts by user id, each list in creation order.
type AlertBook map[string][]Alert

// Symbols returns the distinct coins referenced by any alert.
func (b AlertBook) Symbols() []string {
	symbols := lo.Uniq(lo.FlatMap(lo.Values(b), func(alerts []Alert, _ int) []string {
		return lo.Map(alerts, func(a Alert, _ int) string { return a.Coin })
	}))
	sort.Strings(symbols)
	return symbols
}

// UserIDs returns the users with at least one alert, sorted.
func (b AlertBook) UserIDs() []string {
	ids := lo.Filter(lo.Keys(b), func(id string, _ int) bool { return len(b[id]) > 0 })
	sort.Strings(ids)
	return ids
}
