package model

import "time"

// PortfolioCheckMessage marks chat log entries written by a portfolio view.
const PortfolioCheckMessage = "[portfolio check]"

type ChatLogEntry struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UserID         string    `gorm:"not null;index" json:"user_id"`
	Timestamp      time.Time `gorm:"column:logged_at;not null;index" json:"timestamp"`
	UserMessage    string    `json:"user_message"`
	BotResponse    string    `json:"bot_response"`
	PortfolioValue *float64  `json:"portfolio_value,omitempty"`
}

func (ChatLogEntry) TableName() string {
	return "chat_logs"
}

// PortfolioPoint is one recorded portfolio valuation.
type PortfolioPoint struct {
	Timestamp time.Time
	Value     float64
}
