package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"cryptiq/internal/model"
	pkgbunt "cryptiq/pkg/buntdb"

	"github.com/samber/lo"
	"github.com/tidwall/buntdb"
)

type ChatLogRepository interface {
	Append(ctx context.Context, entry model.ChatLogEntry) error
	// Recent returns up to n latest entries, oldest first.
	Recent(ctx context.Context, userID string, n int) ([]model.ChatLogEntry, error)
	// LastPortfolioValue returns the value of the latest portfolio check, or
	// nil when the user never checked.
	LastPortfolioValue(ctx context.Context, userID string) (*float64, error)
	PortfolioHistory(ctx context.Context, userID string) ([]model.PortfolioPoint, error)
}

func chatLogPattern(userID string) string {
	return "chatlog:" + userID + ":*"
}

type buntChatLogRepository struct {
	db  *pkgbunt.DB
	seq uint64
}

func NewBuntChatLogRepository(db *pkgbunt.DB) ChatLogRepository {
	return &buntChatLogRepository{db: db}
}

// key orders entries by time, the sequence breaks ties within a nanosecond.
func (r *buntChatLogRepository) key(entry model.ChatLogEntry) string {
	return fmt.Sprintf("chatlog:%s:%020d:%010d", entry.UserID, entry.Timestamp.UnixNano(), atomic.AddUint64(&r.seq, 1)%1e10)
}

func (r *buntChatLogRepository) Append(ctx context.Context, entry model.ChatLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode chat log entry: %w", err)
	}
	return r.db.Update(func(tx *buntdb.Tx) error {
		if _, _, err := tx.Set(r.key(entry), string(raw), nil); err != nil {
			return fmt.Errorf("failed to append chat log of %s: %w", entry.UserID, err)
		}
		return nil
	})
}

func (r *buntChatLogRepository) descend(userID string, fn func(entry model.ChatLogEntry) bool) error {
	return r.db.View(func(tx *buntdb.Tx) error {
		return tx.DescendKeys(chatLogPattern(userID), func(_, value string) bool {
			var entry model.ChatLogEntry
			if err := json.Unmarshal([]byte(value), &entry); err != nil {
				return true
			}
			return fn(entry)
		})
	})
}

func (r *buntChatLogRepository) Recent(ctx context.Context, userID string, n int) ([]model.ChatLogEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	var entries []model.ChatLogEntry
	err := r.descend(userID, func(entry model.ChatLogEntry) bool {
		if entry.PortfolioValue != nil {
			return true
		}
		entries = append(entries, entry)
		return len(entries) < n
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read chat log of %s: %w", userID, err)
	}
	return lo.Reverse(entries), nil
}

func (r *buntChatLogRepository) LastPortfolioValue(ctx context.Context, userID string) (*float64, error) {
	var value *float64
	err := r.descend(userID, func(entry model.ChatLogEntry) bool {
		if entry.PortfolioValue == nil {
			return true
		}
		value = entry.PortfolioValue
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read chat log of %s: %w", userID, err)
	}
	return value, nil
}

func (r *buntChatLogRepository) PortfolioHistory(ctx context.Context, userID string) ([]model.PortfolioPoint, error) {
	var points []model.PortfolioPoint
	err := r.descend(userID, func(entry model.ChatLogEntry) bool {
		if entry.PortfolioValue != nil {
			points = append(points, model.PortfolioPoint{Timestamp: entry.Timestamp, Value: *entry.PortfolioValue})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read chat log of %s: %w", userID, err)
	}
	return lo.Reverse(points), nil
}
