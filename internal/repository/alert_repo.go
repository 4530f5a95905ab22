package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cryptiq/internal/model"
	pkgbunt "cryptiq/pkg/buntdb"
	"cryptiq/pkg/logger"

	"github.com/samber/lo"
	"github.com/tidwall/buntdb"
)

type AlertRepository interface {
	LoadAll(ctx context.Context) (model.AlertBook, error)
	ListByUser(ctx context.Context, userID string) ([]model.Alert, error)
	Add(ctx context.Context, alert model.Alert) error
	// RemoveAlerts deletes exactly the given alert ids of one user and drops
	// the user's entry once no alert is left. It returns how many alerts were
	// removed.
	RemoveAlerts(ctx context.Context, userID string, ids []string) (int, error)
}

const (
	alertsPrefix        = "alerts:"
	corruptAlertsPrefix = "alerts_corrupt:"
)

var errCorruptAlerts = errors.New("corrupt alert list")

func alertsKey(userID string) string {
	return alertsPrefix + userID
}

type buntAlertRepository struct {
	db  *pkgbunt.DB
	log *logger.Logger
}

func NewBuntAlertRepository(db *pkgbunt.DB, log *logger.Logger) AlertRepository {
	return &buntAlertRepository{db: db, log: log}
}

func getAlerts(tx *buntdb.Tx, userID string) ([]model.Alert, error) {
	raw, err := tx.Get(alertsKey(userID))
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var alerts []model.Alert
	if err := json.Unmarshal([]byte(raw), &alerts); err != nil {
		return nil, fmt.Errorf("%w of %s: %v", errCorruptAlerts, userID, err)
	}
	return alerts, nil
}

// quarantineAlerts moves an undecodable list out of the alerts keyspace so
// the user can set alerts again. The raw value is kept for inspection.
func quarantineAlerts(tx *buntdb.Tx, userID string) error {
	raw, err := tx.Delete(alertsKey(userID))
	if err != nil {
		return err
	}
	_, _, err = tx.Set(corruptAlertsPrefix+userID, raw, nil)
	return err
}

func setAlerts(tx *buntdb.Tx, userID string, alerts []model.Alert) error {
	if len(alerts) == 0 {
		_, err := tx.Delete(alertsKey(userID))
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		}
		return err
	}
	raw, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("failed to encode alerts of %s: %w", userID, err)
	}
	_, _, err = tx.Set(alertsKey(userID), string(raw), nil)
	return err
}

func (r *buntAlertRepository) LoadAll(ctx context.Context) (model.AlertBook, error) {
	book := model.AlertBook{}
	err := r.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(alertsPrefix+"*", func(key, value string) bool {
			var alerts []model.Alert
			if err := json.Unmarshal([]byte(value), &alerts); err != nil {
				// a corrupt entry must not hide everyone else's alerts
				r.log.WarnContext(ctx, "Skipping corrupt alert list", logger.StringField("key", key), logger.ErrorField(err))
				return true
			}
			if len(alerts) > 0 {
				book[strings.TrimPrefix(key, alertsPrefix)] = alerts
			}
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	return book, nil
}

func (r *buntAlertRepository) ListByUser(ctx context.Context, userID string) ([]model.Alert, error) {
	var alerts []model.Alert
	err := r.db.View(func(tx *buntdb.Tx) error {
		var err error
		alerts, err = getAlerts(tx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts of %s: %w", userID, err)
	}
	return alerts, nil
}

func (r *buntAlertRepository) Add(ctx context.Context, alert model.Alert) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		alerts, err := getAlerts(tx, alert.UserID)
		if errors.Is(err, errCorruptAlerts) {
			r.log.WarnContext(ctx, "Moving corrupt alert list aside", logger.StringField("user_id", alert.UserID), logger.ErrorField(err))
			if err := quarantineAlerts(tx, alert.UserID); err != nil {
				return fmt.Errorf("failed to move corrupt alerts of %s: %w", alert.UserID, err)
			}
			alerts = nil
		} else if err != nil {
			return err
		}
		return setAlerts(tx, alert.UserID, append(alerts, alert))
	})
}

func (r *buntAlertRepository) RemoveAlerts(ctx context.Context, userID string, ids []string) (int, error) {
	removed := 0
	err := r.db.Update(func(tx *buntdb.Tx) error {
		alerts, err := getAlerts(tx, userID)
		if err != nil {
			return err
		}
		kept := lo.Reject(alerts, func(a model.Alert, _ int) bool { return lo.Contains(ids, a.ID) })
		removed = len(alerts) - len(kept)
		if removed == 0 {
			return nil
		}
		return setAlerts(tx, userID, kept)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove alerts of %s: %w", userID, err)
	}
	return removed, nil
}
