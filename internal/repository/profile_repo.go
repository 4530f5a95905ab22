package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cryptiq/internal/model"
	pkgbunt "cryptiq/pkg/buntdb"

	"github.com/tidwall/buntdb"
)

type ProfileRepository interface {
	// Get returns nil, nil when the user has no profile.
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
	Save(ctx context.Context, profile *model.UserProfile) error
	// Delete removes the profile together with the user's alerts and chat
	// log. It reports whether a profile existed.
	Delete(ctx context.Context, userID string) (bool, error)
}

func profileKey(userID string) string {
	return "profile:" + userID
}

type buntProfileRepository struct {
	db *pkgbunt.DB
}

func NewBuntProfileRepository(db *pkgbunt.DB) ProfileRepository {
	return &buntProfileRepository{db: db}
}

func (r *buntProfileRepository) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	var profile *model.UserProfile
	err := r.db.View(func(tx *buntdb.Tx) error {
		raw, err := tx.Get(profileKey(userID))
		if err != nil {
			return err
		}
		profile = &model.UserProfile{}
		return json.Unmarshal([]byte(raw), profile)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	return profile, nil
}

func (r *buntProfileRepository) Save(ctx context.Context, profile *model.UserProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return r.db.Update(func(tx *buntdb.Tx) error {
		if _, _, err := tx.Set(profileKey(profile.UserID), string(raw), nil); err != nil {
			return fmt.Errorf("failed to save profile %s: %w", profile.UserID, err)
		}
		return nil
	})
}

func (r *buntProfileRepository) Delete(ctx context.Context, userID string) (bool, error) {
	existed := false
	err := r.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(profileKey(userID))
		switch {
		case err == nil:
			existed = true
		case !errors.Is(err, buntdb.ErrNotFound):
			return err
		}

		for _, key := range []string{alertsKey(userID), corruptAlertsPrefix + userID} {
			if _, err := tx.Delete(key); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
				return err
			}
		}

		var chatKeys []string
		if err := tx.AscendKeys(chatLogPattern(userID), func(key, _ string) bool {
			chatKeys = append(chatKeys, key)
			return true
		}); err != nil {
			return err
		}
		for _, key := range chatKeys {
			if _, err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete profile %s: %w", userID, err)
	}
	return existed, nil
}
