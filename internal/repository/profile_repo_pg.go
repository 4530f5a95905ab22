package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cryptiq/internal/model"
	"cryptiq/internal/onboarding"
	"cryptiq/pkg/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userProfileRow is the user_profiles table. Holdings and the onboarding
// scratch state are kept as JSON columns.
type userProfileRow struct {
	UserID        string         `gorm:"primaryKey"`
	Holdings      datatypes.JSON `gorm:"type:jsonb;not null"`
	Bank          *float64
	Strategy      string
	RiskTolerance string
	TimeHorizon   string
	Experience    string
	Timezone      string
	Language      string
	Onboarding    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (userProfileRow) TableName() string {
	return "user_profiles"
}

func toProfileRow(p *model.UserProfile) (*userProfileRow, error) {
	holdings, err := json.Marshal(p.Holdings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode holdings: %w", err)
	}
	row := &userProfileRow{
		UserID:        p.UserID,
		Holdings:      datatypes.JSON(holdings),
		Bank:          p.Bank,
		Strategy:      p.Strategy,
		RiskTolerance: p.RiskTolerance,
		TimeHorizon:   p.TimeHorizon,
		Experience:    p.Experience,
		Timezone:      p.Timezone,
		Language:      p.Language,
		CreatedAt:     p.CreatedAt,
	}
	if p.Onboarding != nil {
		session, err := json.Marshal(p.Onboarding)
		if err != nil {
			return nil, fmt.Errorf("failed to encode onboarding session: %w", err)
		}
		row.Onboarding = datatypes.JSON(session)
	}
	return row, nil
}

func (row *userProfileRow) toModel() (*model.UserProfile, error) {
	p := &model.UserProfile{
		UserID:        row.UserID,
		Holdings:      model.Holdings{},
		Bank:          row.Bank,
		Strategy:      row.Strategy,
		RiskTolerance: row.RiskTolerance,
		TimeHorizon:   row.TimeHorizon,
		Experience:    row.Experience,
		Timezone:      row.Timezone,
		Language:      row.Language,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if len(row.Holdings) > 0 {
		if err := json.Unmarshal(row.Holdings, &p.Holdings); err != nil {
			return nil, fmt.Errorf("failed to decode holdings: %w", err)
		}
	}
	if len(row.Onboarding) > 0 && string(row.Onboarding) != "null" {
		p.Onboarding = &onboarding.Session{}
		if err := json.Unmarshal(row.Onboarding, p.Onboarding); err != nil {
			return nil, fmt.Errorf("failed to decode onboarding session: %w", err)
		}
	}
	return p, nil
}

type pgProfileRepository struct {
	db  *gorm.DB
	uow UnitOfWork
}

func NewPgProfileRepository(db *gorm.DB) ProfileRepository {
	return &pgProfileRepository{db: db, uow: NewUnitOfWork(db)}
}

func (r *pgProfileRepository) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	var row userProfileRow
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	return row.toModel()
}

func (r *pgProfileRepository) Save(ctx context.Context, profile *model.UserProfile) error {
	row, err := toProfileRow(profile)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.UserID, err)
	}
	profile.CreatedAt = row.CreatedAt
	profile.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *pgProfileRepository) Delete(ctx context.Context, userID string) (bool, error) {
	var existed bool
	err := r.uow.Run(ctx, func(opts ...utils.DBOption) error {
		tx := utils.ApplyOptions(r.db, opts...).WithContext(ctx)

		res := tx.Where("user_id = ?", userID).Delete(&userProfileRow{})
		if res.Error != nil {
			return res.Error
		}
		existed = res.RowsAffected > 0

		if err := tx.Where("user_id = ?", userID).Delete(&model.Alert{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&model.ChatLogEntry{}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete profile %s: %w", userID, err)
	}
	return existed, nil
}
