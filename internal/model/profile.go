package model

import (
	"sort"
	"time"

	"cryptiq/internal/onboarding"
	"cryptiq/pkg/common"

	"github.com/samber/lo"
)

const (
	NotSet          = "Not set"
	DefaultLanguage = "en"
)

// Holdings maps a lower-case coin symbol to the amount held.
type Holdings map[string]float64

// Symbols returns the held symbols in alphabetical order.
func (h Holdings) Symbols() []string {
	symbols := lo.Keys(h)
	sort.Strings(symbols)
	return symbols
}

type UserProfile struct {
	UserID        string              `json:"user_id"`
	Holdings      Holdings            `json:"holdings"`
	Bank          *float64            `json:"bank,omitempty"`
	Strategy      string              `json:"strategy"`
	RiskTolerance string              `json:"risk_tolerance"`
	TimeHorizon   string              `json:"time_horizon"`
	Experience    string              `json:"experience"`
	Timezone      string              `json:"timezone"`
	Language      string              `json:"language"`
	Onboarding    *onboarding.Session `json:"onboarding,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:        userID,
		Holdings:      Holdings{},
		Strategy:      NotSet,
		RiskTolerance: NotSet,
		TimeHorizon:   NotSet,
		Experience:    NotSet,
		Timezone:      common.DEFAULT_TIMEZONE,
		Language:      DefaultLanguage,
	}
}

// IsOnboarding reports whether the user is in the middle of the setup dialog.
func (p *UserProfile) IsOnboarding() bool {
	return p != nil && p.Onboarding != nil
}

// CompleteOnboarding copies the collected answers onto the profile and drops
// the dialog scratch state.
func (p *UserProfile) CompleteOnboarding(result *onboarding.Result) {
	p.Holdings = Holdings(result.Holdings)
	p.Strategy = result.Strategy
	p.RiskTolerance = result.RiskTolerance
	p.TimeHorizon = result.TimeHorizon
	p.Experience = result.Experience
	p.Timezone = result.Timezone
	p.Onboarding = nil
}

// Display returns value or "Not set" when it is empty.
func Display(value string) string {
	if value == "" {
		return NotSet
	}
	return value
}
