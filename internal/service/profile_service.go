package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/internal/model"
	"cryptiq/internal/onboarding"
	"cryptiq/internal/repository"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/utils"
)

var (
	ErrNoProfile    = errors.New("profile not found")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	bankPattern    = regexp.MustCompile(`(\$?\d+[\d,\.]*\d*)`)
	holdingPattern = regexp.MustCompile(`(\w+)[\s:=,]*([\d\.]+)`)
)

// OnboardingReply is the outcome of feeding one message to the setup dialog.
type OnboardingReply struct {
	Messages []string
	Done     bool
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
	// Start begins the setup dialog for unknown or unfinished users. started
	// is false for users with a finished profile.
	Start(ctx context.Context, userID string) (reply OnboardingReply, started bool, err error)
	// Advance feeds text to a running setup dialog. handled is false when the
	// user has no dialog in progress.
	Advance(ctx context.Context, userID, text string) (reply OnboardingReply, handled bool, err error)
	// CancelOnboarding drops a running dialog and reports whether there was
	// one.
	CancelOnboarding(ctx context.Context, userID string) (bool, error)
	SetBank(ctx context.Context, userID string, amount float64) error
	SetHolding(ctx context.Context, userID, coin string, amount float64) error
	SetStrategy(ctx context.Context, userID, strategy string) error
	SetLanguage(ctx context.Context, userID string, language dto.Language) error
	SetTimezone(ctx context.Context, userID, timezone string) error
	Delete(ctx context.Context, userID string) (bool, error)
}

type profileService struct {
	cfg         *config.Config
	log         *logger.Logger
	profileRepo repository.ProfileRepository
}

func NewProfileService(cfg *config.Config, log *logger.Logger, profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{
		cfg:         cfg,
		log:         log,
		profileRepo: profileRepo,
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get profile", logger.ErrorField(err), logger.StringField("user_id", userID))
		return nil, err
	}
	if profile == nil {
		return nil, ErrNoProfile
	}
	return profile, nil
}

func (s *profileService) Start(ctx context.Context, userID string) (OnboardingReply, bool, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return OnboardingReply{}, false, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile != nil && !profile.IsOnboarding() {
		return OnboardingReply{}, false, nil
	}
	if profile == nil {
		profile = model.NewUserProfile(userID)
	}

	session, reply := onboarding.Begin()
	profile.Onboarding = session
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return OnboardingReply{}, false, fmt.Errorf("failed to save profile: %w", err)
	}

	s.log.InfoContext(ctx, "Onboarding started", logger.StringField("user_id", userID))
	return OnboardingReply{Messages: reply.Messages}, true, nil
}

func (s *profileService) Advance(ctx context.Context, userID, text string) (OnboardingReply, bool, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return OnboardingReply{}, false, fmt.Errorf("failed to get profile: %w", err)
	}
	if !profile.IsOnboarding() {
		return OnboardingReply{}, false, nil
	}

	reply, err := profile.Onboarding.Advance(text)
	if err != nil {
		// a corrupt session cannot be resumed, start over
		s.log.WarnContext(ctx, "Restarting broken onboarding session", logger.ErrorField(err), logger.StringField("user_id", userID))
		session, restart := onboarding.Begin()
		profile.Onboarding = session
		reply = restart
	}
	if reply.Done() {
		profile.CompleteOnboarding(reply.Result)
	}

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return OnboardingReply{}, true, fmt.Errorf("failed to save profile: %w", err)
	}
	if reply.Done() {
		s.log.InfoContext(ctx, "Onboarding completed",
			logger.StringField("user_id", userID),
			logger.IntField("holdings", len(profile.Holdings)),
		)
	}
	return OnboardingReply{Messages: reply.Messages, Done: reply.Done()}, true, nil
}

func (s *profileService) CancelOnboarding(ctx context.Context, userID string) (bool, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get profile: %w", err)
	}
	if !profile.IsOnboarding() {
		return false, nil
	}
	profile.Onboarding = nil
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return false, fmt.Errorf("failed to save profile: %w", err)
	}
	return true, nil
}

// update loads or creates the profile, applies fn and saves it.
func (s *profileService) update(ctx context.Context, userID string, fn func(p *model.UserProfile)) error {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		profile = model.NewUserProfile(userID)
	}
	fn(profile)
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		s.log.ErrorContext(ctx, "Failed to save profile", logger.ErrorField(err), logger.StringField("user_id", userID))
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *profileService) SetBank(ctx context.Context, userID string, amount float64) error {
	if !isFinite(amount) {
		return fmt.Errorf("%w: bank must be a number", ErrInvalidInput)
	}
	return s.update(ctx, userID, func(p *model.UserProfile) {
		p.Bank = utils.ToPointer(amount)
	})
}

func (s *profileService) SetHolding(ctx context.Context, userID, coin string, amount float64) error {
	coin = strings.ToLower(strings.TrimSpace(coin))
	if coin == "" || !isFinite(amount) {
		return fmt.Errorf("%w: holding needs a coin and a number", ErrInvalidInput)
	}
	return s.update(ctx, userID, func(p *model.UserProfile) {
		if p.Holdings == nil {
			p.Holdings = model.Holdings{}
		}
		p.Holdings[coin] = amount
	})
}

func (s *profileService) SetStrategy(ctx context.Context, userID, strategy string) error {
	strategy = strings.TrimSpace(strategy)
	if strategy == "" {
		return fmt.Errorf("%w: strategy is empty", ErrInvalidInput)
	}
	return s.update(ctx, userID, func(p *model.UserProfile) {
		p.Strategy = strategy
	})
}

func (s *profileService) SetLanguage(ctx context.Context, userID string, language dto.Language) error {
	return s.update(ctx, userID, func(p *model.UserProfile) {
		p.Language = language.Code
	})
}

func (s *profileService) SetTimezone(ctx context.Context, userID, timezone string) error {
	timezone = strings.TrimSpace(timezone)
	if !utils.ValidLocation(timezone) {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}
	return s.update(ctx, userID, func(p *model.UserProfile) {
		p.Timezone = timezone
	})
}

func (s *profileService) Delete(ctx context.Context, userID string) (bool, error) {
	existed, err := s.profileRepo.Delete(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete profile", logger.ErrorField(err), logger.StringField("user_id", userID))
		return false, err
	}
	s.log.InfoContext(ctx, "Profile deleted", logger.StringField("user_id", userID))
	return existed, nil
}

// ParseBankAmount finds the first money amount in free text, e.g. "$5,000".
func ParseBankAmount(text string) (float64, error) {
	match := bankPattern.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("%w: no number in message", ErrInvalidInput)
	}
	amount, err := strconv.ParseFloat(strings.NewReplacer("$", "", ",", "").Replace(match), 64)
	if err != nil || !isFinite(amount) {
		return 0, fmt.Errorf("%w: could not parse %q", ErrInvalidInput, match)
	}
	return amount, nil
}

// ParseHolding reads a "<coin> <amount>" pair from free text, e.g. "BTC 0.5"
// or "eth: 2". ok is false when the text has no such pair.
func ParseHolding(text string) (coin string, amount float64, ok bool, err error) {
	match := holdingPattern.FindStringSubmatch(strings.ToLower(text))
	if match == nil {
		return "", 0, false, nil
	}
	amount, err = strconv.ParseFloat(strings.ReplaceAll(match[2], ",", ""), 64)
	if err != nil || !isFinite(amount) {
		return match[1], 0, true, fmt.Errorf("%w: could not parse %q", ErrInvalidInput, match[2])
	}
	return match[1], amount, true, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
