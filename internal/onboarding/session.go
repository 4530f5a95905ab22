package onboarding

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNoSession      = errors.New("onboarding session not started")
	ErrInvalidSession = errors.New("onboarding session is in an invalid state")
)

// Step is the question a session is waiting to have answered.
type Step int

const (
	StepOwnsCrypto Step = 0
	StepBTCAmount  Step = 1
	StepOtherCoins Step = 2
	// StepCoinAmount asks the amount of OtherSymbols[OtherSymbolIndex]. The
	// step stays put while the index walks the list.
	StepCoinAmount Step = 4
	StepStrategy        Step = 100
	StepRiskTolerance   Step = 101
	StepTimeHorizon     Step = 102
	StepExperience      Step = 103
	StepTimezone        Step = 104
)

func (s Step) isCoinAmount() bool {
	return s == StepCoinAmount
}

func (s Step) key() string {
	return strconv.Itoa(int(s))
}

func coinKey(symbol string) string {
	return "other_" + symbol
}

// Session is the scratch state of an unfinished onboarding dialog. A profile
// without a session has either finished onboarding or never started it.
type Session struct {
	Step             Step              `json:"setup_step"`
	Answers          map[string]string `json:"setup_answers"`
	OtherSymbols     []string          `json:"other_symbols,omitempty"`
	OtherSymbolIndex int               `json:"other_symbol_index"`
}

// Validate rejects states the dialog can never reach, e.g. a coin index while
// the session is not asking for coin amounts.
func (s *Session) Validate() error {
	if s == nil {
		return ErrNoSession
	}
	if s.Answers == nil {
		return fmt.Errorf("%w: answers missing", ErrInvalidSession)
	}

	switch {
	case s.Step == StepOwnsCrypto, s.Step == StepBTCAmount, s.Step == StepOtherCoins,
		s.Step >= StepStrategy && s.Step <= StepTimezone:
		if len(s.OtherSymbols) != 0 || s.OtherSymbolIndex != 0 {
			return fmt.Errorf("%w: coin list set at step %d", ErrInvalidSession, s.Step)
		}
	case s.Step.isCoinAmount():
		if s.OtherSymbolIndex < 0 || s.OtherSymbolIndex >= len(s.OtherSymbols) {
			return fmt.Errorf("%w: coin %d of %d", ErrInvalidSession, s.OtherSymbolIndex, len(s.OtherSymbols))
		}
	default:
		return fmt.Errorf("%w: unknown step %d", ErrInvalidSession, s.Step)
	}
	return nil
}

// CurrentPrompt returns the question the session is waiting on, used to
// re-ask after a restart or a stray command.
func (s *Session) CurrentPrompt() (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	return promptFor(s), nil
}

func (s *Session) moveTo(step Step) {
	s.Step = step
	if !step.isCoinAmount() {
		s.OtherSymbols = nil
		s.OtherSymbolIndex = 0
	}
}
