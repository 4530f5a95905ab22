package onboarding

import (
	"math"
	"strconv"
	"strings"

	"cryptiq/pkg/common"

	"github.com/samber/lo"
)

// Reply is what the dialog says back after one step. Result is set only when
// the dialog has finished, in which case the caller must drop the session.
type Reply struct {
	Messages []string
	Result   *Result
}

func (r Reply) Done() bool {
	return r.Result != nil
}

// Result carries the profile fields collected by a finished dialog.
type Result struct {
	Holdings      map[string]float64
	Strategy      string
	RiskTolerance string
	TimeHorizon   string
	Experience    string
	Timezone      string
}

// Begin starts a new dialog and returns the welcome plus the first question.
func Begin() (*Session, Reply) {
	s := &Session{
		Step:    StepOwnsCrypto,
		Answers: map[string]string{},
	}
	return s, Reply{Messages: []string{welcomeText, ownsCryptoPrompt}}
}

// Advance consumes one inbound message. The answer is committed before the
// next question is chosen. A malformed coin amount is refused and the same
// coin is asked again without moving the session.
func (s *Session) Advance(text string) (Reply, error) {
	if err := s.Validate(); err != nil {
		return Reply{}, err
	}

	text = strings.TrimSpace(text)

	switch {
	case s.Step == StepOwnsCrypto:
		s.Answers[StepOwnsCrypto.key()] = text
		if isYes(text) {
			return s.ask(StepBTCAmount), nil
		}
		return s.ask(StepStrategy), nil

	case s.Step == StepBTCAmount:
		s.Answers[StepBTCAmount.key()] = text
		return s.ask(StepOtherCoins), nil

	case s.Step == StepOtherCoins:
		s.Answers[StepOtherCoins.key()] = text
		symbols := ParseSymbols(text)
		if len(symbols) == 0 {
			return s.ask(StepStrategy), nil
		}
		s.Step = StepCoinAmount
		s.OtherSymbols = symbols
		s.OtherSymbolIndex = 0
		return Reply{Messages: []string{promptFor(s)}}, nil

	case s.Step.isCoinAmount():
		symbol := s.OtherSymbols[s.OtherSymbolIndex]
		if !isSkip(text) {
			if _, ok := parseAmount(text); !ok {
				return Reply{Messages: []string{invalidAmountPrompt(symbol)}}, nil
			}
		}
		s.Answers[coinKey(symbol)] = text
		if s.OtherSymbolIndex+1 < len(s.OtherSymbols) {
			s.OtherSymbolIndex++
			return Reply{Messages: []string{promptFor(s)}}, nil
		}
		return s.ask(StepStrategy), nil

	case s.Step == StepTimezone:
		s.Answers[StepTimezone.key()] = text
		return Reply{Messages: []string{completeText}, Result: s.result()}, nil

	default:
		// strategy, risk tolerance, time horizon and experience are free text
		s.Answers[s.Step.key()] = text
		return s.ask(s.Step + 1), nil
	}
}

func (s *Session) ask(step Step) Reply {
	s.moveTo(step)
	return Reply{Messages: []string{promptFor(s)}}
}

func (s *Session) result() *Result {
	holdings := map[string]float64{}
	if amount, ok := parseAnswerAmount(s.Answers[StepBTCAmount.key()]); ok {
		holdings[common.SYMBOL_BTC] = amount
	}
	for key, answer := range s.Answers {
		symbol, found := strings.CutPrefix(key, "other_")
		if !found {
			continue
		}
		if amount, ok := parseAnswerAmount(answer); ok {
			holdings[symbol] = amount
		}
	}

	timezone := s.Answers[StepTimezone.key()]
	if timezone == "" || isSkip(timezone) {
		timezone = common.DEFAULT_TIMEZONE
	}

	return &Result{
		Holdings:      holdings,
		Strategy:      s.Answers[StepStrategy.key()],
		RiskTolerance: s.Answers[StepRiskTolerance.key()],
		TimeHorizon:   s.Answers[StepTimeHorizon.key()],
		Experience:    s.Answers[StepExperience.key()],
		Timezone:      timezone,
	}
}

// ParseSymbols splits a comma separated coin list into lower-case symbols.
// BTC is dropped since it has its own question; "none" and "skip" mean no
// coins.
func ParseSymbols(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "none") || isSkip(raw) {
		return nil
	}

	symbols := lo.FilterMap(strings.Split(raw, ","), func(part string, _ int) (string, bool) {
		symbol := strings.ToLower(strings.TrimSpace(part))
		return symbol, symbol != "" && symbol != common.SYMBOL_BTC
	})
	if len(symbols) == 0 {
		return nil
	}
	return lo.Uniq(symbols)
}

func parseAnswerAmount(answer string) (float64, bool) {
	if answer == "" || isSkip(answer) {
		return 0, false
	}
	return parseAmount(answer)
}

func parseAmount(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isYes(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "yes" || t == "y"
}

func isSkip(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "skip")
}
