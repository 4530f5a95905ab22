package onboarding

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func advanceAll(t *testing.T, s *Session, inputs ...string) Reply {
	t.Helper()
	var reply Reply
	for i, in := range inputs {
		require.False(t, reply.Done(), "dialog finished before input %d (%q)", i, in)
		var err error
		reply, err = s.Advance(in)
		require.NoError(t, err, "input %d (%q)", i, in)
	}
	return reply
}

func TestBegin(t *testing.T) {
	s, reply := Begin()

	require.NoError(t, s.Validate())
	assert.Equal(t, StepOwnsCrypto, s.Step)
	assert.Empty(t, s.Answers)
	require.Len(t, reply.Messages, 2)
	assert.Contains(t, reply.Messages[0], "Welcome to Cryptiq!")
	assert.Equal(t, ownsCryptoPrompt, reply.Messages[1])
}

func TestAdvance_ConcreteScenario(t *testing.T) {
	s, _ := Begin()

	reply := advanceAll(t, s,
		"yes", "0.5", "ETH, DOGE", "2.0", "skip", "HODL", "Low", "Months", "Beginner", "UTC",
	)

	require.True(t, reply.Done())
	assert.Equal(t, map[string]float64{"btc": 0.5, "eth": 2.0}, reply.Result.Holdings)
	assert.Equal(t, "HODL", reply.Result.Strategy)
	assert.Equal(t, "Low", reply.Result.RiskTolerance)
	assert.Equal(t, "Months", reply.Result.TimeHorizon)
	assert.Equal(t, "Beginner", reply.Result.Experience)
	assert.Equal(t, "UTC", reply.Result.Timezone)
	assert.Equal(t, []string{completeText}, reply.Messages)
}

func TestAdvance_PromptSequence(t *testing.T) {
	s, _ := Begin()

	steps := []struct {
		in         string
		wantStep   Step
		wantPrompt string
	}{
		{in: "yes", wantStep: StepBTCAmount, wantPrompt: btcAmountPrompt},
		{in: "0.5", wantStep: StepOtherCoins, wantPrompt: otherCoinsPrompt},
		{in: "eth, doge", wantStep: StepCoinAmount, wantPrompt: coinAmountPrompt("eth")},
		{in: "2", wantStep: StepCoinAmount, wantPrompt: coinAmountPrompt("doge")},
		{in: "3", wantStep: StepStrategy, wantPrompt: strategyPrompt},
		{in: "HODL", wantStep: StepRiskTolerance, wantPrompt: riskPrompt},
		{in: "Low", wantStep: StepTimeHorizon, wantPrompt: horizonPrompt},
		{in: "Weeks", wantStep: StepExperience, wantPrompt: experiencePrompt},
		{in: "Advanced", wantStep: StepTimezone, wantPrompt: timezonePrompt},
	}

	for _, st := range steps {
		reply, err := s.Advance(st.in)
		require.NoError(t, err)
		assert.Equal(t, st.wantStep, s.Step, "after %q", st.in)
		assert.Equal(t, []string{st.wantPrompt}, reply.Messages, "after %q", st.in)
		assert.NoError(t, s.Validate())
	}
}

func TestAdvance_NoSkipsBTCQuestion(t *testing.T) {
	for _, answer := range []string{"no", "skip", "", "nah", "YES please"} {
		t.Run(answer, func(t *testing.T) {
			s, _ := Begin()

			reply, err := s.Advance(answer)
			require.NoError(t, err)

			assert.Equal(t, StepStrategy, s.Step)
			assert.Equal(t, []string{strategyPrompt}, reply.Messages)
			assert.Equal(t, answer, s.Answers["0"])

			reply = advanceAll(t, s, "HODL", "Low", "Days", "Beginner", "Europe/London")
			require.True(t, reply.Done())
			assert.Empty(t, reply.Result.Holdings)
		})
	}
}

func TestAdvance_YesVariants(t *testing.T) {
	for _, answer := range []string{"yes", "Y", " YES "} {
		s, _ := Begin()
		reply, err := s.Advance(answer)
		require.NoError(t, err)
		assert.Equal(t, []string{btcAmountPrompt}, reply.Messages)
	}
}

func TestAdvance_InvalidCoinAmountIsRejected(t *testing.T) {
	s, _ := Begin()
	advanceAll(t, s, "yes", "1", "eth, sol")
	require.Equal(t, StepCoinAmount, s.Step)

	for _, bad := range []string{"two", "", "1.2.3", "NaN", "inf", "skipping"} {
		reply, err := s.Advance(bad)
		require.NoError(t, err)
		assert.Equal(t, StepCoinAmount, s.Step, "input %q advanced the dialog", bad)
		assert.Equal(t, 0, s.OtherSymbolIndex)
		assert.Equal(t, []string{invalidAmountPrompt("eth")}, reply.Messages)
		assert.NotContains(t, s.Answers, "other_eth")
	}

	reply, err := s.Advance("SKIP")
	require.NoError(t, err)
	assert.Equal(t, 1, s.OtherSymbolIndex)
	assert.Equal(t, []string{coinAmountPrompt("sol")}, reply.Messages)
}

func TestAdvance_OtherCoinsParsing(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantCoins []string
	}{
		{name: "none", in: "none", wantCoins: nil},
		{name: "None uppercase", in: "NONE", wantCoins: nil},
		{name: "skip", in: "Skip", wantCoins: nil},
		{name: "empty", in: "   ", wantCoins: nil},
		{name: "only btc", in: "BTC", wantCoins: nil},
		{name: "mixed", in: "ETH, btc, , Doge", wantCoins: []string{"eth", "doge"}},
		{name: "duplicates", in: "eth,ETH, eth", wantCoins: []string{"eth"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCoins, ParseSymbols(tt.in))

			s, _ := Begin()
			reply := advanceAll(t, s, "yes", "skip", tt.in)
			if tt.wantCoins == nil {
				assert.Equal(t, StepStrategy, s.Step)
				assert.Equal(t, []string{strategyPrompt}, reply.Messages)
				return
			}
			assert.Equal(t, StepCoinAmount, s.Step)
			assert.Equal(t, tt.wantCoins, s.OtherSymbols)
		})
	}
}

func TestAdvance_HoldingsOnlyContainParsedAmounts(t *testing.T) {
	s, _ := Begin()

	reply := advanceAll(t, s,
		"yes", "lots", "eth, sol, ada", "skip", " 12.5 ", "0", "", "", "", "", "",
	)

	require.True(t, reply.Done())
	assert.Equal(t, map[string]float64{"sol": 12.5, "ada": 0}, reply.Result.Holdings)
	assert.NotContains(t, reply.Result.Holdings, "btc")
	assert.NotContains(t, reply.Result.Holdings, "eth")
}

func TestAdvance_TimezoneDefaults(t *testing.T) {
	for _, tz := range []string{"", "skip", "Skip"} {
		s, _ := Begin()
		reply := advanceAll(t, s, "no", "", "", "", "", tz)
		require.True(t, reply.Done())
		assert.Equal(t, "US/Pacific", reply.Result.Timezone)
	}
}

func TestAdvance_FreeTextStoredAsIs(t *testing.T) {
	s, _ := Begin()
	reply := advanceAll(t, s, "no", "Swing trading", "", "Hours", "skip", "America/New_York")

	require.True(t, reply.Done())
	assert.Equal(t, "Swing trading", reply.Result.Strategy)
	assert.Equal(t, "", reply.Result.RiskTolerance)
	assert.Equal(t, "Hours", reply.Result.TimeHorizon)
	assert.Equal(t, "skip", reply.Result.Experience)
	assert.Equal(t, "America/New_York", reply.Result.Timezone)
}

func TestAdvance_AnyPathReachesTerminal(t *testing.T) {
	paths := [][]string{
		{"no", "a", "b", "c", "d", "e"},
		{"y", "skip", "none", "a", "b", "c", "d", "e"},
		{"yes", "1", "xrp", "x", "skip", "a", "b", "c", "d", "e"},
		{"yes", "1", "eth,ltc,sol", "1", "2", "3", "a", "b", "c", "d", ""},
	}

	for _, path := range paths {
		s, _ := Begin()
		reply := advanceAll(t, s, path...)
		assert.True(t, reply.Done(), "path %v did not finish", path)
		assert.NotNil(t, reply.Result.Holdings)
	}
}

func TestAdvance_LongCoinList(t *testing.T) {
	symbols := make([]string, 100)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("c%d", i)
	}

	s, _ := Begin()
	advanceAll(t, s, "yes", "0.5", strings.Join(symbols, ", "))

	for i, symbol := range symbols {
		require.NoError(t, s.Validate(), "coin %d", i)
		assert.Equal(t, StepCoinAmount, s.Step)
		assert.Equal(t, i, s.OtherSymbolIndex)

		reply, err := s.Advance("1")
		require.NoError(t, err, "coin %d (%s)", i, symbol)
		if i+1 < len(symbols) {
			assert.Equal(t, []string{coinAmountPrompt(symbols[i+1])}, reply.Messages)
		}
	}
	assert.Equal(t, StepStrategy, s.Step)
	assert.Empty(t, s.OtherSymbols)

	reply := advanceAll(t, s, "HODL", "Low", "Months", "Beginner", "UTC")
	require.True(t, reply.Done())
	assert.Len(t, reply.Result.Holdings, 101)
	assert.Equal(t, 1.0, reply.Result.Holdings["c99"])
}

func TestAdvance_NilSession(t *testing.T) {
	var s *Session
	_, err := s.Advance("yes")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestValidate_RejectsIllegalStates(t *testing.T) {
	tests := []struct {
		name string
		s    Session
	}{
		{name: "missing answers", s: Session{Step: StepStrategy}},
		{name: "unknown step", s: Session{Step: 3, Answers: map[string]string{}}},
		{name: "step past timezone", s: Session{Step: 105, Answers: map[string]string{}}},
		{name: "coin index before coin steps", s: Session{Step: StepBTCAmount, Answers: map[string]string{}, OtherSymbols: []string{"eth"}, OtherSymbolIndex: 1}},
		{name: "coin step without coins", s: Session{Step: StepCoinAmount, Answers: map[string]string{}}},
		{name: "coin index past list", s: Session{Step: StepCoinAmount, Answers: map[string]string{}, OtherSymbols: []string{"eth", "sol"}, OtherSymbolIndex: 2}},
		{name: "step between coins and strategy", s: Session{Step: 5, Answers: map[string]string{}, OtherSymbols: []string{"eth", "sol"}, OtherSymbolIndex: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			assert.ErrorIs(t, err, ErrInvalidSession)

			_, err = tt.s.Advance("anything")
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestSession_JSONRoundTripResumesDialog(t *testing.T) {
	s, _ := Begin()
	advanceAll(t, s, "yes", "0.25", "ltc, eth")

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"setup_step":4`)
	assert.Contains(t, string(raw), `"other_symbol_index":0`)

	var restored Session
	require.NoError(t, json.Unmarshal(raw, &restored))

	prompt, err := restored.CurrentPrompt()
	require.NoError(t, err)
	assert.Equal(t, coinAmountPrompt("ltc"), prompt)

	reply := advanceAll(t, &restored, "4", "1.5", "HODL", "Low", "Months", "Beginner", "UTC+2")
	require.True(t, reply.Done())
	assert.Equal(t, map[string]float64{"btc": 0.25, "ltc": 4, "eth": 1.5}, reply.Result.Holdings)
	assert.Equal(t, "UTC+2", reply.Result.Timezone)
}
