package onboarding

import (
	"fmt"
	"strings"

	"cryptiq/pkg/common"
)

const (
	welcomeText = "Welcome to Cryptiq! I'm your AI crypto assistant. I provide market analysis, predictions, and portfolio advice for all cryptocurrencies.\n\n" +
		"Your data is kept private and secure, stored only for your use.\n\n" +
		"Let's set up your profile. You can skip any question by typing 'skip'." +
		common.DISCLAIMER

	ownsCryptoPrompt = "Do you own any crypto? (yes/no/skip)\nExample: yes"
	btcAmountPrompt  = "How much Bitcoin (BTC) do you currently own? (Reply with just the number or type 'skip')\nExample: 0.5"
	otherCoinsPrompt = "What other cryptocurrencies do you own? (List symbols separated by commas, or type 'none' or 'skip')\nExample: ETH, LTC, DOGE"
	strategyPrompt   = "What is your main trading strategy? (HODL, Swing trading, Day trading, Other, or Skip)\nExample: HODL"
	riskPrompt       = "How much are you willing to risk per trade? (Low 1–2%, Medium 3–5%, High 5–10%, or Skip)\nExample: Low 1–2%"
	horizonPrompt    = "How long do you plan to hold your position? (Hours, Days, Weeks, Months or longer, or Skip)\nExample: Months or longer"
	experiencePrompt = "What is your level of trading experience? (Beginner, Intermediate, Advanced, or Skip)\nExample: Beginner"
	timezonePrompt   = "What is your timezone? (e.g., UTC, UTC+2, America/Los_Angeles, America/New_York, Europe/London, or Skip)\nExample: America/Los_Angeles"

	completeText = "Profile setup complete! You can now use all features. Type /menu to open the main menu with buttons, or /help for commands." +
		common.DISCLAIMER
)

func coinAmountPrompt(symbol string) string {
	return fmt.Sprintf("How much %s do you currently own? (Reply with just the number or type 'skip')\nExample: 2.0", strings.ToUpper(symbol))
}

func invalidAmountPrompt(symbol string) string {
	return fmt.Sprintf("Please enter a valid number for %s (or type 'skip'). Example: 2.0", strings.ToUpper(symbol))
}

// promptFor returns the question asked while the session waits on step.
func promptFor(s *Session) string {
	switch {
	case s.Step == StepOwnsCrypto:
		return ownsCryptoPrompt
	case s.Step == StepBTCAmount:
		return btcAmountPrompt
	case s.Step == StepOtherCoins:
		return otherCoinsPrompt
	case s.Step.isCoinAmount():
		return coinAmountPrompt(s.OtherSymbols[s.OtherSymbolIndex])
	case s.Step == StepStrategy:
		return strategyPrompt
	case s.Step == StepRiskTolerance:
		return riskPrompt
	case s.Step == StepTimeHorizon:
		return horizonPrompt
	case s.Step == StepExperience:
		return experiencePrompt
	case s.Step == StepTimezone:
		return timezonePrompt
	}
	return ""
}
