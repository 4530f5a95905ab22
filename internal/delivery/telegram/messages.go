package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"cryptiq/internal/dto"
	"cryptiq/internal/model"
	"cryptiq/pkg/common"
	"cryptiq/pkg/telegram"
	"cryptiq/pkg/utils"

	"github.com/samber/lo"
)

const (
	messageHelp = "Available commands:\n" +
		"/start - Start or reset your profile\n" +
		"/portfolio - Show your portfolio\n" +
		"/setbank <amount> - Set your bank balance\n" +
		"/setholdings <coin> <amount> - Set holdings\n" +
		"/setstrategy <strategy> - Set your trading strategy\n" +
		"/setalert <coin> <price> - Set a price alert\n" +
		"/alerts - List your price alerts\n" +
		"/news - Show latest crypto news\n" +
		"/analytics - Best and worst performer this week\n" +
		"/risk - Show your concentration risk\n" +
		"/backtest [days] - Portfolio change over a past window\n" +
		"/settings - Show your settings\n" +
		"/language - Change your language\n" +
		"/deleteprofile - Delete your profile\n" +
		"/menu - Show main menu\n" +
		"/cancel - Cancel profile setup or a pending input" +
		common.DISCLAIMER

	messageMainMenu = "Main Menu:" + common.DISCLAIMER

	messageNoPortfolio  = "No portfolio found. Use /start to set up your profile." + common.DISCLAIMER
	messageNoHoldings   = "No holdings found. Use /setholdings <coin> <amount> to add." + common.DISCLAIMER
	messageNoMarketData = "Could not fetch real-time data from CoinGecko. Please try again later."

	messageBankPrompt     = "Send me your new bank balance (e.g., $5000 or 5000)" + common.DISCLAIMER
	messageBankUsage      = "Usage: /setbank <amount>" + common.DISCLAIMER
	messageBankNoNumber   = "Please include a number in your message." + common.DISCLAIMER
	messageBankParseError = "Could not parse the amount. Try again." + common.DISCLAIMER

	messageHoldingsPrompt     = "Send me your new holdings (e.g., BTC 0.5 or LTC 2.0)" + common.DISCLAIMER
	messageHoldingsUsage      = "Usage: /setholdings <coin> <amount>" + common.DISCLAIMER
	messageHoldingsParseError = "Could not parse holdings. Try again (e.g., BTC 0.5)." + common.DISCLAIMER

	messageStrategyPrompt  = "Send me your new strategy (e.g., HODL, Swing trading, Day trading)." + common.DISCLAIMER
	messageStrategyUsage   = "Usage: /setstrategy <strategy>" + common.DISCLAIMER
	messageStrategyUpdated = "Strategy updated." + common.DISCLAIMER

	messageAlertPrompt = "Use /setalert <coin> <price> to set a price alert." + common.DISCLAIMER
	messageAlertUsage  = "Usage: /setalert <coin> <price>\nExample: /setalert btc 70000" + common.DISCLAIMER
	messageNoAlerts    = "You have no active alerts." + common.DISCLAIMER

	messageNewsError = "Could not fetch news." + common.DISCLAIMER

	messageProfileDeleted     = "Your profile and portfolio have been deleted." + common.DISCLAIMER
	messageNoProfileToDelete  = "No profile found to delete." + common.DISCLAIMER
	messageDeleteProfileError = "Error deleting profile." + common.DISCLAIMER

	messageChooseLanguage      = "Choose your language:"
	messageLanguageUnknown     = "Language not recognized."
	messageTimezonePrompt      = "Send me your timezone (e.g., UTC, UTC+2, America/New_York, Europe/London)." + common.DISCLAIMER
	messageTimezoneUnknown     = "Timezone not recognized. Try again (e.g., UTC+2 or Europe/London)." + common.DISCLAIMER
	messageCancelled           = "Cancelled. Use /menu to open the main menu." + common.DISCLAIMER
	messageNothingToCancel     = "Nothing to cancel." + common.DISCLAIMER
	messageUnknownCommand      = "Unknown command. Use /help to see available commands." + common.DISCLAIMER
	messageAnalyticsNoHoldings = "No holdings found." + common.DISCLAIMER
	messageAnalyticsNoData     = "Not enough data for analytics." + common.DISCLAIMER
	messageAnalyticsError      = "Could not fetch analytics." + common.DISCLAIMER
	messageRiskNoValue         = "No holdings value found." + common.DISCLAIMER
	messageBacktestNoHistory   = "No historical data found." + common.DISCLAIMER
	messageBacktestError       = "Could not fetch backtest data." + common.DISCLAIMER
)

func formatBankSet(amount float64) string {
	return fmt.Sprintf("Bank balance set to %s.%s", telegram.FormatUSD(amount), common.DISCLAIMER)
}

func formatHoldingSet(coin string, amount float64) string {
	return fmt.Sprintf("Set %s holdings to %s.%s", strings.ToUpper(coin), formatAmount(amount), common.DISCLAIMER)
}

func formatAlertSet(alert model.Alert) string {
	return fmt.Sprintf("Alert set for %s at %s.%s", strings.ToUpper(alert.Coin), telegram.FormatUSD(alert.Price), common.DISCLAIMER)
}

func formatAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return messageNoAlerts
	}
	lines := lo.Map(alerts, func(a model.Alert, _ int) string {
		return fmt.Sprintf("• %s at %s", strings.ToUpper(a.Coin), telegram.FormatUSD(a.Price))
	})
	return "Your alerts:\n" + strings.Join(lines, "\n") + common.DISCLAIMER
}

func formatLanguageSet(language dto.Language) string {
	return fmt.Sprintf("Language set to %s.", language.Name)
}

func formatTimezoneSet(timezone string) string {
	return fmt.Sprintf("Timezone set to %s.%s", timezone, common.DISCLAIMER)
}

func formatSettings(profile *model.UserProfile) string {
	return fmt.Sprintf("Your Settings:\nLanguage: %s\nTimezone: %s\nStrategy: %s",
		dto.LanguageName(profile.Language),
		model.Display(profile.Timezone),
		model.Display(profile.Strategy),
	)
}

func formatPortfolio(summary *dto.PortfolioSummary, strategy string) string {
	perf := ""
	if diff, pct, ok := summary.Performance(); ok {
		arrow := "↑"
		if diff < 0 {
			arrow = "↓"
		}
		perf = fmt.Sprintf("\nPerformance since last check: %s %s (%s)", arrow, telegram.FormatUSD(abs(diff)), utils.FormatPercentage(pct))
	}

	lines := lo.Map(summary.Lines, func(l dto.PortfolioLine, _ int) string {
		return fmt.Sprintf("%s: %s (%s)  24h: %s",
			strings.ToUpper(l.Symbol),
			formatAmount(l.Amount),
			telegram.FormatUSD(l.Value),
			utils.FormatPercentage(l.Change24h),
		)
	})

	return fmt.Sprintf("💰 Portfolio Overview:\nStrategy: %s\nTotal Value: %s%s\nHoldings:\n%s\nCryptiq does not offer financial advice.",
		model.Display(strategy),
		telegram.FormatUSD(summary.Total),
		perf,
		strings.Join(lines, "\n"),
	)
}

func formatAnalytics(best, worst dto.CoinPerformance) string {
	return fmt.Sprintf("Best performer this week: %s (%s)\nWorst performer: %s (%s)%s",
		strings.ToUpper(best.Symbol), utils.FormatPercentage(best.ChangePct7d),
		strings.ToUpper(worst.Symbol), utils.FormatPercentage(worst.ChangePct7d),
		common.DISCLAIMER,
	)
}

func formatRisk(score float64) string {
	return fmt.Sprintf("Risk score (largest allocation): %.1f%%\nLower is better for diversification.%s", score, common.DISCLAIMER)
}

func formatBacktest(result *dto.BacktestResult) string {
	msg := fmt.Sprintf("Backtest (%dd): Portfolio change: %s (%s)",
		result.Days,
		telegram.FormatUSD(result.EndValue-result.StartValue),
		utils.FormatPercentage(result.ChangePercent()),
	)
	if len(result.Missing) > 0 {
		msg += "\nNo data for: " + strings.ToUpper(strings.Join(result.Missing, ", "))
	}
	return msg + common.DISCLAIMER
}

func formatBacktestUsage(windows []int) string {
	days := lo.Map(windows, func(d int, _ int) string { return strconv.Itoa(d) })
	return fmt.Sprintf("Usage: /backtest [days]\nSupported windows: %s days%s", strings.Join(days, ", "), common.DISCLAIMER)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
