package telegram

import (
	"cryptiq/internal/dto"

	"gopkg.in/telebot.v3"
)

var (
	btnPortfolio      = telebot.Btn{Text: "💰 Portfolio", Unique: "portfolio"}
	btnUpdateBank     = telebot.Btn{Text: "Update Bank", Unique: "update_bank"}
	btnUpdateHoldings = telebot.Btn{Text: "Update Holdings", Unique: "update_holdings"}
	btnSetAlert       = telebot.Btn{Text: "Set Alert", Unique: "set_alert"}
	btnShowNews       = telebot.Btn{Text: "Show News", Unique: "show_news"}
	btnSettings       = telebot.Btn{Text: "Settings", Unique: "settings"}
	btnDeleteProfile  = telebot.Btn{Text: "Delete Profile", Unique: "delete_profile"}

	btnChangeLanguage = telebot.Btn{Text: "Change Language", Unique: "change_language"}
	btnChangeTimezone = telebot.Btn{Text: "Change Timezone", Unique: "change_timezone"}
	btnChangeStrategy = telebot.Btn{Text: "Change Strategy", Unique: "change_strategy"}
	btnMainMenu       = telebot.Btn{Text: "Back to Menu", Unique: "main_menu"}
)

func mainMenuMarkup() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnPortfolio),
		menu.Row(btnUpdateBank, btnUpdateHoldings),
		menu.Row(btnSetAlert, btnShowNews),
		menu.Row(btnSettings),
		menu.Row(btnDeleteProfile),
	)
	return menu
}

func settingsMarkup() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnChangeLanguage),
		menu.Row(btnChangeTimezone),
		menu.Row(btnChangeStrategy),
		menu.Row(btnMainMenu),
	)
	return menu
}

// languageMarkup is a one-off reply keyboard with one language per row.
func languageMarkup() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	rows := make([]telebot.Row, 0, len(dto.Languages))
	for _, l := range dto.Languages {
		rows = append(rows, menu.Row(menu.Text(l.Name)))
	}
	menu.Reply(rows...)
	return menu
}

func removeKeyboard() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{RemoveKeyboard: true}
}
