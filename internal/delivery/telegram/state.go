package telegram

import (
	"fmt"

	"cryptiq/pkg/cache"
	"cryptiq/pkg/common"
)

// Pending input a user was asked for by a button or command. Onboarding is
// tracked on the profile itself, not here.
const (
	StateIdle = iota
	StateWaitingLanguage
	StateWaitingBank
	StateWaitingHoldings
	StateWaitingTimezone
	StateWaitingStrategy
)

func stateKey(userID int64) string {
	return fmt.Sprintf(common.KEY_TELEGRAM_STATE, userID)
}

func (t *TelegramBotHandler) setUserState(userID int64, state int) {
	t.cache.Set(stateKey(userID), state, t.cfg.Cache.TelegramStateTTL)
}

func (t *TelegramBotHandler) userState(userID int64) int {
	state, ok := cache.GetFromCache[int](t.cache, stateKey(userID))
	if !ok {
		return StateIdle
	}
	return state
}

func (t *TelegramBotHandler) ResetUserState(userID int64) {
	t.cache.Delete(stateKey(userID))
}
