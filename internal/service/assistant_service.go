package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/internal/model"
	"cryptiq/internal/repository"
	"cryptiq/pkg/common"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/utils"

	"github.com/samber/lo"
)

const (
	AIErrorMessage = "Sorry, there was an error with the AI service."

	assistantInstruction = "You are a crypto trading expert AI. Be concise and direct. " +
		"When asked for a prediction, always give a specific price target. " +
		"When asked where to buy or sell, always give a concrete price (even if it's an estimate). " +
		"Give reasoning after estimates. Avoid long explanations. Use the following real-time data:"
)

type AssistantService interface {
	// Answer replies to a free text question with the user's portfolio and
	// live BTC/LTC prices as context. The reply always ends with the
	// disclaimer, also when the model is unavailable.
	Answer(ctx context.Context, userID, text string) (string, error)
}

type assistantService struct {
	cfg            *config.Config
	log            *logger.Logger
	profileRepo    repository.ProfileRepository
	chatLogRepo    repository.ChatLogRepository
	marketDataRepo repository.MarketDataRepository
	aiRepo         repository.AIRepository
}

func NewAssistantService(
	cfg *config.Config,
	log *logger.Logger,
	profileRepo repository.ProfileRepository,
	chatLogRepo repository.ChatLogRepository,
	marketDataRepo repository.MarketDataRepository,
	aiRepo repository.AIRepository,
) AssistantService {
	return &assistantService{
		cfg:            cfg,
		log:            log,
		profileRepo:    profileRepo,
		chatLogRepo:    chatLogRepo,
		marketDataRepo: marketDataRepo,
		aiRepo:         aiRepo,
	}
}

func (s *assistantService) Answer(ctx context.Context, userID, text string) (string, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to get profile for AI prompt", logger.ErrorField(err), logger.StringField("user_id", userID))
	}

	// BTC and LTC are always quoted, whatever the user holds
	symbols := []string{common.SYMBOL_BTC, common.SYMBOL_LTC}
	if profile != nil {
		symbols = lo.Uniq(append(symbols, profile.Holdings.Symbols()...))
	}
	prices, err := s.marketDataRepo.GetPrices(ctx, symbols)
	if err != nil {
		s.log.WarnContext(ctx, "No market data for AI prompt", logger.ErrorField(err))
	}

	history := s.history(ctx, userID)
	prompt := BuildPrompt(text, prices, profile)

	answer, err := s.aiRepo.Complete(ctx, history, prompt)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get AI answer", logger.ErrorField(err), logger.StringField("user_id", userID))
		answer = AIErrorMessage
	} else {
		answer = utils.CleanMarkdown(answer)
	}
	answer += common.DISCLAIMER

	err = s.chatLogRepo.Append(ctx, model.ChatLogEntry{
		UserID:      userID,
		Timestamp:   time.Now().UTC(),
		UserMessage: text,
		BotResponse: answer,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to log chat", logger.ErrorField(err), logger.StringField("user_id", userID))
	}
	return answer, nil
}

func (s *assistantService) history(ctx context.Context, userID string) []dto.ChatMessage {
	size := s.cfg.Telegram.ChatHistorySize
	if size <= 0 {
		return nil
	}
	entries, err := s.chatLogRepo.Recent(ctx, userID, size)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to read chat history", logger.ErrorField(err), logger.StringField("user_id", userID))
		return nil
	}

	messages := make([]dto.ChatMessage, 0, len(entries)*2)
	for _, entry := range entries {
		messages = append(messages,
			dto.ChatMessage{Role: dto.RoleUser, Content: entry.UserMessage},
			dto.ChatMessage{Role: dto.RoleModel, Content: entry.BotResponse},
		)
	}
	return messages
}

// BuildPrompt renders the instruction, live prices, the user's profile and
// the question into one model prompt.
func BuildPrompt(question string, prices dto.MarketData, profile *model.UserProfile) string {
	btc := prices[common.ResolveCoinID(common.SYMBOL_BTC)]
	ltc := prices[common.ResolveCoinID(common.SYMBOL_LTC)]

	var b strings.Builder
	b.WriteString(assistantInstruction)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Bitcoin: Price $%s, 24h Change %.2f%%\n", formatPlain(btc.USD), btc.USD24hChange)
	fmt.Fprintf(&b, "Litecoin: Price $%s, 24h Change %.2f%%\n", formatPlain(ltc.USD), ltc.USD24hChange)

	if profile != nil {
		bank := model.NotSet
		if profile.Bank != nil {
			bank = formatPlain(*profile.Bank)
		}
		holdings := "None"
		if symbols := profile.Holdings.Symbols(); len(symbols) > 0 {
			holdings = strings.Join(lo.Map(symbols, func(symbol string, _ int) string {
				return fmt.Sprintf("%s: %s", strings.ToUpper(symbol), formatPlain(profile.Holdings[symbol]))
			}), ", ")
		}
		fmt.Fprintf(&b, "\nUser Bank: $%s\nUser Strategy: %s\nUser Holdings: %s\n", bank, model.Display(profile.Strategy), holdings)
	}

	fmt.Fprintf(&b, "\nUser: %s\nAI:", question)
	return b.String()
}

func formatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
