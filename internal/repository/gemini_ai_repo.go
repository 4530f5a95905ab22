package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/metrics"
	"cryptiq/pkg/ratelimit"
	"cryptiq/pkg/utils"

	"github.com/samber/lo"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const providerGemini = "gemini"

var ErrAIUnavailable = errors.New("ai service is not configured")

type AIRepository interface {
	// Complete sends the prior turns plus prompt and returns the model's
	// answer text.
	Complete(ctx context.Context, history []dto.ChatMessage, prompt string) (string, error)
}

type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates the Gemini backed AIRepository. Without an
// API key it returns a repository that always fails with ErrAIUnavailable.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn("Gemini API key not set, AI answers are disabled")
		return disabledAIRepository{}, nil
	}

	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	perRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(perRequest), 1),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute),
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiAIRepository) Complete(ctx context.Context, history []dto.ChatMessage, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Gemini.Timeout)
	defer cancel()

	contents := lo.Map(history, func(m dto.ChatMessage, _ int) *genai.Content {
		return genai.NewContentFromText(m.Content, genai.Role(m.Role))
	})
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	tokens, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.BaseModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}
	r.logger.DebugContext(ctx, "Gemini token count",
		logger.IntField("total_tokens", int(tokens.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)
	if err := r.tokenLimiter.Wait(ctx, int(tokens.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token gemini limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request gemini limit: %w", err)
	}

	start := time.Now()
	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.BaseModel, contents, &genai.GenerateContentConfig{
		Temperature:     utils.ToPointer(r.cfg.Gemini.Temperature),
		MaxOutputTokens: r.cfg.Gemini.MaxOutputTokens,
	})
	metrics.RecordUpstreamCall(providerGemini, "generate_content", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

type disabledAIRepository struct{}

func (disabledAIRepository) Complete(context.Context, []dto.ChatMessage, string) (string, error) {
	return "", ErrAIUnavailable
}
