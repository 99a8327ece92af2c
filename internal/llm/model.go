package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/merfai/merf-go/internal/config"
	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo LLM for narrative text generation. It is pure
// side content: the numeric scores are computed before any prompt is built
// and never depend on generation succeeding.
type Model struct {
	llm       llms.Model
	modelName string
	metrics   *metrics.Collector
}

// NewModel creates an LLM model based on configuration.
// The metrics collector may be nil.
func NewModel(cfg config.Config, mc *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
		metrics:   mc,
	}, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages)
	duration := time.Since(start)
	if err != nil {
		if m.metrics != nil {
			m.metrics.RecordTiming(metrics.OpNarrative, duration)
		}
		return "", wrapFatalError(fmt.Errorf("generate with system: %w", err))
	}

	if len(response.Choices) == 0 {
		if m.metrics != nil {
			m.metrics.RecordTiming(metrics.OpNarrative, duration)
		}
		return "", fmt.Errorf("no response choices")
	}

	choice := response.Choices[0]
	if m.metrics != nil {
		input, output := tokenUsage(choice.GenerationInfo)
		if input > 0 || output > 0 {
			m.metrics.RecordLLMUsage(metrics.OpNarrative, duration, input, output)
		} else {
			m.metrics.RecordTiming(metrics.OpNarrative, duration)
		}
	}

	return choice.Content, nil
}

// tokenUsage pulls token counts out of a generation info map. Providers
// disagree on key names: openai and ollama report PromptTokens and
// CompletionTokens, anthropic InputTokens and OutputTokens. Missing or
// unrecognized entries count as zero.
func tokenUsage(info map[string]any) (input, output int64) {
	return tokenCount(info, "PromptTokens", "InputTokens"),
		tokenCount(info, "CompletionTokens", "OutputTokens")
}

func tokenCount(info map[string]any, keys ...string) int64 {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}

// LikelihoodNote generates a short explanation of a likelihood result from
// the already-computed features. The caller substitutes the deterministic
// template on any error.
func (m *Model) LikelihoodNote(ctx context.Context, dreamText string, result engine.LikelihoodResult) (string, error) {
	systemPrompt := `You are a dream journal assistant. Write ONE short sentence (max 30 words)
explaining why this dream is more or less likely to resurface as a deja vu experience.
Base the sentence ONLY on the provided numbers and motifs. Do not invent symbolism.
Do not mention the raw numbers; describe them qualitatively.`

	userPrompt := fmt.Sprintf(`Dream:
%s

Computed features:
- likelihood score: %d/100 (%s)
- emotional intensity: %.2f
- novelty vs. past dreams: %.2f
- motif risk: %.2f (motifs: %s)
- repetition across the journal: %.2f

Explanation:`, dreamText, result.Score, result.Band,
		result.Intensity, result.Novelty, result.MotifRisk,
		motifNames(result.Motifs), result.Repetition)

	return m.GenerateWithSystem(ctx, systemPrompt, userPrompt)
}

// SuggestionNote generates a short interpretation of why a dream and a
// deja vu experience may correspond.
func (m *Model) SuggestionNote(ctx context.Context, dreamText, entryText string, s engine.Suggestion) (string, error) {
	systemPrompt := `You are a dream journal assistant. Write ONE short sentence (max 30 words)
describing the connection between the dream and the deja vu experience.
Base it ONLY on the provided signals; do not invent details.`

	userPrompt := fmt.Sprintf(`Dream:
%s

Deja vu experience:
%s

Signals:
- similarity: %d%% (%s)
- shared motifs: %s
- same location: %t, same emotion: %t
- days between: %d

Connection:`, dreamText, entryText,
		s.Similarity, s.Strength, strings.Join(s.SharedMotifs, ", "),
		s.LocationMatch, s.EmotionMatch, s.DaysBetween)

	return m.GenerateWithSystem(ctx, systemPrompt, userPrompt)
}

func motifNames(risks []engine.MotifRisk) string {
	if len(risks) == 0 {
		return "none"
	}
	names := make([]string, len(risks))
	for i, r := range risks {
		names[i] = r.Name
	}
	return strings.Join(names, ", ")
}
