package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/llm"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/logger"
)

// Scorer transforma texto libre en los cinco rasgos Big Five.
type Scorer interface {
	Score(ctx context.Context, text string) (domain.TraitScores, error)
}

// ScorerFunc adapta una funcion a Scorer.
type ScorerFunc func(ctx context.Context, text string) (domain.TraitScores, error)

func (f ScorerFunc) Score(ctx context.Context, text string) (domain.TraitScores, error) {
	return f(ctx, text)
}

const scoringSystemPrompt = `You are an AI specializing in Big Five personality assessment. Analyze the given response and provide a structured JSON output with personality traits (openness, conscientiousness, extraversion, agreeableness, neuroticism) on a scale of 0-100.
Return ONLY a JSON object with this shape:
{"openness": 0, "conscientiousness": 0, "extraversion": 0, "agreeableness": 0, "neuroticism": 0}`

// LLMScorer usa el LLM para inferir rasgos a partir de la respuesta del candidato.
type LLMScorer struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewLLMScorer(llmClient llm.LLMClient, logger *zap.Logger) *LLMScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMScorer{llmClient: llmClient, logger: logger}
}

// Score falla solo si el LLM no responde; una respuesta ilegible produce los valores neutros.
func (s *LLMScorer) Score(ctx context.Context, text string) (domain.TraitScores, error) {
	prompt := scoringSystemPrompt + "\n\nAnalyze the personality traits for this response and return a JSON object: '" + strings.TrimSpace(text) + "'"

	rawResp, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		return domain.TraitScores{}, fmt.Errorf("llm generate: %w", err)
	}

	scores, ok := parseTraitScores(rawResp)
	if !ok {
		s.logger.Warn("llm traits not parseable, using neutral defaults",
			zap.String("raw", logger.TruncateForLog(rawResp, 200)),
		)
	}
	return scores, nil
}
