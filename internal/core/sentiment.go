package core

import (
	"context"
	"math"
	"strings"

	"github.com/mikey/email-insights/internal/utils"
	"go.uber.org/zap"
)

// llmBoostFloor is the minimum positive/negative mass applied when the
// optional language model reports a matching sentiment label
const llmBoostFloor = 0.7

// llmSentimentLimit caps how much text is sent for the label check
const llmSentimentLimit = 1000

// SentimentScorer maps raw text to a bounded sentiment breakdown. The
// lexical analyzer is required; the language model is optional and only
// ever boosts the lexical result.
type SentimentScorer struct {
	analyzer SentimentAnalyzer
	llm      LLMClient
	logger   *zap.Logger
}

// NewSentimentScorer creates a new sentiment scorer. llm may be nil.
func NewSentimentScorer(analyzer SentimentAnalyzer, llm LLMClient, logger *zap.Logger) *SentimentScorer {
	return &SentimentScorer{
		analyzer: analyzer,
		llm:      llm,
		logger:   logger,
	}
}

// Score computes the sentiment breakdown of text. Markup is stripped
// and whitespace collapsed before analysis; empty text scores fully
// neutral. Never returns an error: language model failures degrade to
// the lexical result.
func (s *SentimentScorer) Score(ctx context.Context, text string) SentimentScores {
	cleaned := utils.CleanText(text)
	if cleaned == "" {
		return SentimentScores{Neutral: 1.0}
	}

	polarity, subjectivity := s.analyzer.Polarity(cleaned)

	// The neutral mass is derived from the rounded dominant side so the
	// two always sum to exactly 1 regardless of where the thousandths
	// fall.
	var positive, negative, neutral float64
	switch {
	case polarity > 0.1:
		positive = round3(polarity)
		neutral = 1 - positive
	case polarity < -0.1:
		negative = round3(math.Abs(polarity))
		neutral = 1 - negative
	default:
		neutral = 1.0
	}

	if s.llm != nil {
		positive, negative = s.boostFromLLM(ctx, cleaned, positive, negative)
	}

	return SentimentScores{
		Positive:     round3(positive),
		Negative:     round3(negative),
		Neutral:      round3(neutral),
		Compound:     round3(polarity),
		Subjectivity: round3(subjectivity),
	}
}

// boostFromLLM asks the language model for a sentiment label and lifts
// the matching side toward the boost floor. Best effort: any failure
// keeps the lexical values.
func (s *SentimentScorer) boostFromLLM(ctx context.Context, text string, positive, negative float64) (float64, float64) {
	sample := text
	if len(sample) > llmSentimentLimit {
		sample = sample[:llmSentimentLimit]
	}

	reply, err := s.llm.Complete(ctx, []Message{
		{
			Role:    RoleSystem,
			Content: "Analyze the sentiment of the following text. Return only a JSON object with 'sentiment' (positive/negative/neutral) and 'confidence' (0-1).",
		},
		{
			Role:    RoleUser,
			Content: sample,
		},
	})
	if err != nil {
		s.logger.Warn("LLM sentiment analysis failed, using lexical result", zap.Error(err))
		return positive, negative
	}

	label := strings.ToLower(reply)
	if strings.Contains(label, "positive") {
		positive = math.Max(positive, llmBoostFloor)
	} else if strings.Contains(label, "negative") {
		negative = math.Max(negative, llmBoostFloor)
	}
	return positive, negative
}

// round3 rounds to three decimal places
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
