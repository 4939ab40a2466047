package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSentimentScorerEmptyText(t *testing.T) {
	scorer := NewSentimentScorer(&stubAnalyzer{polarity: 0.9}, nil, zap.NewNop())

	for _, text := range []string{"", "   ", "<div><br/></div>", "\n\t"} {
		scores := scorer.Score(context.Background(), text)
		assert.Equal(t, SentimentScores{Neutral: 1.0}, scores, "text %q", text)
	}
}

func TestSentimentScorerPositive(t *testing.T) {
	scorer := NewSentimentScorer(&stubAnalyzer{polarity: 0.5, subjectivity: 0.8}, nil, zap.NewNop())

	scores := scorer.Score(context.Background(), "what a great day")

	assert.Equal(t, 0.5, scores.Positive)
	assert.Equal(t, 0.0, scores.Negative)
	assert.Equal(t, 0.5, scores.Neutral)
	assert.Equal(t, 0.5, scores.Compound)
	assert.Equal(t, 0.8, scores.Subjectivity)
}

func TestSentimentScorerNegative(t *testing.T) {
	scorer := NewSentimentScorer(&stubAnalyzer{polarity: -0.4}, nil, zap.NewNop())

	scores := scorer.Score(context.Background(), "this is awful")

	assert.Equal(t, 0.4, scores.Negative)
	assert.Equal(t, 0.0, scores.Positive)
	assert.Equal(t, 0.6, scores.Neutral)
	assert.Equal(t, -0.4, scores.Compound)
}

func TestSentimentScorerNeutralBand(t *testing.T) {
	// Polarity at or inside the +/-0.1 band is fully neutral
	for _, polarity := range []float64{0.1, -0.1, 0.05, -0.05, 0.0} {
		scorer := NewSentimentScorer(&stubAnalyzer{polarity: polarity}, nil, zap.NewNop())

		scores := scorer.Score(context.Background(), "meeting at noon")

		assert.Equal(t, 1.0, scores.Neutral, "polarity %v", polarity)
		assert.Equal(t, 0.0, scores.Positive, "polarity %v", polarity)
		assert.Equal(t, 0.0, scores.Negative, "polarity %v", polarity)
	}
}

func TestSentimentScorerMassSumsToOne(t *testing.T) {
	// Polarities whose thousandths land exactly on .5 must not round the
	// dominant and neutral masses apart
	for _, polarity := range []float64{0.1005, -0.1005, 0.2345, -0.6785, 0.9995} {
		scorer := NewSentimentScorer(&stubAnalyzer{polarity: polarity}, nil, zap.NewNop())

		scores := scorer.Score(context.Background(), "some text")

		sum := scores.Positive + scores.Negative + scores.Neutral
		assert.InDelta(t, 1.0, sum, 1e-9, "polarity %v", polarity)
	}
}

func TestSentimentScorerRounding(t *testing.T) {
	scorer := NewSentimentScorer(&stubAnalyzer{polarity: 0.123456}, nil, zap.NewNop())

	scores := scorer.Score(context.Background(), "nice")

	assert.Equal(t, 0.123, scores.Positive)
	assert.Equal(t, 0.877, scores.Neutral)
	assert.Equal(t, 0.123, scores.Compound)
}

func TestSentimentScorerLLMBoost(t *testing.T) {
	llm := &stubLLM{reply: `{"sentiment": "positive", "confidence": 0.9}`}
	scorer := NewSentimentScorer(&stubAnalyzer{polarity: 0.2}, llm, zap.NewNop())

	scores := scorer.Score(context.Background(), "pretty good news")

	// The weak lexical positive is lifted to the boost floor
	assert.Equal(t, 0.7, scores.Positive)
	assert.Equal(t, 0.2, scores.Compound)
	assert.Equal(t, 1, llm.calls)
}

func TestSentimentScorerLLMBoostNeverLowers(t *testing.T) {
	llm := &stubLLM{reply: `{"sentiment": "positive"}`}
	scorer := NewSentimentScorer(&stubAnalyzer{polarity: 0.9}, llm, zap.NewNop())

	scores := scorer.Score(context.Background(), "absolutely wonderful")

	assert.Equal(t, 0.9, scores.Positive)
}

func TestSentimentScorerLLMFailureKeepsLexical(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("model unavailable")}
	scorer := NewSentimentScorer(&stubAnalyzer{polarity: 0.5}, llm, zap.NewNop())

	scores := scorer.Score(context.Background(), "great stuff")

	assert.Equal(t, 0.5, scores.Positive)
	assert.Equal(t, 0.5, scores.Compound)
}

func TestSentimentScorerTruncatesLLMSample(t *testing.T) {
	llm := &stubLLM{reply: "neutral"}
	scorer := NewSentimentScorer(&stubAnalyzer{polarity: 0.5}, llm, zap.NewNop())

	long := ""
	for i := 0; i < 300; i++ {
		long += "words "
	}
	scorer.Score(context.Background(), long)

	assert.Equal(t, 1, llm.calls)
	assert.LessOrEqual(t, len(llm.last[1].Content), 1000)
}
