package factory

import (
	"github.com/mikey/email-insights/internal/adapters/sentiment"
	"github.com/mikey/email-insights/internal/core"
)

// SentimentFactory creates lexical sentiment analyzers
type SentimentFactory struct{}

// NewSentimentFactory creates a new sentiment factory
func NewSentimentFactory() *SentimentFactory {
	return &SentimentFactory{}
}

// CreateAnalyzer creates the lexical sentiment analyzer
func (f *SentimentFactory) CreateAnalyzer() core.SentimentAnalyzer {
	return sentiment.NewVaderAnalyzer()
}
