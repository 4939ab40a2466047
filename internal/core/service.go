package core

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/email-insights/internal/utils"
	"go.uber.org/zap"
)

// Analytics is the core service for email analytics. It exposes
// sentiment and friendliness scoring, contact ranking, and free-text
// query answering over the derived data. One logical unit of work per
// call; no state is kept across requests.
type Analytics struct {
	emails       EmailStore
	contacts     ContactStore
	sentiment    *SentimentScorer
	friendliness *FriendlinessScorer
	ranking      *RankingAggregator
	selector     *DataSelector
	composer     *ResponseComposer
	logger       *zap.Logger
}

// NewAnalytics creates a new analytics service
func NewAnalytics(
	emails EmailStore,
	contacts ContactStore,
	sentiment *SentimentScorer,
	friendliness *FriendlinessScorer,
	ranking *RankingAggregator,
	selector *DataSelector,
	composer *ResponseComposer,
	logger *zap.Logger,
) *Analytics {
	return &Analytics{
		emails:       emails,
		contacts:     contacts,
		sentiment:    sentiment,
		friendliness: friendliness,
		ranking:      ranking,
		selector:     selector,
		composer:     composer,
		logger:       logger,
	}
}

// ClassifyIntent classifies a free-text query
func (a *Analytics) ClassifyIntent(query string) Intent {
	return ClassifyIntent(query)
}

// ScoreSentiment computes the sentiment breakdown of text
func (a *Analytics) ScoreSentiment(ctx context.Context, text string) SentimentScores {
	return a.sentiment.Score(ctx, text)
}

// ScoreFriendliness recomputes the friendliness score of a contact
func (a *Analytics) ScoreFriendliness(ctx context.Context, contactID int64) (float64, error) {
	return a.friendliness.Score(ctx, contactID)
}

// RankContacts runs a full ranking pass for the user
func (a *Analytics) RankContacts(ctx context.Context, userID int64) (*RankingSet, error) {
	return a.ranking.Rank(ctx, userID)
}

// AnswerQuery classifies the query, selects the relevant records and
// composes a natural-language answer
func (a *Analytics) AnswerQuery(ctx context.Context, query string, userID int64) (*QueryResult, error) {
	intent := ClassifyIntent(query)

	data, err := a.selector.Select(ctx, intent, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to answer query: %w", err)
	}

	response := a.composer.Compose(ctx, query, intent, data)

	a.logger.Debug("Answered query",
		zap.Int64("user_id", userID),
		zap.String("intent", string(intent.Kind)),
		zap.Int("results", len(data)))

	return &QueryResult{
		Query:     query,
		Intent:    intent,
		Data:      data,
		Response:  response,
		Timestamp: time.Now(),
	}, nil
}

// Summarize produces a natural-language summary of arbitrary records
func (a *Analytics) Summarize(ctx context.Context, data []any) string {
	return a.composer.Summarize(ctx, data)
}

// UpdateEmailAnalytics recomputes and persists the derived sentiment
// and word count of a single email. Used by the ingestion pipeline
// after a message is stored.
func (a *Analytics) UpdateEmailAnalytics(ctx context.Context, emailID int64) error {
	email, err := a.emails.GetEmail(ctx, emailID)
	if err != nil {
		return fmt.Errorf("failed to load email %d: %w", emailID, err)
	}

	text := email.BodyPlain
	if text == "" {
		text = email.Snippet
	}

	scores := a.sentiment.Score(ctx, text)
	wordCount := utils.WordCount(text)

	if err := a.emails.UpdateEmailAnalytics(ctx, emailID, scores.Compound, wordCount); err != nil {
		return fmt.Errorf("failed to update analytics for email %d: %w", emailID, err)
	}
	return nil
}
