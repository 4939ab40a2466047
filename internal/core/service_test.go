package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAnalyticsFixture(store *fakeStore, analyzer SentimentAnalyzer, llm LLMClient) *Analytics {
	logger := zap.NewNop()
	sentiment := NewSentimentScorer(analyzer, llm, logger)
	friendliness := NewFriendlinessScorer(store, store, logger)
	ranking := NewRankingAggregator(store, friendliness, logger)
	selector := NewDataSelector(store, store)
	composer := NewResponseComposer(llm, logger)
	return NewAnalytics(store, store, sentiment, friendliness, ranking, selector, composer, logger)
}

func TestAnswerQueryContactAnalysis(t *testing.T) {
	store := newFakeStore()
	analytics := newAnalyticsFixture(store, &stubAnalyzer{}, nil)
	store.addContact(Contact{UserID: 1, EmailAddress: "alice@example.com", FriendlinessScore: 0.9})
	store.addContact(Contact{UserID: 1, EmailAddress: "bob@example.com", FriendlinessScore: 0.2})

	result, err := analytics.AnswerQuery(context.Background(), "Who are my friendliest contacts?", 1)
	require.NoError(t, err)

	assert.Equal(t, "Who are my friendliest contacts?", result.Query)
	assert.Equal(t, IntentContactAnalysis, result.Intent.Kind)
	assert.Equal(t, RankingFriendliness, result.Intent.Ranking)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "alice@example.com", result.Data[0].(ContactSummary).Email)
	assert.Equal(t, "Query processed: contact_analysis. Found 2 results.", result.Response)
	assert.False(t, result.Timestamp.IsZero())
}

func TestAnswerQueryJSONCarriesIntent(t *testing.T) {
	store := newFakeStore()
	analytics := newAnalyticsFixture(store, &stubAnalyzer{}, nil)

	result, err := analytics.AnswerQuery(context.Background(), "Who are my friendliest contacts?", 1)
	require.NoError(t, err)

	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"intent":{"type":"contact_analysis","filters":{"ranking":"friendliness"}}`)
}

func TestAnswerQueryUnknownIntent(t *testing.T) {
	store := newFakeStore()
	analytics := newAnalyticsFixture(store, &stubAnalyzer{}, nil)

	result, err := analytics.AnswerQuery(context.Background(), "banana", 1)
	require.NoError(t, err)

	assert.Equal(t, IntentUnknown, result.Intent.Kind)
	assert.Empty(t, result.Data)
	assert.Equal(t, "Query processed: unknown. Found 0 results.", result.Response)
}

func TestAnswerQueryIsolatesUsers(t *testing.T) {
	store := newFakeStore()
	analytics := newAnalyticsFixture(store, &stubAnalyzer{}, nil)
	store.addContact(Contact{UserID: 1, EmailAddress: "mine@example.com"})
	store.addContact(Contact{UserID: 2, EmailAddress: "theirs@example.com"})

	result, err := analytics.AnswerQuery(context.Background(), "list my contacts", 1)
	require.NoError(t, err)

	require.Len(t, result.Data, 1)
	assert.Equal(t, "mine@example.com", result.Data[0].(ContactSummary).Email)
}

func TestUpdateEmailAnalytics(t *testing.T) {
	store := newFakeStore()
	analytics := newAnalyticsFixture(store, &stubAnalyzer{polarity: 0.6}, nil)
	id := store.addEmail(Email{
		UserID:    1,
		Sender:    "alice@example.com",
		BodyPlain: "Thanks so much for the quick turnaround, this looks great!",
		SentAt:    time.Now(),
	})

	require.NoError(t, analytics.UpdateEmailAnalytics(context.Background(), id))

	stored, err := store.GetEmail(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0.6, stored.SentimentScore)
	assert.Equal(t, 10, stored.WordCount)
}

func TestUpdateEmailAnalyticsFallsBackToSnippet(t *testing.T) {
	store := newFakeStore()
	analytics := newAnalyticsFixture(store, &stubAnalyzer{polarity: 0.3}, nil)
	id := store.addEmail(Email{
		UserID:  1,
		Snippet: "short preview text",
		SentAt:  time.Now(),
	})

	require.NoError(t, analytics.UpdateEmailAnalytics(context.Background(), id))

	stored, err := store.GetEmail(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.WordCount)
	assert.Equal(t, 0.3, stored.SentimentScore)
}

func TestUpdateEmailAnalyticsUnknownEmail(t *testing.T) {
	store := newFakeStore()
	analytics := newAnalyticsFixture(store, &stubAnalyzer{}, nil)

	err := analytics.UpdateEmailAnalytics(context.Background(), 404)

	assert.ErrorIs(t, err, ErrNotFound)
}
