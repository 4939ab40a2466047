package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Intent
	}{
		{
			name:  "friendliest contacts",
			query: "Who are my friendliest contacts?",
			want:  Intent{Kind: IntentContactAnalysis, Ranking: RankingFriendliness},
		},
		{
			name:  "most friendly phrasing",
			query: "show my most friendly colleagues",
			want:  Intent{Kind: IntentContactAnalysis, Ranking: RankingFriendliness},
		},
		{
			name:  "most frequent contacts",
			query: "which person emails me most frequently? my most frequent contact",
			want:  Intent{Kind: IntentContactAnalysis, Ranking: RankingFrequency},
		},
		{
			name:  "recent contacts",
			query: "contacts I spoke to recently",
			want:  Intent{Kind: IntentContactAnalysis, Timeframe: TimeframeRecent},
		},
		{
			name:  "plain contact query",
			query: "list my contacts",
			want:  Intent{Kind: IntentContactAnalysis},
		},
		{
			name:  "email sentiment",
			query: "Show me emails with positive sentiment",
			want:  Intent{Kind: IntentEmailAnalysis, Analysis: AnalysisSentiment},
		},
		{
			name:  "message mood",
			query: "what is the mood of my messages",
			want:  Intent{Kind: IntentEmailAnalysis, Analysis: AnalysisSentiment},
		},
		{
			name:  "response time",
			query: "email response time stats",
			want:  Intent{Kind: IntentEmailAnalysis, Analysis: AnalysisResponseTime},
		},
		{
			name:  "word count",
			query: "messages by word count",
			want:  Intent{Kind: IntentEmailAnalysis, Analysis: AnalysisLength},
		},
		{
			name:  "weekly trend",
			query: "show trends by week",
			want:  Intent{Kind: IntentTrendAnalysis, Period: PeriodWeekly},
		},
		{
			name:  "monthly history",
			query: "my communication history per month",
			want:  Intent{Kind: IntentTrendAnalysis, Period: PeriodMonthly},
		},
		{
			name:  "default trend period",
			query: "how do things change over time",
			want:  Intent{Kind: IntentTrendAnalysis, Period: PeriodDaily},
		},
		{
			name:  "summary",
			query: "give me an overview",
			want:  Intent{Kind: IntentSummary},
		},
		{
			name:  "unknown",
			query: "banana",
			want:  Intent{Kind: IntentUnknown},
		},
		{
			name:  "empty query",
			query: "",
			want:  Intent{Kind: IntentUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.query))
		})
	}
}

func TestClassifyIntentCaseInsensitive(t *testing.T) {
	assert.Equal(t, ClassifyIntent("friendliest CONTACTS"), ClassifyIntent("FRIENDLIEST contacts"))
	assert.Equal(t, IntentSummary, ClassifyIntent("SUMMARY please").Kind)
}

func TestClassifyIntentCategoryOrder(t *testing.T) {
	// Contact keywords win over email keywords when both appear
	intent := ClassifyIntent("which contact sends the most emails")
	assert.Equal(t, IntentContactAnalysis, intent.Kind)

	// Email keywords win over trend keywords
	intent = ClassifyIntent("email patterns")
	assert.Equal(t, IntentEmailAnalysis, intent.Kind)

	// Trend keywords win over summary keywords
	intent = ClassifyIntent("trend summary")
	assert.Equal(t, IntentTrendAnalysis, intent.Kind)
}

func TestIntentJSONShape(t *testing.T) {
	encoded, err := json.Marshal(Intent{Kind: IntentContactAnalysis, Ranking: RankingFriendliness})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"contact_analysis","filters":{"ranking":"friendliness"}}`, string(encoded))

	encoded, err = json.Marshal(Intent{Kind: IntentUnknown})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"unknown","filters":{}}`, string(encoded))
}

func TestIntentFilterMap(t *testing.T) {
	intent := Intent{Kind: IntentContactAnalysis, Ranking: RankingFriendliness}
	assert.Equal(t, map[string]string{"ranking": "friendliness"}, intent.FilterMap())

	intent = Intent{Kind: IntentTrendAnalysis, Period: PeriodWeekly}
	assert.Equal(t, map[string]string{"period": "weekly"}, intent.FilterMap())

	assert.Empty(t, Intent{Kind: IntentUnknown}.FilterMap())
}
