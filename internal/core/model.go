package core

import (
	"encoding/json"
	"time"
)

// Email represents a single ingested email message with its derived analytics
type Email struct {
	ID             int64
	UserID         int64
	Subject        string
	Sender         string
	BodyPlain      string
	BodyHTML       string
	Snippet        string
	SentAt         time.Time
	SentimentScore float64
	WordCount      int
}

// Contact represents a correspondent and their aggregate engagement metrics
type Contact struct {
	ID                   int64
	UserID               int64
	EmailAddress         string
	Name                 string
	FriendlinessScore    float64
	TotalEmails          int
	EmailsSent           int
	EmailsReceived       int
	AvgResponseTimeHours *float64
	AvgEmailLength       *float64
	LastCommunication    *time.Time
}

// SentimentScores holds the discretized sentiment breakdown of a text.
// All values are rounded to three decimals. Compound is the raw polarity
// in [-1, 1]; subjectivity is in [0, 1].
type SentimentScores struct {
	Positive     float64 `json:"positive"`
	Negative     float64 `json:"negative"`
	Neutral      float64 `json:"neutral"`
	Compound     float64 `json:"compound"`
	Subjectivity float64 `json:"subjectivity"`
}

// IntentKind identifies the category of a classified query
type IntentKind string

const (
	IntentContactAnalysis IntentKind = "contact_analysis"
	IntentEmailAnalysis   IntentKind = "email_analysis"
	IntentTrendAnalysis   IntentKind = "trend_analysis"
	IntentSummary         IntentKind = "summary"
	IntentUnknown         IntentKind = "unknown"
)

// RankingKey selects the ordering for contact analysis queries
type RankingKey string

const (
	RankingNone         RankingKey = ""
	RankingFriendliness RankingKey = "friendliness"
	RankingFrequency    RankingKey = "frequency"
)

// AnalysisKey selects the metric for email analysis queries
type AnalysisKey string

const (
	AnalysisNone         AnalysisKey = ""
	AnalysisSentiment    AnalysisKey = "sentiment"
	AnalysisResponseTime AnalysisKey = "response_time"
	AnalysisLength       AnalysisKey = "length"
)

// TrendPeriod selects the aggregation window for trend queries
type TrendPeriod string

const (
	PeriodNone    TrendPeriod = ""
	PeriodDaily   TrendPeriod = "daily"
	PeriodWeekly  TrendPeriod = "weekly"
	PeriodMonthly TrendPeriod = "monthly"
)

// Timeframe narrows contact analysis to a recency window
type Timeframe string

const (
	TimeframeNone   Timeframe = ""
	TimeframeRecent Timeframe = "recent"
)

// Intent is the classified purpose of a free-text query. Each kind only
// ever populates its own filter fields; the zero value of a filter means
// the query did not request it. Intents are immutable after
// classification and never persisted.
type Intent struct {
	Kind      IntentKind
	Ranking   RankingKey
	Timeframe Timeframe
	Analysis  AnalysisKey
	Period    TrendPeriod
}

// MarshalJSON renders the intent as its kind plus the populated
// filters, the shape query results carry on the wire
func (i Intent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    IntentKind        `json:"type"`
		Filters map[string]string `json:"filters"`
	}{
		Type:    i.Kind,
		Filters: i.FilterMap(),
	})
}

// FilterMap renders the intent's populated filters as a string map
func (i Intent) FilterMap() map[string]string {
	filters := map[string]string{}
	if i.Ranking != RankingNone {
		filters["ranking"] = string(i.Ranking)
	}
	if i.Timeframe != TimeframeNone {
		filters["timeframe"] = string(i.Timeframe)
	}
	if i.Analysis != AnalysisNone {
		filters["analysis"] = string(i.Analysis)
	}
	if i.Period != PeriodNone {
		filters["period"] = string(i.Period)
	}
	return filters
}

// ContactSummary is the per-contact row carried by ranking results
type ContactSummary struct {
	ID                   int64      `json:"id"`
	Email                string     `json:"email"`
	Name                 string     `json:"name"`
	FriendlinessScore    float64    `json:"friendliness_score"`
	TotalEmails          int        `json:"total_emails"`
	LastCommunication    *time.Time `json:"last_communication"`
	AvgResponseTimeHours *float64   `json:"avg_response_time"`
}

// RankingSet holds the four orderings of a user's contacts. All four
// slices contain the same contact set; only the order differs. The set
// is recomputed wholesale on every ranking request.
type RankingSet struct {
	ByFriendliness []ContactSummary `json:"by_friendliness"`
	ByFrequency    []ContactSummary `json:"by_frequency"`
	ByRecency      []ContactSummary `json:"by_recency"`
	ByEngagement   []ContactSummary `json:"by_engagement"`
}

// EmailSummary is the per-email row carried by email analysis results
type EmailSummary struct {
	ID             int64     `json:"id"`
	Subject        string    `json:"subject"`
	Sender         string    `json:"sender"`
	SentAt         time.Time `json:"sent_at"`
	SentimentScore float64   `json:"sentiment_score"`
	WordCount      int       `json:"word_count"`
}

// TrendBucket is one aggregation window of a trend analysis
type TrendBucket struct {
	Period       string    `json:"period"`
	Start        time.Time `json:"start"`
	TotalEmails  int       `json:"total_emails"`
	AvgSentiment float64   `json:"avg_sentiment"`
	TopContacts  []string  `json:"top_contacts"`
}

// SummaryStats is the single-row aggregate for summary queries
type SummaryStats struct {
	TotalEmails    int     `json:"total_emails"`
	TotalContacts  int     `json:"total_contacts"`
	AvgSentiment   float64 `json:"avg_sentiment"`
	AnalysisPeriod string  `json:"analysis_period"`
}

// QueryResult is the full answer to a free-text query
type QueryResult struct {
	Query     string    `json:"query"`
	Intent    Intent    `json:"intent"`
	Data      []any     `json:"data"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is one turn of a language model conversation
type Message struct {
	Role    string
	Content string
}

// Message roles understood by all LLM adapters
const (
	RoleSystem = "system"
	RoleUser   = "user"
)
