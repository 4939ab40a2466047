package core

import (
	"strings"
)

// intentRule is one entry of the ordered classification table: the
// first rule whose match reports true decides the intent, and its
// extractor fills in the kind-specific filters.
type intentRule struct {
	match   func(query string) bool
	kind    IntentKind
	extract func(query string, intent *Intent)
}

// intentRules is evaluated strictly in order; later categories are
// unreachable once an earlier one matches. New rules are additive.
var intentRules = []intentRule{
	{
		match: containsAny("contact", "person", "friend", "colleague"),
		kind:  IntentContactAnalysis,
		extract: func(query string, intent *Intent) {
			switch {
			case strings.Contains(query, "friendliest") || strings.Contains(query, "most friendly"):
				intent.Ranking = RankingFriendliness
			case strings.Contains(query, "most frequent") || strings.Contains(query, "most active"):
				intent.Ranking = RankingFrequency
			case strings.Contains(query, "recent"):
				intent.Timeframe = TimeframeRecent
			}
		},
	},
	{
		match: containsAny("email", "message", "correspondence"),
		kind:  IntentEmailAnalysis,
		extract: func(query string, intent *Intent) {
			switch {
			case strings.Contains(query, "sentiment") || strings.Contains(query, "mood"):
				intent.Analysis = AnalysisSentiment
			case strings.Contains(query, "response time"):
				intent.Analysis = AnalysisResponseTime
			case strings.Contains(query, "length") || strings.Contains(query, "word count"):
				intent.Analysis = AnalysisLength
			}
		},
	},
	{
		match: containsAny("trend", "over time", "history", "pattern"),
		kind:  IntentTrendAnalysis,
		extract: func(query string, intent *Intent) {
			switch {
			case strings.Contains(query, "week"):
				intent.Period = PeriodWeekly
			case strings.Contains(query, "month"):
				intent.Period = PeriodMonthly
			default:
				intent.Period = PeriodDaily
			}
		},
	},
	{
		match: containsAny("summary", "overview"),
		kind:  IntentSummary,
	},
}

// ClassifyIntent maps a free-text query to a typed intent. Pure and
// deterministic over the fixed rule table; every input yields at least
// the unknown intent.
func ClassifyIntent(query string) Intent {
	lower := strings.ToLower(query)

	for _, rule := range intentRules {
		if !rule.match(lower) {
			continue
		}
		intent := Intent{Kind: rule.kind}
		if rule.extract != nil {
			rule.extract(lower, &intent)
		}
		return intent
	}

	return Intent{Kind: IntentUnknown}
}

// containsAny builds a predicate matching any of the given substrings
func containsAny(words ...string) func(string) bool {
	return func(query string) bool {
		for _, word := range words {
			if strings.Contains(query, word) {
				return true
			}
		}
		return false
	}
}
