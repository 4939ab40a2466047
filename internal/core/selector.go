package core

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Caps on the record sets returned per intent kind
const (
	contactResultLimit = 10
	emailResultLimit   = 20
	trendTopContacts   = 2
)

// DataSelector shapes the records relevant to a classified intent.
// Store failures always propagate; only the documented empty-data
// defaults produce zero-valued results.
type DataSelector struct {
	emails   EmailStore
	contacts ContactStore
}

// NewDataSelector creates a new data selector
func NewDataSelector(emails EmailStore, contacts ContactStore) *DataSelector {
	return &DataSelector{
		emails:   emails,
		contacts: contacts,
	}
}

// Select dispatches on the intent kind and returns the matching records
func (s *DataSelector) Select(ctx context.Context, intent Intent, userID int64) ([]any, error) {
	switch intent.Kind {
	case IntentContactAnalysis:
		return s.contactData(ctx, intent, userID)
	case IntentEmailAnalysis:
		return s.emailData(ctx, intent, userID)
	case IntentTrendAnalysis:
		return s.trendData(ctx, intent, userID)
	case IntentSummary:
		return s.summaryData(ctx, userID)
	default:
		return []any{}, nil
	}
}

func (s *DataSelector) contactData(ctx context.Context, intent Intent, userID int64) ([]any, error) {
	opts := ContactListOptions{Limit: contactResultLimit}
	switch intent.Ranking {
	case RankingFriendliness:
		opts.Order = ContactOrderFriendlinessDesc
	case RankingFrequency:
		opts.Order = ContactOrderTotalEmailsDesc
	}

	contacts, err := s.contacts.ListContactsByUser(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to select contact data: %w", err)
	}

	data := make([]any, 0, len(contacts))
	for _, contact := range contacts {
		data = append(data, ContactSummary{
			ID:                   contact.ID,
			Email:                contact.EmailAddress,
			Name:                 contact.Name,
			FriendlinessScore:    contact.FriendlinessScore,
			TotalEmails:          contact.TotalEmails,
			LastCommunication:    contact.LastCommunication,
			AvgResponseTimeHours: contact.AvgResponseTimeHours,
		})
	}
	return data, nil
}

func (s *DataSelector) emailData(ctx context.Context, intent Intent, userID int64) ([]any, error) {
	opts := EmailListOptions{Order: EmailOrderSentAtDesc, Limit: emailResultLimit}
	switch intent.Analysis {
	case AnalysisSentiment:
		opts.Order = EmailOrderSentimentDesc
	case AnalysisLength:
		opts.Order = EmailOrderWordCountDesc
	}

	emails, err := s.emails.ListEmailsByUser(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to select email data: %w", err)
	}

	data := make([]any, 0, len(emails))
	for _, email := range emails {
		data = append(data, EmailSummary{
			ID:             email.ID,
			Subject:        email.Subject,
			Sender:         email.Sender,
			SentAt:         email.SentAt,
			SentimentScore: email.SentimentScore,
			WordCount:      email.WordCount,
		})
	}
	return data, nil
}

// trendData buckets the user's full email history by the intent's
// period and aggregates count, mean sentiment and top correspondents
// per bucket, oldest first.
func (s *DataSelector) trendData(ctx context.Context, intent Intent, userID int64) ([]any, error) {
	emails, err := s.emails.ListEmailsByUser(ctx, userID, EmailListOptions{Order: EmailOrderSentAtDesc})
	if err != nil {
		return nil, fmt.Errorf("failed to select trend data: %w", err)
	}

	period := intent.Period
	if period == PeriodNone {
		period = PeriodDaily
	}

	type bucket struct {
		start        time.Time
		count        int
		sentimentSum float64
		senders      map[string]int
	}
	buckets := map[string]*bucket{}
	for _, email := range emails {
		label, start := bucketOf(email.SentAt, period)
		b, ok := buckets[label]
		if !ok {
			b = &bucket{start: start, senders: map[string]int{}}
			buckets[label] = b
		}
		b.count++
		b.sentimentSum += email.SentimentScore
		b.senders[email.Sender]++
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return buckets[labels[i]].start.Before(buckets[labels[j]].start)
	})

	data := make([]any, 0, len(labels))
	for _, label := range labels {
		b := buckets[label]
		data = append(data, TrendBucket{
			Period:       label,
			Start:        b.start,
			TotalEmails:  b.count,
			AvgSentiment: round3(b.sentimentSum / float64(b.count)),
			TopContacts:  topSenders(b.senders, trendTopContacts),
		})
	}
	return data, nil
}

func (s *DataSelector) summaryData(ctx context.Context, userID int64) ([]any, error) {
	totalEmails, err := s.emails.CountEmailsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count emails: %w", err)
	}
	totalContacts, err := s.contacts.CountContactsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}
	avgSentiment, err := s.emails.AvgSentimentByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to average sentiment: %w", err)
	}

	return []any{SummaryStats{
		TotalEmails:    totalEmails,
		TotalContacts:  totalContacts,
		AvgSentiment:   round3(avgSentiment),
		AnalysisPeriod: "all_time",
	}}, nil
}

// bucketOf maps a timestamp to its period label and bucket start
func bucketOf(t time.Time, period TrendPeriod) (string, time.Time) {
	switch period {
	case PeriodWeekly:
		year, week := t.ISOWeek()
		// Rewind to the Monday of the ISO week
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		for start.Weekday() != time.Monday {
			start = start.AddDate(0, 0, -1)
		}
		return fmt.Sprintf("%04d-W%02d", year, week), start
	case PeriodMonthly:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return t.Format("2006-01"), start
	default:
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return t.Format("2006-01-02"), start
	}
}

// topSenders returns the n most frequent senders, count descending with
// address as the tie break so output is deterministic
func topSenders(counts map[string]int, n int) []string {
	senders := make([]string, 0, len(counts))
	for sender := range counts {
		senders = append(senders, sender)
	}
	sort.Slice(senders, func(i, j int) bool {
		if counts[senders[i]] != counts[senders[j]] {
			return counts[senders[i]] > counts[senders[j]]
		}
		return senders[i] < senders[j]
	})
	if len(senders) > n {
		senders = senders[:n]
	}
	return senders
}
