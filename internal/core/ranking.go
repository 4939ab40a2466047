package core

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// RankingAggregator produces the four contact orderings for a user. A
// ranking pass recomputes every friendliness score from scratch and
// persists all of them in one bulk commit; a mid-pass failure commits
// nothing. Callers must not run concurrent passes for the same user.
type RankingAggregator struct {
	contacts     ContactStore
	friendliness *FriendlinessScorer
	logger       *zap.Logger
}

// NewRankingAggregator creates a new ranking aggregator
func NewRankingAggregator(contacts ContactStore, friendliness *FriendlinessScorer, logger *zap.Logger) *RankingAggregator {
	return &RankingAggregator{
		contacts:     contacts,
		friendliness: friendliness,
		logger:       logger,
	}
}

// Rank runs one full ranking pass over the user's contacts
func (r *RankingAggregator) Rank(ctx context.Context, userID int64) (*RankingSet, error) {
	contacts, err := r.contacts.ListContactsByUser(ctx, userID, ContactListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts for user %d: %w", userID, err)
	}

	summaries := make([]ContactSummary, 0, len(contacts))
	updates := make([]FriendlinessUpdate, 0, len(contacts))
	for _, contact := range contacts {
		score, err := r.friendliness.Score(ctx, contact.ID)
		if err != nil {
			return nil, fmt.Errorf("ranking pass failed at contact %d: %w", contact.ID, err)
		}
		updates = append(updates, FriendlinessUpdate{ContactID: contact.ID, Score: score})
		summaries = append(summaries, ContactSummary{
			ID:                   contact.ID,
			Email:                contact.EmailAddress,
			Name:                 contact.Name,
			FriendlinessScore:    score,
			TotalEmails:          contact.TotalEmails,
			LastCommunication:    contact.LastCommunication,
			AvgResponseTimeHours: contact.AvgResponseTimeHours,
		})
	}

	set := &RankingSet{
		ByFriendliness: sortedCopy(summaries, func(a, b ContactSummary) bool {
			return a.FriendlinessScore > b.FriendlinessScore
		}),
		ByFrequency: sortedCopy(summaries, func(a, b ContactSummary) bool {
			return a.TotalEmails > b.TotalEmails
		}),
		// Contacts that never communicated sort last
		ByRecency: sortedCopy(summaries, func(a, b ContactSummary) bool {
			if b.LastCommunication == nil {
				return a.LastCommunication != nil
			}
			if a.LastCommunication == nil {
				return false
			}
			return a.LastCommunication.After(*b.LastCommunication)
		}),
		// Contacts with no measured response time sort last
		ByEngagement: sortedCopy(summaries, func(a, b ContactSummary) bool {
			if a.AvgResponseTimeHours == nil {
				return false
			}
			if b.AvgResponseTimeHours == nil {
				return true
			}
			return *a.AvgResponseTimeHours < *b.AvgResponseTimeHours
		}),
	}

	if err := r.contacts.UpdateFriendlinessScores(ctx, updates); err != nil {
		return nil, fmt.Errorf("failed to persist friendliness scores for user %d: %w", userID, err)
	}

	r.logger.Debug("Completed ranking pass",
		zap.Int64("user_id", userID),
		zap.Int("contacts", len(summaries)))

	return set, nil
}

// sortedCopy returns a stable-sorted copy so ties keep input order and
// the four orderings stay independent of each other
func sortedCopy(summaries []ContactSummary, less func(a, b ContactSummary) bool) []ContactSummary {
	out := make([]ContactSummary, len(summaries))
	copy(out, summaries)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
