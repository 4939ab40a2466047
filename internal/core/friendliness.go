package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Fixed design parameters of the friendliness formula. Not configurable.
const (
	recentEmailWindow = 50

	sentimentWeight = 0.4
	lengthWeight    = 0.3
	speedWeight     = 0.3

	// lengthNorm is the body length at which the length factor saturates
	lengthNorm = 500.0

	// speedNorm is the response time at which the speed factor reaches zero
	speedNorm = 48.0

	// defaultResponseHours is assumed when a contact has no measured
	// response time
	defaultResponseHours = 24.0
)

// FriendlinessScorer combines a contact's recent sentiment, message
// length and response latency into one score in [0, 1]
type FriendlinessScorer struct {
	emails   EmailStore
	contacts ContactStore
	logger   *zap.Logger
}

// NewFriendlinessScorer creates a new friendliness scorer
func NewFriendlinessScorer(emails EmailStore, contacts ContactStore, logger *zap.Logger) *FriendlinessScorer {
	return &FriendlinessScorer{
		emails:   emails,
		contacts: contacts,
		logger:   logger,
	}
}

// Score recomputes the friendliness score for a contact from its most
// recent emails. A contact with no emails, or an unknown contact,
// scores 0.0. Store failures propagate.
func (s *FriendlinessScorer) Score(ctx context.Context, contactID int64) (float64, error) {
	contact, err := s.contacts.GetContact(ctx, contactID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0.0, nil
		}
		return 0, fmt.Errorf("failed to load contact %d: %w", contactID, err)
	}

	recent, err := s.emails.ListBySender(ctx, contact.EmailAddress, recentEmailWindow)
	if err != nil {
		return 0, fmt.Errorf("failed to load recent emails for %q: %w", contact.EmailAddress, err)
	}
	if len(recent) == 0 {
		return 0.0, nil
	}

	var sentimentSum, lengthSum float64
	for _, email := range recent {
		sentimentSum += email.SentimentScore
		lengthSum += float64(len(email.BodyPlain))
	}
	avgSentiment := sentimentSum / float64(len(recent))
	avgLength := lengthSum / float64(len(recent))

	responseSpeed := defaultResponseHours
	if contact.AvgResponseTimeHours != nil {
		responseSpeed = *contact.AvgResponseTimeHours
	}

	lengthScore := min(avgLength/lengthNorm, 1.0)
	speedScore := max(0, 1-responseSpeed/speedNorm)

	friendliness := (avgSentiment+1)/2*sentimentWeight +
		lengthScore*lengthWeight +
		speedScore*speedWeight

	s.logger.Debug("Computed friendliness score",
		zap.Int64("contact_id", contactID),
		zap.Int("recent_emails", len(recent)),
		zap.Float64("avg_sentiment", avgSentiment),
		zap.Float64("avg_length", avgLength),
		zap.Float64("response_speed", responseSpeed))

	return round3(friendliness), nil
}
