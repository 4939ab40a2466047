package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mikey/email-insights/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the EmailStore and
// ContactStore interfaces, used for tests and ephemeral runs
type MemoryStore struct {
	mu            sync.RWMutex
	emails        map[int64]*core.Email
	contacts      map[int64]*core.Contact
	nextEmailID   int64
	nextContactID int64
	logger        *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		emails:        make(map[int64]*core.Email),
		contacts:      make(map[int64]*core.Contact),
		nextEmailID:   1,
		nextContactID: 1,
		logger:        logger,
	}
}

// GetEmail retrieves a single email by ID
func (s *MemoryStore) GetEmail(ctx context.Context, id int64) (*core.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.emails[id]
	if !ok {
		return nil, fmt.Errorf("email %d: %w", id, core.ErrNotFound)
	}
	copied := *email
	return &copied, nil
}

// ListBySender returns up to limit emails sent by the given address, newest first
func (s *MemoryStore) ListBySender(ctx context.Context, sender string, limit int) ([]*core.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*core.Email
	for _, email := range s.emails {
		if email.Sender == sender {
			copied := *email
			matched = append(matched, &copied)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].SentAt.After(matched[j].SentAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// ListEmailsByUser returns a user's emails per the given options
func (s *MemoryStore) ListEmailsByUser(ctx context.Context, userID int64, opts core.EmailListOptions) ([]*core.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*core.Email
	for _, email := range s.emails {
		if email.UserID != userID {
			continue
		}
		if !opts.Since.IsZero() && email.SentAt.Before(opts.Since) {
			continue
		}
		copied := *email
		matched = append(matched, &copied)
	}

	switch opts.Order {
	case core.EmailOrderSentimentDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].SentimentScore > matched[j].SentimentScore
		})
	case core.EmailOrderWordCountDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].WordCount > matched[j].WordCount
		})
	default:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].SentAt.After(matched[j].SentAt)
		})
	}

	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// CountEmailsByUser returns the total number of a user's emails
func (s *MemoryStore) CountEmailsByUser(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, email := range s.emails {
		if email.UserID == userID {
			count++
		}
	}
	return count, nil
}

// AvgSentimentByUser returns the mean stored sentiment across all of a
// user's emails, 0.0 when the user has none
func (s *MemoryStore) AvgSentimentByUser(ctx context.Context, userID int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	count := 0
	for _, email := range s.emails {
		if email.UserID == userID {
			sum += email.SentimentScore
			count++
		}
	}
	if count == 0 {
		return 0.0, nil
	}
	return sum / float64(count), nil
}

// UpdateEmailAnalytics writes the derived sentiment and word count fields
func (s *MemoryStore) UpdateEmailAnalytics(ctx context.Context, id int64, sentimentScore float64, wordCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.emails[id]
	if !ok {
		return fmt.Errorf("email %d: %w", id, core.ErrNotFound)
	}
	email.SentimentScore = sentimentScore
	email.WordCount = wordCount
	return nil
}

// InsertEmail stores a new email and returns its assigned ID
func (s *MemoryStore) InsertEmail(ctx context.Context, email *core.Email) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *email
	copied.ID = s.nextEmailID
	s.nextEmailID++
	s.emails[copied.ID] = &copied
	return copied.ID, nil
}

// GetContact retrieves a single contact by ID
func (s *MemoryStore) GetContact(ctx context.Context, id int64) (*core.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contact, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %d: %w", id, core.ErrNotFound)
	}
	copied := *contact
	return &copied, nil
}

// ListContactsByUser returns a user's contacts per the given options
func (s *MemoryStore) ListContactsByUser(ctx context.Context, userID int64, opts core.ContactListOptions) ([]*core.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*core.Contact
	for _, contact := range s.contacts {
		if contact.UserID == userID {
			copied := *contact
			matched = append(matched, &copied)
		}
	}

	// Insertion order keeps unordered listings deterministic
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	switch opts.Order {
	case core.ContactOrderFriendlinessDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].FriendlinessScore > matched[j].FriendlinessScore
		})
	case core.ContactOrderTotalEmailsDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].TotalEmails > matched[j].TotalEmails
		})
	}

	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// CountContactsByUser returns the total number of a user's contacts
func (s *MemoryStore) CountContactsByUser(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, contact := range s.contacts {
		if contact.UserID == userID {
			count++
		}
	}
	return count, nil
}

// UpdateFriendlinessScores applies all staged writes of a ranking pass.
// All targets are validated before any score is touched so a failure
// leaves every contact unchanged.
func (s *MemoryStore) UpdateFriendlinessScores(ctx context.Context, updates []core.FriendlinessUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, update := range updates {
		if _, ok := s.contacts[update.ContactID]; !ok {
			return fmt.Errorf("contact %d: %w", update.ContactID, core.ErrNotFound)
		}
	}
	for _, update := range updates {
		s.contacts[update.ContactID].FriendlinessScore = update.Score
	}
	return nil
}

// UpsertContact inserts or refreshes a contact keyed by (user, address)
func (s *MemoryStore) UpsertContact(ctx context.Context, contact *core.Contact) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.contacts {
		if existing.UserID == contact.UserID && existing.EmailAddress == contact.EmailAddress {
			existing.Name = contact.Name
			existing.TotalEmails = contact.TotalEmails
			existing.EmailsSent = contact.EmailsSent
			existing.EmailsReceived = contact.EmailsReceived
			existing.AvgResponseTimeHours = contact.AvgResponseTimeHours
			existing.AvgEmailLength = contact.AvgEmailLength
			existing.LastCommunication = contact.LastCommunication
			return existing.ID, nil
		}
	}

	copied := *contact
	copied.ID = s.nextContactID
	s.nextContactID++
	s.contacts[copied.ID] = &copied
	return copied.ID, nil
}
