package core

import (
	"context"
	"fmt"
	"sort"
)

// stubAnalyzer returns a fixed polarity for any text
type stubAnalyzer struct {
	polarity     float64
	subjectivity float64
}

func (a *stubAnalyzer) Polarity(text string) (float64, float64) {
	return a.polarity, a.subjectivity
}

// stubLLM replays a canned reply or error and records what it was asked
type stubLLM struct {
	reply string
	err   error
	calls int
	last  []Message
}

func (l *stubLLM) Complete(ctx context.Context, messages []Message) (string, error) {
	l.calls++
	l.last = messages
	if l.err != nil {
		return "", l.err
	}
	return l.reply, nil
}

// fakeStore is an in-test implementation of EmailStore and ContactStore
type fakeStore struct {
	emails        map[int64]*Email
	contacts      map[int64]*Contact
	nextEmailID   int64
	nextContactID int64

	failUpdates bool
	updateCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		emails:        map[int64]*Email{},
		contacts:      map[int64]*Contact{},
		nextEmailID:   1,
		nextContactID: 1,
	}
}

func (s *fakeStore) addEmail(email Email) int64 {
	email.ID = s.nextEmailID
	s.nextEmailID++
	s.emails[email.ID] = &email
	return email.ID
}

func (s *fakeStore) addContact(contact Contact) int64 {
	contact.ID = s.nextContactID
	s.nextContactID++
	s.contacts[contact.ID] = &contact
	return contact.ID
}

func (s *fakeStore) GetEmail(ctx context.Context, id int64) (*Email, error) {
	email, ok := s.emails[id]
	if !ok {
		return nil, fmt.Errorf("email %d: %w", id, ErrNotFound)
	}
	copied := *email
	return &copied, nil
}

func (s *fakeStore) ListBySender(ctx context.Context, sender string, limit int) ([]*Email, error) {
	var matched []*Email
	for _, email := range s.emails {
		if email.Sender == sender {
			copied := *email
			matched = append(matched, &copied)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].SentAt.After(matched[j].SentAt) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *fakeStore) ListEmailsByUser(ctx context.Context, userID int64, opts EmailListOptions) ([]*Email, error) {
	var matched []*Email
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
	case EmailOrderSentimentDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].SentimentScore > matched[j].SentimentScore })
	case EmailOrderWordCountDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].WordCount > matched[j].WordCount })
	default:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].SentAt.After(matched[j].SentAt) })
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (s *fakeStore) CountEmailsByUser(ctx context.Context, userID int64) (int, error) {
	count := 0
	for _, email := range s.emails {
		if email.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) AvgSentimentByUser(ctx context.Context, userID int64) (float64, error) {
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

func (s *fakeStore) UpdateEmailAnalytics(ctx context.Context, id int64, sentimentScore float64, wordCount int) error {
	email, ok := s.emails[id]
	if !ok {
		return fmt.Errorf("email %d: %w", id, ErrNotFound)
	}
	email.SentimentScore = sentimentScore
	email.WordCount = wordCount
	return nil
}

func (s *fakeStore) InsertEmail(ctx context.Context, email *Email) (int64, error) {
	return s.addEmail(*email), nil
}

func (s *fakeStore) GetContact(ctx context.Context, id int64) (*Contact, error) {
	contact, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	copied := *contact
	return &copied, nil
}

func (s *fakeStore) ListContactsByUser(ctx context.Context, userID int64, opts ContactListOptions) ([]*Contact, error) {
	var matched []*Contact
	for _, contact := range s.contacts {
		if contact.UserID == userID {
			copied := *contact
			matched = append(matched, &copied)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	switch opts.Order {
	case ContactOrderFriendlinessDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].FriendlinessScore > matched[j].FriendlinessScore })
	case ContactOrderTotalEmailsDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].TotalEmails > matched[j].TotalEmails })
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (s *fakeStore) CountContactsByUser(ctx context.Context, userID int64) (int, error) {
	count := 0
	for _, contact := range s.contacts {
		if contact.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) UpdateFriendlinessScores(ctx context.Context, updates []FriendlinessUpdate) error {
	s.updateCalls++
	if s.failUpdates {
		return fmt.Errorf("store unavailable")
	}
	for _, update := range updates {
		if _, ok := s.contacts[update.ContactID]; !ok {
			return fmt.Errorf("contact %d: %w", update.ContactID, ErrNotFound)
		}
	}
	for _, update := range updates {
		s.contacts[update.ContactID].FriendlinessScore = update.Score
	}
	return nil
}

func (s *fakeStore) UpsertContact(ctx context.Context, contact *Contact) (int64, error) {
	for _, existing := range s.contacts {
		if existing.UserID == contact.UserID && existing.EmailAddress == contact.EmailAddress {
			copied := *contact
			copied.ID = existing.ID
			s.contacts[existing.ID] = &copied
			return existing.ID, nil
		}
	}
	return s.addContact(*contact), nil
}
