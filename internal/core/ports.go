package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist
var ErrNotFound = errors.New("record not found")

// EmailOrder selects the ordering of an email listing
type EmailOrder string

const (
	EmailOrderSentAtDesc    EmailOrder = "sent_at_desc"
	EmailOrderSentimentDesc EmailOrder = "sentiment_desc"
	EmailOrderWordCountDesc EmailOrder = "word_count_desc"
)

// ContactOrder selects the ordering of a contact listing
type ContactOrder string

const (
	ContactOrderNone             ContactOrder = ""
	ContactOrderFriendlinessDesc ContactOrder = "friendliness_desc"
	ContactOrderTotalEmailsDesc  ContactOrder = "total_emails_desc"
)

// EmailListOptions narrows and orders an email listing. A zero Limit
// means no cap; a zero Since means no lower time bound.
type EmailListOptions struct {
	Order EmailOrder
	Limit int
	Since time.Time
}

// ContactListOptions narrows and orders a contact listing
type ContactListOptions struct {
	Order ContactOrder
	Limit int
}

// FriendlinessUpdate is one staged score write of a ranking pass
type FriendlinessUpdate struct {
	ContactID int64
	Score     float64
}

// EmailStore defines read/write access to a user's emails. Only the
// derived analytics fields are ever written back by the core. Method
// names carry the entity so one backend can implement both stores.
type EmailStore interface {
	// GetEmail retrieves a single email by ID
	GetEmail(ctx context.Context, id int64) (*Email, error)

	// ListBySender returns up to limit emails sent by the given address,
	// newest first
	ListBySender(ctx context.Context, sender string, limit int) ([]*Email, error)

	// ListEmailsByUser returns a user's emails per the given options
	ListEmailsByUser(ctx context.Context, userID int64, opts EmailListOptions) ([]*Email, error)

	// CountEmailsByUser returns the total number of a user's emails
	CountEmailsByUser(ctx context.Context, userID int64) (int, error)

	// AvgSentimentByUser returns the mean stored sentiment across all of
	// a user's emails, 0.0 when the user has none
	AvgSentimentByUser(ctx context.Context, userID int64) (float64, error)

	// UpdateEmailAnalytics writes the derived sentiment and word count fields
	UpdateEmailAnalytics(ctx context.Context, id int64, sentimentScore float64, wordCount int) error

	// InsertEmail stores a new email and returns its assigned ID
	InsertEmail(ctx context.Context, email *Email) (int64, error)
}

// ContactStore defines read/write access to per-contact aggregates
type ContactStore interface {
	// GetContact retrieves a single contact by ID
	GetContact(ctx context.Context, id int64) (*Contact, error)

	// ListContactsByUser returns a user's contacts per the given options
	ListContactsByUser(ctx context.Context, userID int64, opts ContactListOptions) ([]*Contact, error)

	// CountContactsByUser returns the total number of a user's contacts
	CountContactsByUser(ctx context.Context, userID int64) (int, error)

	// UpdateFriendlinessScores applies all staged writes of a ranking
	// pass in a single commit; on error none of them are applied
	UpdateFriendlinessScores(ctx context.Context, updates []FriendlinessUpdate) error

	// UpsertContact inserts or refreshes a contact keyed by
	// (user, address) and returns its ID
	UpsertContact(ctx context.Context, contact *Contact) (int64, error)
}

// SentimentAnalyzer is the lexical sentiment primitive: polarity in
// [-1, 1] and subjectivity in [0, 1] for a cleaned text
type SentimentAnalyzer interface {
	Polarity(text string) (polarity float64, subjectivity float64)
}

// LLMClient defines the interface for the optional language generation
// collaborator. A nil client is valid everywhere one is accepted; all
// callers degrade to deterministic output.
type LLMClient interface {
	// Complete generates a completion for the given conversation
	Complete(ctx context.Context, messages []Message) (string, error)
}
