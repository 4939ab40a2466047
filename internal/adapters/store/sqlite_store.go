package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/email-insights/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the EmailStore and
// ContactStore interfaces
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS emails (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			subject TEXT,
			sender TEXT NOT NULL,
			body_plain TEXT,
			body_html TEXT,
			snippet TEXT,
			sent_at TIMESTAMP NOT NULL,
			sentiment_score REAL DEFAULT 0,
			word_count INTEGER DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create emails table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_emails_sender ON emails(sender, sent_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to create emails index: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			email_address TEXT NOT NULL,
			name TEXT,
			friendliness_score REAL DEFAULT 0,
			total_emails INTEGER DEFAULT 0,
			emails_sent INTEGER DEFAULT 0,
			emails_received INTEGER DEFAULT 0,
			avg_response_time_hours REAL,
			avg_email_length REAL,
			last_communication TIMESTAMP,
			UNIQUE(user_id, email_address)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create contacts table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const emailColumns = `id, user_id, subject, sender, body_plain, body_html, snippet, sent_at, sentiment_score, word_count`

func scanEmail(row interface{ Scan(...any) error }) (*core.Email, error) {
	var email core.Email
	err := row.Scan(
		&email.ID,
		&email.UserID,
		&email.Subject,
		&email.Sender,
		&email.BodyPlain,
		&email.BodyHTML,
		&email.Snippet,
		&email.SentAt,
		&email.SentimentScore,
		&email.WordCount,
	)
	if err != nil {
		return nil, err
	}
	return &email, nil
}

// GetEmail retrieves a single email by ID
func (s *SQLiteStore) GetEmail(ctx context.Context, id int64) (*core.Email, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+emailColumns+` FROM emails WHERE id = ?
	`, id)

	email, err := scanEmail(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("email %d: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query email: %w", err)
	}
	return email, nil
}

// ListBySender returns up to limit emails sent by the given address, newest first
func (s *SQLiteStore) ListBySender(ctx context.Context, sender string, limit int) ([]*core.Email, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+emailColumns+` FROM emails
		WHERE sender = ?
		ORDER BY sent_at DESC
		LIMIT ?
	`, sender, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails by sender: %w", err)
	}
	defer rows.Close()

	return collectEmails(rows)
}

// ListEmailsByUser returns a user's emails per the given options
func (s *SQLiteStore) ListEmailsByUser(ctx context.Context, userID int64, opts core.EmailListOptions) ([]*core.Email, error) {
	order := "sent_at DESC"
	switch opts.Order {
	case core.EmailOrderSentimentDesc:
		order = "sentiment_score DESC"
	case core.EmailOrderWordCountDesc:
		order = "word_count DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	since := opts.Since
	if since.IsZero() {
		since = time.Time{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+emailColumns+` FROM emails
		WHERE user_id = ? AND sent_at >= ?
		ORDER BY `+order+`, id
		LIMIT ?
	`, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails by user: %w", err)
	}
	defer rows.Close()

	return collectEmails(rows)
}

func collectEmails(rows *sql.Rows) ([]*core.Email, error) {
	var emails []*core.Email
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email row: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate email rows: %w", err)
	}
	return emails, nil
}

// CountEmailsByUser returns the total number of a user's emails
func (s *SQLiteStore) CountEmailsByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM emails WHERE user_id = ?
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count emails: %w", err)
	}
	return count, nil
}

// AvgSentimentByUser returns the mean stored sentiment across all of a
// user's emails, 0.0 when the user has none
func (s *SQLiteStore) AvgSentimentByUser(ctx context.Context, userID int64) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(sentiment_score) FROM emails WHERE user_id = ?
	`, userID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average sentiment: %w", err)
	}
	if !avg.Valid {
		return 0.0, nil
	}
	return avg.Float64, nil
}

// UpdateEmailAnalytics writes the derived sentiment and word count fields
func (s *SQLiteStore) UpdateEmailAnalytics(ctx context.Context, id int64, sentimentScore float64, wordCount int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE emails SET sentiment_score = ?, word_count = ? WHERE id = ?
	`, sentimentScore, wordCount, id)
	if err != nil {
		return fmt.Errorf("failed to update email analytics: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("email %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// InsertEmail stores a new email and returns its assigned ID
func (s *SQLiteStore) InsertEmail(ctx context.Context, email *core.Email) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO emails (user_id, subject, sender, body_plain, body_html, snippet, sent_at, sentiment_score, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, email.UserID, email.Subject, email.Sender, email.BodyPlain, email.BodyHTML, email.Snippet,
		email.SentAt, email.SentimentScore, email.WordCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert email: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted email ID: %w", err)
	}
	return id, nil
}

const contactColumns = `id, user_id, email_address, name, friendliness_score, total_emails, emails_sent, emails_received, avg_response_time_hours, avg_email_length, last_communication`

func scanContact(row interface{ Scan(...any) error }) (*core.Contact, error) {
	var contact core.Contact
	var avgResponse, avgLength sql.NullFloat64
	var lastComm sql.NullTime
	err := row.Scan(
		&contact.ID,
		&contact.UserID,
		&contact.EmailAddress,
		&contact.Name,
		&contact.FriendlinessScore,
		&contact.TotalEmails,
		&contact.EmailsSent,
		&contact.EmailsReceived,
		&avgResponse,
		&avgLength,
		&lastComm,
	)
	if err != nil {
		return nil, err
	}
	if avgResponse.Valid {
		contact.AvgResponseTimeHours = &avgResponse.Float64
	}
	if avgLength.Valid {
		contact.AvgEmailLength = &avgLength.Float64
	}
	if lastComm.Valid {
		contact.LastCommunication = &lastComm.Time
	}
	return &contact, nil
}

// GetContact retrieves a single contact by ID
func (s *SQLiteStore) GetContact(ctx context.Context, id int64) (*core.Contact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+` FROM contacts WHERE id = ?
	`, id)

	contact, err := scanContact(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("contact %d: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query contact: %w", err)
	}
	return contact, nil
}

// ListContactsByUser returns a user's contacts per the given options
func (s *SQLiteStore) ListContactsByUser(ctx context.Context, userID int64, opts core.ContactListOptions) ([]*core.Contact, error) {
	order := "id"
	switch opts.Order {
	case core.ContactOrderFriendlinessDesc:
		order = "friendliness_score DESC, id"
	case core.ContactOrderTotalEmailsDesc:
		order = "total_emails DESC, id"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE user_id = ?
		ORDER BY `+order+`
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts by user: %w", err)
	}
	defer rows.Close()

	var contacts []*core.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contact rows: %w", err)
	}
	return contacts, nil
}

// CountContactsByUser returns the total number of a user's contacts
func (s *SQLiteStore) CountContactsByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM contacts WHERE user_id = ?
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

// UpdateFriendlinessScores applies all staged writes of a ranking pass
// in one transaction; a mid-pass failure rolls everything back
func (s *SQLiteStore) UpdateFriendlinessScores(ctx context.Context, updates []core.FriendlinessUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin friendliness transaction: %w", err)
	}

	for _, update := range updates {
		if _, err := tx.ExecContext(ctx, `
			UPDATE contacts SET friendliness_score = ? WHERE id = ?
		`, update.Score, update.ContactID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to stage friendliness score for contact %d: %w", update.ContactID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit friendliness scores: %w", err)
	}
	return nil
}

// UpsertContact inserts or refreshes a contact keyed by (user, address)
func (s *SQLiteStore) UpsertContact(ctx context.Context, contact *core.Contact) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (user_id, email_address, name, friendliness_score, total_emails, emails_sent, emails_received, avg_response_time_hours, avg_email_length, last_communication)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, email_address) DO UPDATE SET
			name = excluded.name,
			total_emails = excluded.total_emails,
			emails_sent = excluded.emails_sent,
			emails_received = excluded.emails_received,
			avg_response_time_hours = excluded.avg_response_time_hours,
			avg_email_length = excluded.avg_email_length,
			last_communication = excluded.last_communication
	`, contact.UserID, contact.EmailAddress, contact.Name, contact.FriendlinessScore,
		contact.TotalEmails, contact.EmailsSent, contact.EmailsReceived,
		nullableFloat(contact.AvgResponseTimeHours), nullableFloat(contact.AvgEmailLength),
		nullableTime(contact.LastCommunication))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert contact: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM contacts WHERE user_id = ? AND email_address = ?
	`, contact.UserID, contact.EmailAddress).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read upserted contact ID: %w", err)
	}
	return id, nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
