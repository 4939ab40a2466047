package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/email-insights/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the EmailStore and
// ContactStore interfaces
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL store. The DSN must enable
// parseTime so TIMESTAMP columns scan into time.Time.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS emails (
			id BIGINT PRIMARY KEY AUTO_INCREMENT,
			user_id BIGINT NOT NULL,
			subject TEXT,
			sender VARCHAR(255) NOT NULL,
			body_plain MEDIUMTEXT,
			body_html MEDIUMTEXT,
			snippet TEXT,
			sent_at TIMESTAMP NOT NULL,
			sentiment_score DOUBLE DEFAULT 0,
			word_count INT DEFAULT 0,
			INDEX idx_emails_sender (sender, sent_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create emails table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id BIGINT PRIMARY KEY AUTO_INCREMENT,
			user_id BIGINT NOT NULL,
			email_address VARCHAR(255) NOT NULL,
			name VARCHAR(255),
			friendliness_score DOUBLE DEFAULT 0,
			total_emails INT DEFAULT 0,
			emails_sent INT DEFAULT 0,
			emails_received INT DEFAULT 0,
			avg_response_time_hours DOUBLE,
			avg_email_length DOUBLE,
			last_communication TIMESTAMP NULL,
			UNIQUE KEY uniq_user_address (user_id, email_address)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create contacts table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// GetEmail retrieves a single email by ID
func (s *MySQLStore) GetEmail(ctx context.Context, id int64) (*core.Email, error) {
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
func (s *MySQLStore) ListBySender(ctx context.Context, sender string, limit int) ([]*core.Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails WHERE sender = ? ORDER BY sent_at DESC`
	args := []any{sender}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails by sender: %w", err)
	}
	defer rows.Close()

	return collectEmails(rows)
}

// ListEmailsByUser returns a user's emails per the given options
func (s *MySQLStore) ListEmailsByUser(ctx context.Context, userID int64, opts core.EmailListOptions) ([]*core.Email, error) {
	order := "sent_at DESC"
	switch opts.Order {
	case core.EmailOrderSentimentDesc:
		order = "sentiment_score DESC"
	case core.EmailOrderWordCountDesc:
		order = "word_count DESC"
	}

	query := `SELECT ` + emailColumns + ` FROM emails WHERE user_id = ?`
	args := []any{userID}
	if !opts.Since.IsZero() {
		query += ` AND sent_at >= ?`
		args = append(args, opts.Since)
	}
	query += ` ORDER BY ` + order + `, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails by user: %w", err)
	}
	defer rows.Close()

	return collectEmails(rows)
}

// CountEmailsByUser returns the total number of a user's emails
func (s *MySQLStore) CountEmailsByUser(ctx context.Context, userID int64) (int, error) {
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
func (s *MySQLStore) AvgSentimentByUser(ctx context.Context, userID int64) (float64, error) {
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
func (s *MySQLStore) UpdateEmailAnalytics(ctx context.Context, id int64, sentimentScore float64, wordCount int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE emails SET sentiment_score = ?, word_count = ? WHERE id = ?
	`, sentimentScore, wordCount, id)
	if err != nil {
		return fmt.Errorf("failed to update email analytics: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		// MySQL also reports zero when values are unchanged; re-check
		// existence before reporting not found
		var exists int
		if checkErr := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM emails WHERE id = ?`, id).Scan(&exists); checkErr == sql.ErrNoRows {
			return fmt.Errorf("email %d: %w", id, core.ErrNotFound)
		}
	}
	return nil
}

// InsertEmail stores a new email and returns its assigned ID
func (s *MySQLStore) InsertEmail(ctx context.Context, email *core.Email) (int64, error) {
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

// GetContact retrieves a single contact by ID
func (s *MySQLStore) GetContact(ctx context.Context, id int64) (*core.Contact, error) {
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
func (s *MySQLStore) ListContactsByUser(ctx context.Context, userID int64, opts core.ContactListOptions) ([]*core.Contact, error) {
	order := "id"
	switch opts.Order {
	case core.ContactOrderFriendlinessDesc:
		order = "friendliness_score DESC, id"
	case core.ContactOrderTotalEmailsDesc:
		order = "total_emails DESC, id"
	}

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ? ORDER BY ` + order
	args := []any{userID}
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *MySQLStore) CountContactsByUser(ctx context.Context, userID int64) (int, error) {
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
func (s *MySQLStore) UpdateFriendlinessScores(ctx context.Context, updates []core.FriendlinessUpdate) error {
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
func (s *MySQLStore) UpsertContact(ctx context.Context, contact *core.Contact) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (user_id, email_address, name, friendliness_score, total_emails, emails_sent, emails_received, avg_response_time_hours, avg_email_length, last_communication)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			total_emails = VALUES(total_emails),
			emails_sent = VALUES(emails_sent),
			emails_received = VALUES(emails_received),
			avg_response_time_hours = VALUES(avg_response_time_hours),
			avg_email_length = VALUES(avg_email_length),
			last_communication = VALUES(last_communication)
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
