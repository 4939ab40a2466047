package ingest

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mikey/email-insights/internal/core"
	"github.com/mikey/email-insights/internal/utils"
	"go.uber.org/zap"
)

const snippetLength = 200

// Report summarizes one ingestion run
type Report struct {
	EmailsIngested  int
	ContactsUpdated int
	Failures        int
}

// Ingester parses raw RFC 822 messages into stored emails and keeps the
// per-contact aggregates in step. One Run call is one unit of work;
// contact aggregates are merged in memory and written once at the end.
type Ingester struct {
	emails    core.EmailStore
	contacts  core.ContactStore
	analytics *core.Analytics
	logger    *zap.Logger
}

// NewIngester creates a new ingester
func NewIngester(emails core.EmailStore, contacts core.ContactStore, analytics *core.Analytics, logger *zap.Logger) *Ingester {
	return &Ingester{
		emails:    emails,
		contacts:  contacts,
		analytics: analytics,
		logger:    logger,
	}
}

// contactState carries a contact's aggregates plus the running totals
// needed to fold new messages into the average body length
type contactState struct {
	contact   core.Contact
	lengthSum float64
	lengthN   int
	touched   bool
}

// Run ingests the given message files for a user. Messages that fail to
// parse are logged and skipped; the rest are stored, scored and folded
// into their sender's contact aggregates.
func (in *Ingester) Run(ctx context.Context, userID int64, paths []string) (*Report, error) {
	states, err := in.loadContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}

	report := &Report{}
	for _, path := range paths {
		if err := in.ingestFile(ctx, userID, path, states); err != nil {
			in.logger.Warn("Failed to ingest message",
				zap.String("path", path),
				zap.Error(err))
			report.Failures++
			continue
		}
		report.EmailsIngested++
	}

	for _, state := range states {
		if !state.touched {
			continue
		}
		if _, err := in.contacts.UpsertContact(ctx, &state.contact); err != nil {
			return report, fmt.Errorf("failed to upsert contact %s: %w", state.contact.EmailAddress, err)
		}
		report.ContactsUpdated++
	}

	in.logger.Info("Ingestion run complete",
		zap.Int64("user_id", userID),
		zap.Int("emails", report.EmailsIngested),
		zap.Int("contacts", report.ContactsUpdated),
		zap.Int("failures", report.Failures))
	return report, nil
}

// CollectMessageFiles lists the .eml files under a directory, sorted by
// name for a stable ingestion order
func CollectMessageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".eml") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (in *Ingester) ingestFile(ctx context.Context, userID int64, path string, states map[string]*contactState) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	body, err := extractBody(msg)
	if err != nil {
		return fmt.Errorf("failed to extract body: %w", err)
	}

	senderName, senderAddr := parseSender(msg.Header.Get("From"))
	sentAt := parseDate(msg)

	plain := body.Plain
	if plain == "" && body.HTML != "" {
		plain = utils.StripHTML(body.HTML)
	}

	email := &core.Email{
		UserID:    userID,
		Subject:   decodeHeader(msg.Header.Get("Subject")),
		Sender:    senderAddr,
		BodyPlain: plain,
		BodyHTML:  body.HTML,
		Snippet:   makeSnippet(plain),
		SentAt:    sentAt,
	}

	emailID, err := in.emails.InsertEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to store email: %w", err)
	}

	if err := in.analytics.UpdateEmailAnalytics(ctx, emailID); err != nil {
		return fmt.Errorf("failed to score email %d: %w", emailID, err)
	}

	in.mergeContact(states, userID, senderAddr, senderName, sentAt, utils.CleanText(plain))

	in.logger.Debug("Ingested email",
		zap.Int64("email_id", emailID),
		zap.String("sender", senderAddr),
		zap.Time("sent_at", sentAt))
	return nil
}

// mergeContact folds one received message into the sender's aggregates
func (in *Ingester) mergeContact(states map[string]*contactState, userID int64, addr, name string, sentAt time.Time, cleaned string) {
	if addr == "" {
		return
	}

	state, ok := states[addr]
	if !ok {
		state = &contactState{contact: core.Contact{
			UserID:       userID,
			EmailAddress: addr,
		}}
		states[addr] = state
	}

	state.touched = true
	if name != "" {
		state.contact.Name = name
	}
	state.contact.TotalEmails++
	state.contact.EmailsReceived++
	if state.contact.LastCommunication == nil || sentAt.After(*state.contact.LastCommunication) {
		t := sentAt
		state.contact.LastCommunication = &t
	}

	state.lengthSum += float64(len(cleaned))
	state.lengthN++
	avg := state.lengthSum / float64(state.lengthN)
	state.contact.AvgEmailLength = &avg
}

// loadContacts snapshots the user's existing contacts so this run's
// messages accumulate on top of prior aggregates
func (in *Ingester) loadContacts(ctx context.Context, userID int64) (map[string]*contactState, error) {
	existing, err := in.contacts.ListContactsByUser(ctx, userID, core.ContactListOptions{})
	if err != nil {
		return nil, err
	}

	states := make(map[string]*contactState, len(existing))
	for _, contact := range existing {
		state := &contactState{contact: *contact}
		if contact.AvgEmailLength != nil {
			// Reconstruct the running sum from the stored average
			state.lengthN = contact.TotalEmails
			state.lengthSum = *contact.AvgEmailLength * float64(contact.TotalEmails)
		}
		states[contact.EmailAddress] = state
	}
	return states, nil
}

func parseSender(from string) (name, addr string) {
	decoded := decodeHeader(from)
	if parsed, err := mail.ParseAddress(decoded); err == nil {
		return strings.TrimSpace(parsed.Name), strings.ToLower(parsed.Address)
	}
	return "", strings.ToLower(utils.ExtractAddress(decoded))
}

func parseDate(msg *mail.Message) time.Time {
	if date, err := msg.Header.Date(); err == nil {
		return date
	}
	return time.Now()
}

func makeSnippet(plain string) string {
	cleaned := utils.CleanText(plain)
	runes := []rune(cleaned)
	if len(runes) <= snippetLength {
		return cleaned
	}
	return string(runes[:snippetLength])
}
