package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/email-insights/internal/adapters/store"
	"github.com/mikey/email-insights/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedAnalyzer keeps ingestion tests independent of lexicon scoring
type fixedAnalyzer struct {
	polarity float64
}

func (a *fixedAnalyzer) Polarity(text string) (float64, float64) {
	return a.polarity, 0.5
}

func newIngestFixture(t *testing.T, polarity float64) (*store.MemoryStore, *Ingester) {
	t.Helper()
	logger := zap.NewNop()
	memStore := store.NewMemoryStore(logger)

	sentiment := core.NewSentimentScorer(&fixedAnalyzer{polarity: polarity}, nil, logger)
	friendliness := core.NewFriendlinessScorer(memStore, memStore, logger)
	ranking := core.NewRankingAggregator(memStore, friendliness, logger)
	selector := core.NewDataSelector(memStore, memStore)
	composer := core.NewResponseComposer(nil, logger)
	analytics := core.NewAnalytics(memStore, memStore, sentiment, friendliness, ranking, selector, composer, logger)

	return memStore, NewIngester(memStore, memStore, analytics, logger)
}

func writeMessage(t *testing.T, dir, name, raw string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))
	return path
}

const sampleMessage = "From: Alice Smith <Alice@Example.com>\r\n" +
	"Subject: Project update\r\n" +
	"Date: Mon, 04 Mar 2024 10:30:00 +0000\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Great progress this week, really happy with the results!\r\n"

func TestIngesterRunStoresEmailAndContact(t *testing.T) {
	memStore, ingester := newIngestFixture(t, 0.8)
	dir := t.TempDir()
	path := writeMessage(t, dir, "update.eml", sampleMessage)

	report, err := ingester.Run(context.Background(), 1, []string{path})
	require.NoError(t, err)

	assert.Equal(t, 1, report.EmailsIngested)
	assert.Equal(t, 1, report.ContactsUpdated)
	assert.Equal(t, 0, report.Failures)

	ctx := context.Background()
	emails, err := memStore.ListEmailsByUser(ctx, 1, core.EmailListOptions{})
	require.NoError(t, err)
	require.Len(t, emails, 1)

	email := emails[0]
	assert.Equal(t, "Project update", email.Subject)
	assert.Equal(t, "alice@example.com", email.Sender)
	assert.Equal(t, 2024, email.SentAt.Year())
	assert.Equal(t, 0.8, email.SentimentScore)
	assert.Equal(t, 9, email.WordCount)
	assert.NotEmpty(t, email.Snippet)

	contacts, err := memStore.ListContactsByUser(ctx, 1, core.ContactListOptions{})
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	contact := contacts[0]
	assert.Equal(t, "alice@example.com", contact.EmailAddress)
	assert.Equal(t, "Alice Smith", contact.Name)
	assert.Equal(t, 1, contact.TotalEmails)
	assert.Equal(t, 1, contact.EmailsReceived)
	require.NotNil(t, contact.LastCommunication)
	require.NotNil(t, contact.AvgEmailLength)
	assert.Greater(t, *contact.AvgEmailLength, 0.0)
}

func TestIngesterAccumulatesContactAggregates(t *testing.T) {
	memStore, ingester := newIngestFixture(t, 0.0)
	dir := t.TempDir()
	first := writeMessage(t, dir, "one.eml", sampleMessage)
	second := writeMessage(t, dir, "two.eml",
		"From: alice@example.com\r\n"+
			"Subject: Another note\r\n"+
			"Date: Tue, 05 Mar 2024 08:00:00 +0000\r\n"+
			"\r\n"+
			"Short.\r\n")

	_, err := ingester.Run(context.Background(), 1, []string{first})
	require.NoError(t, err)
	_, err = ingester.Run(context.Background(), 1, []string{second})
	require.NoError(t, err)

	contacts, err := memStore.ListContactsByUser(context.Background(), 1, core.ContactListOptions{})
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	contact := contacts[0]
	assert.Equal(t, 2, contact.TotalEmails)
	assert.Equal(t, 2, contact.EmailsReceived)
	// The name from the first message survives the bare-address second one
	assert.Equal(t, "Alice Smith", contact.Name)
	require.NotNil(t, contact.LastCommunication)
	assert.Equal(t, 5, contact.LastCommunication.Day())
}

func TestIngesterSkipsUnparseableMessages(t *testing.T) {
	memStore, ingester := newIngestFixture(t, 0.0)
	dir := t.TempDir()
	good := writeMessage(t, dir, "good.eml", sampleMessage)
	bad := writeMessage(t, dir, "bad.eml", "not an email at all")

	report, err := ingester.Run(context.Background(), 1, []string{bad, good})
	require.NoError(t, err)

	assert.Equal(t, 1, report.EmailsIngested)
	assert.Equal(t, 1, report.Failures)

	count, err := memStore.CountEmailsByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollectMessageFiles(t *testing.T) {
	dir := t.TempDir()
	writeMessage(t, dir, "b.eml", sampleMessage)
	writeMessage(t, dir, "a.eml", sampleMessage)
	writeMessage(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	paths, err := CollectMessageFiles(dir)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "a.eml"), paths[0])
	assert.Equal(t, filepath.Join(dir, "b.eml"), paths[1])
}
