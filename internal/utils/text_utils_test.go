package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Hello world", StripHTML("<p>Hello <b>world</b></p>"))
	assert.Equal(t, "plain", StripHTML("plain"))
	assert.Equal(t, "", StripHTML("<br/>"))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace collapsed", "hello   \n\t world", "hello world"},
		{"markup stripped", "<div>hi <span>there</span></div>", "hi there"},
		{"dash signature stripped", "see you\n-- \nJohn Doe\nACME Corp", "see you"},
		{"iphone signature stripped", "on my way\nSent from my iPhone", "on my way"},
		{"outlook signature stripped", "done\nGet Outlook for iOS", "done"},
		{"trimmed", "   padded   ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount("one two three"))
	assert.Equal(t, 2, WordCount("<p>hello</p> <p>world</p>"))
	assert.Equal(t, 2, WordCount("quick note\n-- \nlong signature with many words"))
}

func TestExtractAddress(t *testing.T) {
	assert.Equal(t, "john@example.com", ExtractAddress("John Doe <john@example.com>"))
	assert.Equal(t, "jane@example.com", ExtractAddress("jane@example.com"))
	assert.Equal(t, "a@b.com", ExtractAddress("  a@b.com  "))
	assert.Equal(t, "", ExtractAddress(""))
}

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 100))
	assert.Equal(t, "short", tp.TruncateText("short", 0))

	long := strings.Repeat("a", 200)
	truncated := tp.TruncateText(long, 50)
	assert.Contains(t, truncated, "Content truncated")
	assert.True(t, strings.HasPrefix(truncated, strings.Repeat("a", 50)))
}

func TestTruncateTextKeepsValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// Truncation point lands inside a multi-byte rune
	text := "aaaa日本語"
	truncated := tp.TruncateText(text, 5)
	assert.True(t, strings.HasPrefix(truncated, "aaaa"))
	assert.NotContains(t, truncated, "�")
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean", tp.SanitizeUTF8("clean"))
	assert.Equal(t, "日本語", tp.SanitizeUTF8("日本語"))

	broken := "ok" + string([]byte{0xff, 0xfe}) + "done"
	assert.Equal(t, "okdone", tp.SanitizeUTF8(broken))
}
