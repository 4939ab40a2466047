package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	signatureRe  = regexp.MustCompile(`(?s)--\s*\n.*`)
	iphoneSigRe  = regexp.MustCompile(`(?i)Sent from my iPhone.*`)
	outlookSigRe = regexp.MustCompile(`(?i)Get Outlook for.*`)
	addressRe    = regexp.MustCompile(`<(.+?)>`)
)

// StripHTML removes markup tags from text
func StripHTML(text string) string {
	return htmlTagRe.ReplaceAllString(text, "")
}

// CleanText prepares email text for analysis: NFC normalization, tag
// stripping, signature stripping and whitespace collapsing
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := norm.NFC.String(text)
	cleaned = StripHTML(cleaned)
	cleaned = signatureRe.ReplaceAllString(cleaned, "")
	cleaned = iphoneSigRe.ReplaceAllString(cleaned, "")
	cleaned = outlookSigRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// WordCount counts the words in the cleaned form of text
func WordCount(text string) int {
	cleaned := CleanText(text)
	if cleaned == "" {
		return 0
	}
	return len(strings.Fields(cleaned))
}

// ExtractAddress extracts the bare address from formats like
// "John Doe <john@example.com>"
func ExtractAddress(emailString string) string {
	if emailString == "" {
		return ""
	}
	if match := addressRe.FindStringSubmatch(emailString); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(emailString)
}

// TextProcessor provides utilities for preparing text for LLM requests
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]

	// Trim bytes until the tail is a valid UTF-8 sequence
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				continue
			}
		}
		result = append(result, r)
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// ProcessText truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	truncated := tp.TruncateText(text, maxSize)
	return tp.SanitizeUTF8(truncated)
}
