package domain

import (
	"math"
	"time"
	"unicode/utf8"
)

const (
	MinInputLength = 50
	MaxInputLength = 10_000

	ExcerptLength   = 300
	HistoryCapacity = 15

	DefaultEstimatedTimeSeconds = 20
)

// SummaryRecord is one entry of the local summary history. Records are never
// edited after creation.
type SummaryRecord struct {
	ID                 int64     `json:"id"`
	OriginalExcerpt    string    `json:"text"`
	SummaryText        string    `json:"summary"`
	CreatedAt          time.Time `json:"timestamp"`
	OriginalTextLength int       `json:"textLength"`
	SummaryLength      int       `json:"summaryLength"`
}

// CompressionRatio returns the summary length as a rounded percentage of the
// original text length.
func CompressionRatio(originalLength, summaryLength int) int {
	if originalLength <= 0 {
		return 0
	}

	return int(math.Round(float64(summaryLength) / float64(originalLength) * 100))
}

// Excerpt returns the first ExcerptLength characters of text.
func Excerpt(text string) string {
	return truncateRunes(text, ExcerptLength)
}

// TextLength counts characters as Unicode code points.
func TextLength(text string) int {
	return utf8.RuneCountInString(text)
}

// ValidateInput checks the raw text against the accepted length window.
// Only the length counts; whitespace is not stripped.
func ValidateInput(text string) error {
	length := TextLength(text)

	switch {
	case length < MinInputLength:
		return &Error{Kind: KindValidation, Message: "Text must be at least 50 characters"}
	case length > MaxInputLength:
		return &Error{Kind: KindValidation, Message: "Text is too long. Maximum 10,000 characters."}
	}

	return nil
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}

	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}

	return text
}
