package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// ChallengePreamble is the instruction line every login challenge starts with
	ChallengePreamble = "Please sign this message to complete login authentication."

	// TimestampLayout renders ISO-8601 UTC timestamps with millisecond precision
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var (
	timestampPattern = regexp.MustCompile(`Timestamp:\s*([^\n]+)`)
	noncePattern     = regexp.MustCompile(`Nonce:\s*([^\n]+)`)

	// Layouts accepted for the Timestamp field, most specific first.
	// Zone-less layouts are read as UTC.
	timestampLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC1123,
		time.RFC1123Z,
	}
)

// FormatChallenge renders the message a wallet is asked to sign
func FormatChallenge(timestamp, nonce string) string {
	return fmt.Sprintf("%s\nTimestamp: %s\nNonce: %s", ChallengePreamble, timestamp, nonce)
}

// NormalizeMessage turns literal "\n" escape sequences into real newlines.
// Some clients transmit the challenge with its line breaks escaped.
func NormalizeMessage(message string) string {
	return strings.ReplaceAll(message, `\n`, "\n")
}

// ExtractTimestamp returns the raw Timestamp field of a challenge message
func ExtractTimestamp(message string) (string, bool) {
	return extractField(timestampPattern, message)
}

// ExtractNonce returns the raw Nonce field of a challenge message
func ExtractNonce(message string) (string, bool) {
	return extractField(noncePattern, message)
}

func extractField(pattern *regexp.Regexp, message string) (string, bool) {
	match := pattern.FindStringSubmatch(message)
	if match == nil {
		return "", false
	}
	value := strings.TrimSpace(match[1])
	return value, value != ""
}

// ParseTimestamp parses a challenge timestamp
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q: %w", raw, ErrInvalidTimestampFormat)
}
