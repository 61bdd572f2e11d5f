package core_test

import (
	"testing"
	"time"

	"github.com/layer-3/sigil/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMessage = "Please sign this message to complete login authentication.\nTimestamp: 2024-01-01T00:00:00.000Z\nNonce: abcd1234"

func TestFormatChallenge(t *testing.T) {
	msg := core.FormatChallenge("2024-01-01T00:00:00.000Z", "abcd1234")
	assert.Equal(t, sampleMessage, msg)
}

func TestExtractFields(t *testing.T) {
	ts, ok := core.ExtractTimestamp(sampleMessage)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", ts)

	nonce, ok := core.ExtractNonce(sampleMessage)
	require.True(t, ok)
	assert.Equal(t, "abcd1234", nonce)
}

func TestExtractFieldsMissing(t *testing.T) {
	_, ok := core.ExtractTimestamp("Sign in to the dashboard")
	assert.False(t, ok)

	_, ok = core.ExtractNonce("Timestamp: 2024-01-01T00:00:00Z")
	assert.False(t, ok)

	_, ok = core.ExtractTimestamp("Timestamp:   ")
	assert.False(t, ok)
}

func TestNormalizeMessage(t *testing.T) {
	escaped := `Please sign this message to complete login authentication.\nTimestamp: 2024-01-01T00:00:00.000Z\nNonce: abcd1234`
	assert.Equal(t, sampleMessage, core.NormalizeMessage(escaped))
	assert.Equal(t, sampleMessage, core.NormalizeMessage(sampleMessage))

	ts, ok := core.ExtractTimestamp(core.NormalizeMessage(escaped))
	require.True(t, ok)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", ts)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"2024-01-01T00:00:00.000Z",
		"2024-01-01T00:00:00Z",
		"2024-01-01T02:00:00+02:00",
		"2024-01-01T00:00:00",
		"2024-01-01",
		"Mon, 01 Jan 2024 00:00:00 UTC",
	} {
		ts, err := core.ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(ts), "%s parsed as %s", raw, ts)
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	_, err := core.ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, core.ErrInvalidTimestampFormat)
}
