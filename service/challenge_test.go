package service_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestIssue(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	random := bytes.NewReader([]byte{0xab, 0xcd, 0x12, 0x34, 0x00, 0x11, 0x22, 0x33})
	issuer := service.NewChallengeIssuer(random, func() time.Time { return now })

	challenge, err := issuer.Issue()
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01T00:00:00.000Z", challenge.Timestamp)
	assert.Equal(t, "abcd123400112233", challenge.Nonce)
	assert.Equal(t,
		"Please sign this message to complete login authentication.\nTimestamp: 2024-01-01T00:00:00.000Z\nNonce: abcd123400112233",
		challenge.Message,
	)
}

func TestIssueConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2024, 1, 1, 9, 30, 15, 250_000_000, loc)
	issuer := service.NewChallengeIssuer(nil, func() time.Time { return now })

	challenge, err := issuer.Issue()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:30:15.250Z", challenge.Timestamp)
}

func TestIssueRandomNonce(t *testing.T) {
	issuer := service.NewChallengeIssuer(nil, nil)

	first, err := issuer.Issue()
	require.NoError(t, err)
	second, err := issuer.Issue()
	require.NoError(t, err)

	assert.NotEqual(t, first.Nonce, second.Nonce)
	raw, err := hex.DecodeString(first.Nonce)
	require.NoError(t, err)
	assert.Len(t, raw, service.NonceSize)

	ts, ok := core.ExtractTimestamp(first.Message)
	require.True(t, ok)
	assert.Equal(t, first.Timestamp, ts)
}

func TestIssueEntropyFailure(t *testing.T) {
	issuer := service.NewChallengeIssuer(failingReader{}, nil)

	_, err := issuer.Issue()
	assert.Error(t, err)
}
