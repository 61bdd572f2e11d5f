package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/layer-3/sigil/core"
)

// NonceSize is the number of random bytes in a challenge nonce
const NonceSize = 8

// ChallengeIssuer produces self-describing login challenges.
// It holds no state and is safe for concurrent use.
type ChallengeIssuer struct {
	random io.Reader
	now    func() time.Time
}

// NewChallengeIssuer creates a challenge issuer.
// A nil random source defaults to crypto/rand and a nil clock to time.Now.
func NewChallengeIssuer(random io.Reader, now func() time.Time) *ChallengeIssuer {
	if random == nil {
		random = rand.Reader
	}
	if now == nil {
		now = time.Now
	}
	return &ChallengeIssuer{
		random: random,
		now:    now,
	}
}

// Issue generates a new challenge stamped with the current UTC time
func (i *ChallengeIssuer) Issue() (core.Challenge, error) {
	nonceBytes := make([]byte, NonceSize)
	if _, err := io.ReadFull(i.random, nonceBytes); err != nil {
		return core.Challenge{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	timestamp := i.now().UTC().Format(core.TimestampLayout)
	nonce := hex.EncodeToString(nonceBytes)

	return core.Challenge{
		Message:   core.FormatChallenge(timestamp, nonce),
		Timestamp: timestamp,
		Nonce:     nonce,
	}, nil
}
