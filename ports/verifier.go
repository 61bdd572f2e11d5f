package ports

import (
	"context"

	"github.com/layer-3/sigil/core"
)

// SignatureVerifier checks one signature scheme.
// On success it returns the normalized signer address; failures wrap a core sentinel error.
type SignatureVerifier interface {
	Verify(ctx context.Context, req core.VerificationRequest) (string, error)
}
