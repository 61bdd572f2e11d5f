package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/ports"
	"go.uber.org/zap"
)

// DefaultChallengeTTL is how long a signed challenge stays acceptable
const DefaultChallengeTTL = 5 * time.Minute

// AuthService handles authentication business logic
type AuthService struct {
	issuer   *ChallengeIssuer
	cosmos   ports.SignatureVerifier
	ethereum ports.SignatureVerifier
	ledger   ports.NonceLedger
	eventPub ports.EventPublisher
	logger   *zap.Logger

	now          func() time.Time
	challengeTTL time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(
	cosmos ports.SignatureVerifier,
	ethereum ports.SignatureVerifier,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		issuer:       NewChallengeIssuer(nil, nil),
		cosmos:       cosmos,
		ethereum:     ethereum,
		logger:       logger,
		now:          time.Now,
		challengeTTL: DefaultChallengeTTL,
	}
}

// SetChallengeIssuer replaces the default crypto/rand backed issuer
func (s *AuthService) SetChallengeIssuer(issuer *ChallengeIssuer) {
	s.issuer = issuer
}

// SetNonceLedger enables single-use nonces. Without a ledger a signed
// challenge can be replayed until it expires.
func (s *AuthService) SetNonceLedger(ledger ports.NonceLedger) {
	s.ledger = ledger
}

// SetEventPublisher publishes an event for every successful verification
func (s *AuthService) SetEventPublisher(eventPub ports.EventPublisher) {
	s.eventPub = eventPub
}

// SetClock overrides the wall clock used for freshness checks
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// SetChallengeTTL overrides DefaultChallengeTTL
func (s *AuthService) SetChallengeTTL(ttl time.Duration) {
	s.challengeTTL = ttl
}

// ChallengeTTL returns how long a signed challenge stays acceptable
func (s *AuthService) ChallengeTTL() time.Duration {
	return s.challengeTTL
}

// CreateChallenge generates a new authentication challenge
func (s *AuthService) CreateChallenge() (core.Challenge, error) {
	challenge, err := s.issuer.Issue()
	if err != nil {
		s.logger.Error("failed to issue challenge", zap.Error(err))
		return core.Challenge{}, err
	}
	return challenge, nil
}

// Verify validates a signed challenge. It never returns an error or panics:
// every failure is reported through the result.
func (s *AuthService) Verify(ctx context.Context, req core.VerificationRequest) (result core.VerificationResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic during signature verification",
				zap.Any("panic", r),
				zap.Stringer("chain_type", req.ChainType),
			)
			result = failure(core.ReasonInternalError)
		}
	}()

	address, nonce, err := s.verify(ctx, req)
	if err != nil {
		reason := core.ReasonOf(err)
		if reason == core.ReasonInternalError {
			s.logger.Error("signature verification failed", zap.Error(err))
		} else {
			s.logger.Info("signature verification rejected",
				zap.String("reason", string(reason)),
				zap.Stringer("chain_type", req.ChainType),
				zap.String("signer", req.Signer),
				zap.Error(err),
			)
		}
		return failure(reason)
	}

	if s.eventPub != nil {
		event := core.Verified{
			Address:    address,
			ChainType:  req.ChainType.String(),
			Nonce:      nonce,
			VerifiedAt: s.now().UTC(),
		}
		if err := s.eventPub.PublishVerified(ctx, event); err != nil {
			// The login itself succeeded, consumers of the event are best effort
			s.logger.Warn("failed to publish verified event", zap.Error(err))
		}
	}

	return core.VerificationResult{
		Success: true,
		Message: core.SuccessMessage,
		Address: address,
	}
}

// verify runs the gate parse -> freshness -> scheme -> nonce, stopping at the first failure
func (s *AuthService) verify(ctx context.Context, req core.VerificationRequest) (string, string, error) {
	if req.Message == "" || req.Signature == "" || req.PublicKey == "" || req.Signer == "" {
		return "", "", core.ErrMissingParameter
	}

	message := core.NormalizeMessage(req.Message)
	if err := s.checkFreshness(message); err != nil {
		return "", "", err
	}

	verifier, err := s.verifierFor(req.ChainType)
	if err != nil {
		return "", "", err
	}

	address, err := verifier.Verify(ctx, req)
	if err != nil {
		return "", "", err
	}

	nonce, ok := core.ExtractNonce(message)
	if ok && s.ledger != nil {
		fresh, err := s.ledger.Consume(ctx, nonceKey(req.ChainType, address, nonce), s.challengeTTL)
		if err != nil {
			return "", "", fmt.Errorf("failed to consume nonce: %w", err)
		}
		if !fresh {
			return "", "", core.ErrNonceReused
		}
	}

	return address, nonce, nil
}

// checkFreshness enforces the challenge TTL. Messages without a timestamp are
// accepted so custom or legacy formats keep working.
func (s *AuthService) checkFreshness(message string) error {
	raw, ok := core.ExtractTimestamp(message)
	if !ok {
		s.logger.Warn("no timestamp found in message, skipping freshness check")
		return nil
	}

	issuedAt, err := core.ParseTimestamp(raw)
	if err != nil {
		return err
	}

	if age := s.now().Sub(issuedAt); age > s.challengeTTL {
		return fmt.Errorf("challenge issued %s ago: %w", age.Truncate(time.Second), core.ErrChallengeExpired)
	}

	return nil
}

func (s *AuthService) verifierFor(chainType core.ChainType) (ports.SignatureVerifier, error) {
	switch chainType {
	case core.ChainTypeCosmos:
		return s.cosmos, nil
	case core.ChainTypeEthereum:
		return s.ethereum, nil
	default:
		return nil, fmt.Errorf("unsupported chain type %d: %w", chainType, core.ErrInternal)
	}
}

func nonceKey(chainType core.ChainType, address, nonce string) string {
	return chainType.String() + ":" + strings.ToLower(address) + ":" + nonce
}

func failure(reason core.Reason) core.VerificationResult {
	return core.VerificationResult{
		Reason:  reason,
		Message: reason.Message(),
	}
}
