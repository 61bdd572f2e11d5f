package core

import "errors"

var (
	ErrMissingParameter       = errors.New("missing required parameter")
	ErrInvalidTimestampFormat = errors.New("invalid timestamp format")
	ErrChallengeExpired       = errors.New("challenge has expired")
	ErrMalformedInput         = errors.New("malformed input")
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	ErrSignatureMismatch      = errors.New("signature does not match signer")
	ErrNonceReused            = errors.New("nonce has already been used")
	ErrInternal               = errors.New("internal error")
)

// Reason tags a failed verification
type Reason string

const (
	ReasonMissingParameter       Reason = "MissingParameter"
	ReasonInvalidTimestampFormat Reason = "InvalidTimestampFormat"
	ReasonChallengeExpired       Reason = "ChallengeExpired"
	ReasonMalformedInput         Reason = "MalformedInput"
	ReasonInvalidSignatureLength Reason = "InvalidSignatureLength"
	ReasonSignatureMismatch      Reason = "SignatureMismatch"
	ReasonNonceReused            Reason = "NonceReused"
	ReasonInternalError          Reason = "InternalError"
)

// ReasonOf classifies err against the sentinel errors above.
// Unknown errors are reported as internal.
func ReasonOf(err error) Reason {
	switch {
	case errors.Is(err, ErrMissingParameter):
		return ReasonMissingParameter
	case errors.Is(err, ErrInvalidTimestampFormat):
		return ReasonInvalidTimestampFormat
	case errors.Is(err, ErrChallengeExpired):
		return ReasonChallengeExpired
	case errors.Is(err, ErrMalformedInput):
		return ReasonMalformedInput
	case errors.Is(err, ErrInvalidSignatureLength):
		return ReasonInvalidSignatureLength
	case errors.Is(err, ErrSignatureMismatch):
		return ReasonSignatureMismatch
	case errors.Is(err, ErrNonceReused):
		return ReasonNonceReused
	default:
		return ReasonInternalError
	}
}

// SuccessMessage is reported for a verified signature
const SuccessMessage = "Signature verification successful!"

// Message returns the text shown to the caller for a failure
func (r Reason) Message() string {
	switch r {
	case ReasonMissingParameter:
		return "Missing required parameters: message, signature, publicKey, signer"
	case ReasonInvalidTimestampFormat:
		return "Invalid timestamp format in message"
	case ReasonChallengeExpired:
		return "Authentication expired. Please sign in again."
	case ReasonMalformedInput:
		return "Malformed signature, public key or address"
	case ReasonInvalidSignatureLength:
		return "Invalid signature length"
	case ReasonSignatureMismatch:
		return "Signature verification failed!"
	case ReasonNonceReused:
		return "Authentication challenge already used. Please sign in again."
	default:
		return "Internal server error"
	}
}
