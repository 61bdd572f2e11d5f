package core

import "time"

// ChainType selects the signature scheme used to verify a login
type ChainType int

const (
	// ChainTypeCosmos verifies ADR-36 amino signatures over a bech32 signer
	ChainTypeCosmos ChainType = iota
	// ChainTypeEthereum verifies personal_sign signatures by address recovery
	ChainTypeEthereum
)

// EIP155Tag is the chain namespace wallets report for EVM chains
const EIP155Tag = "eip155"

// ParseChainType maps a wallet chain namespace onto a ChainType.
// Anything other than "eip155" is treated as a Cosmos chain.
func ParseChainType(tag string) ChainType {
	if tag == EIP155Tag {
		return ChainTypeEthereum
	}
	return ChainTypeCosmos
}

func (c ChainType) String() string {
	switch c {
	case ChainTypeEthereum:
		return "ethereum"
	case ChainTypeCosmos:
		return "cosmos"
	default:
		return "unknown"
	}
}

// Challenge is a self-describing login message handed to the wallet for signing
type Challenge struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Nonce     string `json:"nonce"`
}

// VerificationRequest carries a wallet signature over a previously issued challenge
type VerificationRequest struct {
	Message   string    // Challenge text exactly as signed
	Signature string    // base64 (Cosmos) or hex (Ethereum)
	PublicKey string    // base64 secp256k1 key (Cosmos) or the raw address (Ethereum)
	Signer    string    // Claimed signer address
	ChainType ChainType // Scheme used to verify Signature
}

// VerificationResult is the outcome of a single verification
type VerificationResult struct {
	Success bool   `json:"success"`
	Reason  Reason `json:"reason,omitempty"`  // Empty on success
	Message string `json:"message"`           // Human readable outcome
	Address string `json:"address,omitempty"` // Normalized signer address on success
}

// Verified records a successful login for event consumers
type Verified struct {
	Address    string    `json:"address"`
	ChainType  string    `json:"chain_type"`
	Nonce      string    `json:"nonce,omitempty"`
	VerifiedAt time.Time `json:"verified_at"`
}
