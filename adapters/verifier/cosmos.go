package verifier

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/ports"
	"go.uber.org/zap"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // cosmos addresses are hash160 of the key
)

const (
	// CosmosSignatureLength is r (32) || s (32)
	CosmosSignatureLength = 64

	msgSignDataType = "sign/MsgSignData"
)

// aminoSignDoc is the ADR-36 sign doc. Fields are declared in sorted key order so that
// encoding/json produces the canonical amino JSON wallets sign.
type aminoSignDoc struct {
	AccountNumber string     `json:"account_number"`
	ChainID       string     `json:"chain_id"`
	Fee           aminoFee   `json:"fee"`
	Memo          string     `json:"memo"`
	Msgs          []aminoMsg `json:"msgs"`
	Sequence      string     `json:"sequence"`
}

type aminoFee struct {
	Amount []string `json:"amount"`
	Gas    string   `json:"gas"`
}

type aminoMsg struct {
	Type  string      `json:"type"`
	Value msgSignData `json:"value"`
}

type msgSignData struct {
	Data   []byte `json:"data"`
	Signer string `json:"signer"`
}

// CosmosVerifier verifies ADR-36 amino signatures produced by Cosmos wallets
type CosmosVerifier struct {
	logger *zap.Logger
}

// NewCosmosVerifier creates a new ADR-36 verifier
func NewCosmosVerifier(logger *zap.Logger) ports.SignatureVerifier {
	return &CosmosVerifier{logger: logger}
}

// Verify checks req.Signature over req.Message against the base64 secp256k1 key in req.PublicKey
func (v *CosmosVerifier) Verify(ctx context.Context, req core.VerificationRequest) (string, error) {
	signer := strings.ToLower(req.Signer)
	prefix, _, err := DecodeBech32(signer)
	if err != nil {
		return "", err
	}

	pubKeyBytes, err := decodeBase64(req.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to decode public key: %w", core.ErrMalformedInput)
	}
	sig, err := decodeBase64(req.Signature)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", core.ErrMalformedInput)
	}
	if len(sig) != CosmosSignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d: %w", CosmosSignatureLength, len(sig), core.ErrInvalidSignatureLength)
	}

	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", core.ErrMalformedInput)
	}

	derived, err := CosmosAddress(prefix, pubKey.SerializeCompressed())
	if err != nil {
		return "", err
	}
	if derived != signer {
		v.logger.Debug("public key does not belong to signer",
			zap.String("signer", signer),
			zap.String("derived", derived),
		)
		return "", fmt.Errorf("public key belongs to %s: %w", derived, core.ErrSignatureMismatch)
	}

	doc, err := ADR36SignDoc(signer, []byte(req.Message))
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(doc)

	if !verifySecp256k1(hash[:], sig, pubKey) {
		return "", fmt.Errorf("ADR-36 signature rejected: %w", core.ErrSignatureMismatch)
	}

	return signer, nil
}

// ADR36SignDoc serializes the amino sign doc wrapping data for signer
func ADR36SignDoc(signer string, data []byte) ([]byte, error) {
	doc := aminoSignDoc{
		AccountNumber: "0",
		ChainID:       "",
		Fee: aminoFee{
			Amount: []string{},
			Gas:    "0",
		},
		Memo: "",
		Msgs: []aminoMsg{{
			Type: msgSignDataType,
			Value: msgSignData{
				Data:   data,
				Signer: signer,
			},
		}},
		Sequence: "0",
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign doc: %w", err)
	}
	return out, nil
}

// DecodeBech32 splits a bech32 address into its prefix and 8-bit payload
func DecodeBech32(address string) (string, []byte, error) {
	prefix, data, err := bech32.Decode(address)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode bech32 address %q: %w", address, core.ErrMalformedInput)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("failed to convert bech32 payload: %w", core.ErrMalformedInput)
	}

	return prefix, payload, nil
}

// CosmosAddress derives the bech32 account address of a compressed secp256k1 key
func CosmosAddress(prefix string, compressedPubKey []byte) (string, error) {
	sha := sha256.Sum256(compressedPubKey)
	hasher := ripemd160.New()
	if _, err := hasher.Write(sha[:]); err != nil {
		return "", fmt.Errorf("failed to hash public key: %w", err)
	}

	data, err := bech32.ConvertBits(hasher.Sum(nil), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert address bits: %w", err)
	}

	address, err := bech32.Encode(prefix, data)
	if err != nil {
		return "", fmt.Errorf("failed to encode address: %w", err)
	}
	return address, nil
}

// verifySecp256k1 checks a 64-byte r||s signature. High-S signatures are rejected
// as the Cosmos SDK does.
func verifySecp256k1(hash, sig []byte, pubKey *btcec.PublicKey) bool {
	var r, s btcec.ModNScalar
	if r.SetByteSlice(sig[:32]) || s.SetByteSlice(sig[32:]) {
		return false
	}
	if r.IsZero() || s.IsZero() || s.IsOverHalfOrder() {
		return false
	}

	return ecdsa.NewSignature(&r, &s).Verify(hash, pubKey)
}

// decodeBase64 accepts standard and URL alphabets, padded or not
func decodeBase64(s string) ([]byte, error) {
	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
