package verifier

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/ports"
	"go.uber.org/zap"
)

const (
	// personalMessagePrefix is prepended by wallets implementing personal_sign
	personalMessagePrefix = "\x19Ethereum Signed Message:\n"

	// EthereumSignatureLength is r (32) || s (32) || v (1)
	EthereumSignatureLength = 65
)

// EthereumVerifier verifies personal_sign signatures by recovering the signer address
type EthereumVerifier struct {
	logger  *zap.Logger
	lenient bool
}

// NewEthereumVerifier creates a new personal_sign verifier.
// When lenient is set a signature that recovers to any address is accepted even if
// that address differs from the claimed signer.
func NewEthereumVerifier(logger *zap.Logger, lenient bool) ports.SignatureVerifier {
	return &EthereumVerifier{
		logger:  logger,
		lenient: lenient,
	}
}

// Verify checks that req.Signature is a personal_sign signature over req.Message by req.Signer
func (v *EthereumVerifier) Verify(ctx context.Context, req core.VerificationRequest) (string, error) {
	expected, err := NormalizeEthereumAddress(req.Signer)
	if err != nil {
		return "", err
	}

	// The dashboard sends the wallet address in the public key slot for EVM chains
	if common.IsHexAddress(req.PublicKey) {
		claimed, _ := NormalizeEthereumAddress(req.PublicKey)
		if claimed != expected {
			return "", fmt.Errorf("public key %s differs from signer %s: %w", claimed, expected, core.ErrSignatureMismatch)
		}
	}

	sig, err := DecodeEthereumSignature(req.Signature)
	if err != nil {
		return "", err
	}

	hash := PersonalMessageHash(req.Message)
	for _, recID := range RecoveryIDs(sig[64]) {
		address, err := recoverAddress(hash, sig, recID)
		if err != nil {
			continue
		}
		if address == expected {
			return address, nil
		}
	}

	recovered, err := v.RecoverAddress(req.Message, req.Signature)
	if err == nil {
		if v.lenient {
			v.logger.Warn("address mismatch accepted by lenient recovery",
				zap.String("expected", expected),
				zap.String("recovered", recovered),
			)
			return recovered, nil
		}
		v.logger.Debug("recovered address does not match signer",
			zap.String("expected", expected),
			zap.String("recovered", recovered),
		)
	}

	return "", fmt.Errorf("no recovery id yields %s: %w", expected, core.ErrSignatureMismatch)
}

// RecoverAddress returns the first address recoverable from signature without comparing it to anything
func (v *EthereumVerifier) RecoverAddress(message, signature string) (string, error) {
	sig, err := DecodeEthereumSignature(signature)
	if err != nil {
		return "", err
	}

	hash := PersonalMessageHash(message)
	var lastErr error
	for recID := byte(0); recID <= 1; recID++ {
		address, err := recoverAddress(hash, sig, recID)
		if err != nil {
			lastErr = err
			continue
		}
		return address, nil
	}

	return "", fmt.Errorf("failed to recover address: %w", lastErr)
}

// PersonalMessageHash hashes message the way a personal_sign wallet does.
// Literal "\n" sequences are unescaped first.
func PersonalMessageHash(message string) []byte {
	data := []byte(core.NormalizeMessage(message))
	prefix := personalMessagePrefix + strconv.Itoa(len(data))
	return crypto.Keccak256([]byte(prefix), data)
}

// RecoveryIDs lists the recovery ids worth trying for a given v byte, in order.
// Legacy (27/28), EIP-155 (35+) and raw (0/1) encodings are all covered.
func RecoveryIDs(v byte) []byte {
	candidates := make([]int, 0, 4)
	if v >= 27 {
		candidates = append(candidates, int(v)-27)
	}
	if v >= 35 {
		candidates = append(candidates, (int(v)-35)%2)
	}
	candidates = append(candidates, 0, 1)

	ids := make([]byte, 0, 2)
	seen := make(map[int]bool, 2)
	for _, id := range candidates {
		if id < 0 || id > 1 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, byte(id))
	}
	return ids
}

// DecodeEthereumSignature decodes a 0x-prefixed or bare hex signature of exactly 65 bytes
func DecodeEthereumSignature(signature string) ([]byte, error) {
	bare := strings.TrimPrefix(strings.TrimPrefix(signature, "0x"), "0X")
	sig, err := hexutil.Decode("0x" + bare)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", core.ErrMalformedInput)
	}
	if len(sig) != EthereumSignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes, got %d: %w", EthereumSignatureLength, len(sig), core.ErrInvalidSignatureLength)
	}

	return sig, nil
}

// NormalizeEthereumAddress validates a hex address and returns it lowercased with a 0x prefix
func NormalizeEthereumAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid ethereum address %q: %w", address, core.ErrMalformedInput)
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}

func recoverAddress(hash, sig []byte, recID byte) (string, error) {
	rsv := make([]byte, EthereumSignatureLength)
	copy(rsv, sig[:64])
	rsv[64] = recID

	pub, err := crypto.Ecrecover(hash, rsv)
	if err != nil {
		return "", err
	}

	// Drop the 0x04 uncompressed marker and keep the low 20 bytes of the key hash
	return "0x" + hex.EncodeToString(crypto.Keccak256(pub[1:])[12:]), nil
}
