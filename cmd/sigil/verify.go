package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/layer-3/sigil/adapters/verifier"
	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/service"
	"github.com/spf13/cobra"
)

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Print a fresh login challenge as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		challenge, err := service.NewChallengeIssuer(nil, nil).Issue()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(challenge)
	},
}

var verifyFlags struct {
	message   string
	signature string
	publicKey string
	signer    string
	chainType string
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a signed challenge offline",
	Long: `Verify a signed challenge using the same rules as POST /auth/verify.
Exits with status 1 when verification fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		authService := service.NewAuthService(
			verifier.NewCosmosVerifier(logger),
			verifier.NewEthereumVerifier(logger, cfg.Auth.Ethereum.LenientRecovery),
			logger,
		)
		authService.SetChallengeTTL(cfg.Auth.ChallengeTTL)

		result := authService.Verify(context.Background(), core.VerificationRequest{
			Message:   verifyFlags.message,
			Signature: verifyFlags.signature,
			PublicKey: verifyFlags.publicKey,
			Signer:    verifyFlags.signer,
			ChainType: core.ParseChainType(verifyFlags.chainType),
		})

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}

		if !result.Success {
			fmt.Fprintln(cmd.ErrOrStderr(), result.Message)
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&verifyFlags.message, "message", "", "signed challenge message")
	f.StringVar(&verifyFlags.signature, "signature", "", "signature (base64 for Cosmos, hex for Ethereum)")
	f.StringVar(&verifyFlags.publicKey, "public-key", "", "base64 public key (Cosmos) or address (Ethereum)")
	f.StringVar(&verifyFlags.signer, "signer", "", "bech32 or 0x signer address")
	f.StringVar(&verifyFlags.chainType, "chain-type", "", `chain namespace; "eip155" selects Ethereum`)
}
