package main

import (
	"os"

	"github.com/layer-3/sigil/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sigil",
	Short: "Wallet challenge-response authentication service",
	Long: `sigil issues time-bound login challenges and verifies wallet
signatures over them, for Cosmos (ADR-36 amino) and Ethereum
(personal_sign) accounts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./configs/sigil.yaml or ./sigil.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(challengeCmd)
	rootCmd.AddCommand(verifyCmd)
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	var logger *zap.Logger
	if cfg.Log.Development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}
