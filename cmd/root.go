package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/bridge-withdraw/cmd/env"
	"github/chapool/bridge-withdraw/cmd/withdraw"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bridge-withdraw",
	Short: "layer-2 to layer-1 bridge withdrawal tool",
	Long: `bridge-withdraw builds, signs and broadcasts transactions that move an
account's entire spendable balance through the chain's bridge contract
to a layer-1 address. Requires configuration through ENV.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// attach the subcommands
	rootCmd.AddCommand(
		env.New(),
		withdraw.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
