package env

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/bridge-withdraw/internal/config"
)

// New returns the env subcommand, which prints the resolved configuration
// with secrets redacted.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the resolved configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return errors.Wrap(err, "failed to load configuration")
			}

			out, err := json.MarshalIndent(cfg.Masked(), "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to marshal configuration")
			}

			fmt.Println(string(out))
			return nil
		},
	}
}
