package withdraw

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/bridge-withdraw/internal/bridge/chain"
	"github/chapool/bridge-withdraw/internal/bridge/signer"
	flow "github/chapool/bridge-withdraw/internal/bridge/withdraw"
	"github/chapool/bridge-withdraw/internal/config"
)

// New returns the withdraw subcommand.
func New() *cobra.Command {
	var (
		recipient string
		from      string
		path      string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraws an account's full balance to a layer-1 address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), from, path, recipient, dryRun)
		},
	}

	cmd.Flags().StringVar(&recipient, "recipient", "", "bech32 layer-1 destination address")
	cmd.Flags().StringVar(&from, "from", "", "layer-2 account to drain (hex); derived from the signer when empty")
	cmd.Flags().StringVar(&path, "path", "m/44'/60'/0'/0/0", "BIP-44 derivation path of the signing key")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build and verify the transaction without broadcasting")
	_ = cmd.MarkFlagRequired("recipient")

	return cmd
}

func run(ctx context.Context, from, path, recipient string, dryRun bool) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	config.InitLogging(cfg)

	client, err := chain.Dial(cfg.RPCURLs)
	if err != nil {
		return errors.Wrap(err, "failed to connect to chain RPC")
	}
	defer client.Close()

	signingService, err := signer.NewLocalSigner(cfg.Mnemonic, cfg.Passphrase)
	if err != nil {
		return errors.Wrap(err, "failed to initialize signer")
	}

	fromAddr, err := resolveFrom(ctx, signingService, from, cfg.CoinType)
	if err != nil {
		return err
	}

	svc, err := flow.NewService(client, signingService, flow.Options{
		ChainID:       big.NewInt(cfg.ChainID),
		BridgeAddress: common.HexToAddress(cfg.BridgeAddress),
		AddressPrefix: cfg.AddressPrefix,
		DecimalsGap:   cfg.DecimalsGap,
		CallTimeout:   cfg.CallTimeout,
		Policy:        cfg.Policy(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create withdrawal service")
	}

	req := &flow.Request{
		From:           fromAddr,
		DerivationPath: path,
		Recipient:      recipient,
	}

	if dryRun {
		_, result, err := svc.BuildSignedTx(ctx, req)
		if err != nil {
			return err
		}
		log.Info().
			Str("raw_tx", result.RawTxHex).
			Uint64("gas_limit", result.GasLimit).
			Str("base_tokens", result.BaseTokens.String()).
			Msg("Dry run: transaction built and verified, not broadcast")
		return nil
	}

	result, err := svc.WithdrawAll(ctx, req)
	if err != nil {
		return err
	}

	log.Info().
		Str("tx_hash", result.TxHash).
		Str("base_tokens", result.BaseTokens.String()).
		Msg("Withdrawal submitted")
	return nil
}

// resolveFrom uses the explicit --from address when given, otherwise the
// signer's first derived account address.
func resolveFrom(ctx context.Context, signingService signer.Signer, from string, coinType uint32) (common.Address, error) {
	if from != "" {
		if !common.IsHexAddress(from) {
			return common.Address{}, errors.Errorf("invalid from address %q", from)
		}
		return common.HexToAddress(from), nil
	}

	addrs, err := signingService.GenerateAddresses(ctx, coinType, 0, 1)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to derive account address")
	}
	return addrs[0], nil
}
