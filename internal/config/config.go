// Package config loads service configuration from the environment.
package config

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github/chapool/bridge-withdraw/internal/bridge/reconcile"
)

// Policy names accepted by ReconcilePolicy.
const (
	PolicyCompat   = "compat"
	PolicyConverge = "converge"
)

// Config is the full service configuration, populated from BRIDGE_* env vars.
type Config struct {
	RPCURLs         []string
	ChainID         int64
	BridgeAddress   string
	AddressPrefix   string
	DecimalsGap     uint
	CallTimeout     time.Duration
	ReconcilePolicy string
	MaxRounds       int
	GasTolerance    uint64
	CoinType        uint32
	Mnemonic        string
	Passphrase      string
	LogLevel        string
	LogPretty       bool
}

// FromEnv loads and validates the configuration from the environment.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("bridge")
	v.AutomaticEnv()

	v.SetDefault("rpc_urls", "https://json-rpc.evm.testnet.shimmer.network")
	v.SetDefault("chain_id", 1073)
	v.SetDefault("bridge_address", "0x1074000000000000000000000000000000000000")
	v.SetDefault("address_prefix", "rms")
	v.SetDefault("decimals_gap", 12)
	v.SetDefault("call_timeout", "15s")
	v.SetDefault("reconcile_policy", PolicyCompat)
	v.SetDefault("max_rounds", 3)
	v.SetDefault("gas_tolerance", 0)
	v.SetDefault("coin_type", 60)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	cfg := &Config{
		RPCURLs:         splitList(v.GetString("rpc_urls")),
		ChainID:         v.GetInt64("chain_id"),
		BridgeAddress:   v.GetString("bridge_address"),
		AddressPrefix:   v.GetString("address_prefix"),
		DecimalsGap:     v.GetUint("decimals_gap"),
		CallTimeout:     v.GetDuration("call_timeout"),
		ReconcilePolicy: v.GetString("reconcile_policy"),
		MaxRounds:       v.GetInt("max_rounds"),
		GasTolerance:    v.GetUint64("gas_tolerance"),
		CoinType:        v.GetUint32("coin_type"),
		Mnemonic:        v.GetString("mnemonic"),
		Passphrase:      v.GetString("passphrase"),
		LogLevel:        v.GetString("log_level"),
		LogPretty:       v.GetBool("log_pretty"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.RPCURLs) == 0 {
		return errors.New("at least one RPC URL is required")
	}
	if c.ChainID <= 0 {
		return errors.Errorf("invalid chain id %d", c.ChainID)
	}
	if !common.IsHexAddress(c.BridgeAddress) {
		return errors.Errorf("invalid bridge contract address %q", c.BridgeAddress)
	}
	if c.AddressPrefix == "" {
		return errors.New("address prefix is required")
	}
	if c.CallTimeout <= 0 {
		return errors.New("call timeout must be positive")
	}
	if c.MaxRounds < 1 {
		return errors.New("max rounds must be at least 1")
	}
	if c.ReconcilePolicy != PolicyCompat && c.ReconcilePolicy != PolicyConverge {
		return errors.Errorf("unknown reconcile policy %q", c.ReconcilePolicy)
	}
	return nil
}

// Policy returns the reconciliation policy selected by the configuration.
func (c *Config) Policy() reconcile.Policy {
	if c.ReconcilePolicy == PolicyConverge {
		return reconcile.ConvergentPolicy(c.MaxRounds, c.GasTolerance)
	}
	return reconcile.CompatibilityPolicy()
}

// Masked returns a copy safe for printing, with secrets redacted.
func (c Config) Masked() Config {
	if c.Mnemonic != "" {
		c.Mnemonic = "[redacted]"
	}
	if c.Passphrase != "" {
		c.Passphrase = "[redacted]"
	}
	return c
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
