package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/cgift-network/cgift/cmd/utils"
	"github.com/cgift-network/cgift/internal/flags"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
	rpcURLFlag = &cli.StringFlag{
		Name:     "rpc",
		Usage:    "ledger JSON-RPC endpoint URL",
		Category: flags.APICategory,
	}
	relayerURLFlag = &cli.StringFlag{
		Name:     "relayer",
		Usage:    "encryption relayer endpoint URL",
		Category: flags.APICategory,
	}
	contractFlag = &cli.StringFlag{
		Name:     "contract",
		Usage:    "gift token contract address",
		Category: flags.GiftCategory,
	}
	verifierFlag = &cli.StringFlag{
		Name:     "verifier",
		Usage:    "decryption verifier contract address (EIP-712 grant domain)",
		Category: flags.GiftCategory,
	}
	gatewayChainIDFlag = &cli.Uint64Flag{
		Name:     "gateway-chainid",
		Usage:    "chain id of the decryption gateway (EIP-712 grant domain)",
		Category: flags.GiftCategory,
	}
	dataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "directory for the contents cache and flow tracker",
		Category: flags.GiftCategory,
	}
)

type giftkeyConfig struct {
	RPCURL             string
	RelayerURL         string
	Contract           string
	DecryptionVerifier string
	GatewayChainID     uint64
	DataDir            string
}

func defaultConfig() giftkeyConfig {
	home, _ := os.UserHomeDir()
	return giftkeyConfig{
		RPCURL:         "http://127.0.0.1:8545",
		RelayerURL:     "http://127.0.0.1:8547",
		GatewayChainID: 55815,
		DataDir:        filepath.Join(home, ".giftkey"),
	}
}

// These settings ensure that TOML keys use the same names as Go struct
// fields, and that mistyped keys are rejected with a helpful message.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		if unicode.IsUpper(rune(field[0])) {
			return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
		}
		return nil
	},
}

func loadTOML(file string, cfg *giftkeyConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if err != nil {
		return fmt.Errorf("%s: %v", file, err)
	}
	return nil
}

// loadConfig resolves the effective configuration: defaults, then the
// config file when given, then flag overrides.
func loadConfig(ctx *cli.Context) giftkeyConfig {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadTOML(file, &cfg); err != nil {
			utils.Fatalf("Failed to load config file: %v", err)
		}
	}
	if ctx.IsSet(rpcURLFlag.Name) {
		cfg.RPCURL = ctx.String(rpcURLFlag.Name)
	}
	if ctx.IsSet(relayerURLFlag.Name) {
		cfg.RelayerURL = ctx.String(relayerURLFlag.Name)
	}
	if ctx.IsSet(contractFlag.Name) {
		cfg.Contract = ctx.String(contractFlag.Name)
	}
	if ctx.IsSet(verifierFlag.Name) {
		cfg.DecryptionVerifier = ctx.String(verifierFlag.Name)
	}
	if ctx.IsSet(gatewayChainIDFlag.Name) {
		cfg.GatewayChainID = ctx.Uint64(gatewayChainIDFlag.Name)
	}
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.String(dataDirFlag.Name)
	}
	return cfg
}

func (cfg giftkeyConfig) contractAddress() common.Address {
	if !common.IsHexAddress(cfg.Contract) {
		utils.Fatalf("Invalid gift token contract address %q (set Contract in the config file or pass --contract)", cfg.Contract)
	}
	return common.HexToAddress(cfg.Contract)
}

func (cfg giftkeyConfig) verifierAddress() common.Address {
	if cfg.DecryptionVerifier == "" {
		// The grant domain defaults to the token contract itself.
		return cfg.contractAddress()
	}
	if !common.IsHexAddress(cfg.DecryptionVerifier) {
		utils.Fatalf("Invalid decryption verifier address %q", cfg.DecryptionVerifier)
	}
	return common.HexToAddress(cfg.DecryptionVerifier)
}
