package main

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/urfave/cli/v2"

	"github.com/cgift-network/cgift/cmd/utils"
	"github.com/cgift-network/cgift/fhe"
	"github.com/cgift-network/cgift/giftclient"
	"github.com/cgift-network/cgift/giftdb"
	"github.com/cgift-network/cgift/giftflow"
)

// makeSession assembles a gift session from the keyfile given as the first
// command argument and the resolved configuration. The returned cleanup
// must run before exit to release the contents database.
func makeSession(ctx *cli.Context) (*giftflow.Session, func()) {
	keyfilepath := ctx.Args().First()
	if keyfilepath == "" {
		utils.Fatalf("Usage: %s %s <keyfile>", app.Name, ctx.Command.Name)
	}
	keyjson, err := os.ReadFile(keyfilepath)
	if err != nil {
		utils.Fatalf("Failed to read keyfile '%s': %v", keyfilepath, err)
	}
	passphrase := getPassphrase(ctx, false)
	key, err := keystore.DecryptKey(keyjson, passphrase)
	if err != nil {
		utils.Fatalf("Error decrypting key: %v", err)
	}

	cfg := loadConfig(ctx)
	backend, err := giftclient.NewRPCBackend(context.Background(), cfg.RPCURL, key.PrivateKey)
	if err != nil {
		utils.Fatalf("Failed to connect to ledger RPC: %v", err)
	}
	relayer := fhe.NewRelayerClient(cfg.RelayerURL)
	negotiator := fhe.NewNegotiator(
		fhe.NewPrivateKeySigner(key.PrivateKey),
		new(big.Int).SetUint64(cfg.GatewayChainID),
		cfg.verifierAddress(),
	)

	store, err := giftdb.NewLevelStore(filepath.Join(cfg.DataDir, "giftdb"))
	if err != nil {
		utils.Fatalf("Failed to open contents database: %v", err)
	}
	tracker := filepath.Join(cfg.DataDir,
		"tracker-"+strings.ToLower(key.Address.Hex())+".json")

	session, err := giftflow.NewSession(giftflow.Config{
		Client:      giftclient.New(cfg.contractAddress(), backend),
		Encryptor:   relayer,
		Decryptor:   relayer,
		Negotiator:  negotiator,
		Store:       store,
		TrackerPath: tracker,
	})
	if err != nil {
		utils.Fatalf("Failed to build session: %v", err)
	}
	return session, func() { store.Close() }
}
