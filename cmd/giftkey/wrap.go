package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cgift-network/cgift/cmd/utils"
	"github.com/cgift-network/cgift/giftflow"
	"github.com/cgift-network/cgift/internal/flags"
)

var (
	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "token amount as a decimal string, e.g. 0.5",
		Category: flags.GiftCategory,
	}
	resumeFlag = &cli.BoolFlag{
		Name:     "resume",
		Usage:    "finish an unwrap that was interrupted after prepare",
		Category: flags.GiftCategory,
	}
	decryptBalanceFlag = &cli.BoolFlag{
		Name:     "decrypt",
		Usage:    "decrypt the balance instead of printing the handle",
		Category: flags.GiftCategory,
	}
)

type wrapOutput struct {
	Amount    string `json:"amount"`
	AmountWei string `json:"amountWei"`
	TxHash    string `json:"txHash"`
}

var commandWrap = &cli.Command{
	Name:      "wrap",
	Usage:     "deposit native value into confidential balance",
	ArgsUsage: "<keyfile>",
	Description: `
Deposit native value and receive the same value as confidential balance.

Example:
    giftkey wrap --amount 1.0 /path/to/keyfile.json
`,
	Flags: []cli.Flag{
		passphraseFlag,
		jsonFlag,
		amountFlag,
		rpcURLFlag,
		relayerURLFlag,
		contractFlag,
		verifierFlag,
		gatewayChainIDFlag,
		dataDirFlag,
	},
	Action: func(ctx *cli.Context) error {
		session, cleanup := makeSession(ctx)
		defer cleanup()

		res, err := session.Wrap(context.Background(), ctx.String(amountFlag.Name))
		if err != nil {
			utils.Fatalf("Wrap failed: %v", err)
		}
		out := wrapOutput{
			Amount:    ctx.String(amountFlag.Name),
			AmountWei: res.AmountWei.String(),
			TxHash:    res.TxHash.Hex(),
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Printf("Wrapped %s (tx %s)\n", out.Amount, out.TxHash)
		}
		return nil
	},
}

type unwrapOutput struct {
	Amount string `json:"amount"`
	Minor  uint64 `json:"minor"`
	TxHash string `json:"txHash"`
}

var commandUnwrap = &cli.Command{
	Name:      "unwrap",
	Usage:     "redeem confidential balance back to native value",
	ArgsUsage: "<keyfile>",
	Description: `
Redeem confidential balance back to native value. The pipeline runs in
three phases: commit the amount, publicly decrypt it, then finalize with
the cleartext and proof. If a run dies between commit and finalize, rerun
with --resume to finish it without committing again.

Example:
    giftkey unwrap --amount 0.3 /path/to/keyfile.json
`,
	Flags: []cli.Flag{
		passphraseFlag,
		jsonFlag,
		amountFlag,
		resumeFlag,
		rpcURLFlag,
		relayerURLFlag,
		contractFlag,
		verifierFlag,
		gatewayChainIDFlag,
		dataDirFlag,
	},
	Action: func(ctx *cli.Context) error {
		session, cleanup := makeSession(ctx)
		defer cleanup()

		var (
			res *giftflow.UnwrapResult
			err error
		)
		if ctx.Bool(resumeFlag.Name) {
			res, err = session.ResumeUnwrap(context.Background())
			if errors.Is(err, giftflow.ErrNoPendingUnwrap) {
				utils.Fatalf("No interrupted unwrap to resume")
			}
		} else {
			res, err = session.Unwrap(context.Background(), ctx.String(amountFlag.Name))
		}
		if err != nil {
			utils.Fatalf("Unwrap failed: %v", err)
		}
		out := unwrapOutput{Amount: res.Amount, Minor: res.Minor, TxHash: res.TxHash.Hex()}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Printf("Unwrapped %s (tx %s)\n", out.Amount, out.TxHash)
		}
		return nil
	},
}

type balanceOutput struct {
	Address string `json:"address"`
	Handle  string `json:"handle,omitempty"`
	Balance string `json:"balance,omitempty"`
}

var commandBalance = &cli.Command{
	Name:      "balance",
	Usage:     "show the confidential balance",
	ArgsUsage: "<keyfile>",
	Description: `
Print the confidential balance handle, or with --decrypt resolve it to a
cleartext amount. Decryption asks the decryption service for the value and
needs the relayer to be reachable.

Example:
    giftkey balance --decrypt /path/to/keyfile.json
`,
	Flags: []cli.Flag{
		passphraseFlag,
		jsonFlag,
		decryptBalanceFlag,
		rpcURLFlag,
		relayerURLFlag,
		contractFlag,
		verifierFlag,
		gatewayChainIDFlag,
		dataDirFlag,
	},
	Action: func(ctx *cli.Context) error {
		session, cleanup := makeSession(ctx)
		defer cleanup()

		out := balanceOutput{Address: session.Account().Hex()}
		if ctx.Bool(decryptBalanceFlag.Name) {
			balance, err := session.DecryptBalance(context.Background())
			if err != nil {
				utils.Fatalf("Balance decryption failed: %v", err)
			}
			out.Balance = balance
		} else {
			handle, err := session.ConfidentialBalance(context.Background())
			if err != nil {
				utils.Fatalf("Balance query failed: %v", err)
			}
			out.Handle = handle.Hex()
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else if out.Balance != "" {
			fmt.Printf("Balance: %s\n", out.Balance)
		} else {
			fmt.Printf("Balance handle: %s\n", out.Handle)
		}
		return nil
	},
}
