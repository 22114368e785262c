package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/cgift-network/cgift/cmd/utils"
	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/giftflow"
	"github.com/cgift-network/cgift/internal/flags"
)

var (
	toFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "recipient address",
		Category: flags.GiftCategory,
	}
	messageFlag = &cli.StringFlag{
		Name:     "message",
		Usage:    "personal message to encrypt alongside the amount (truncated to 93 bytes of UTF-8)",
		Category: flags.GiftCategory,
	}
	unlockFlag = &cli.Uint64Flag{
		Name:     "unlock",
		Usage:    "unlock time as a unix timestamp",
		Category: flags.GiftCategory,
	}
	unlockInFlag = &cli.DurationFlag{
		Name:     "unlock-in",
		Usage:    "unlock delay from now, e.g. 24h (alternative to --unlock)",
		Category: flags.GiftCategory,
	}
	idFlag = &cli.Uint64Flag{
		Name:     "id",
		Usage:    "gift id",
		Category: flags.GiftCategory,
	}
	amountOnlyFlag = &cli.BoolFlag{
		Name:     "amount-only",
		Usage:    "decrypt only the amount, leave the message encrypted",
		Category: flags.GiftCategory,
	}
	forceClaimFlag = &cli.BoolFlag{
		Name:     "force",
		Usage:    "claim even when the amount has not been decrypted locally",
		Category: flags.GiftCategory,
	}
)

func sessionFlags(extra ...cli.Flag) []cli.Flag {
	base := []cli.Flag{
		passphraseFlag,
		jsonFlag,
		rpcURLFlag,
		relayerURLFlag,
		contractFlag,
		verifierFlag,
		gatewayChainIDFlag,
		dataDirFlag,
	}
	return append(extra, base...)
}

type sendOutput struct {
	GiftID     uint64 `json:"giftId"`
	Recipient  string `json:"recipient"`
	UnlockTime uint64 `json:"unlockTime"`
}

var commandSend = &cli.Command{
	Name:      "send",
	Usage:     "create a time-locked confidential gift",
	ArgsUsage: "<keyfile>",
	Description: `
Encrypt an amount and a personal message into a gift for the recipient.
Neither the amount nor the message is visible on-chain; the recipient can
open the gift once the unlock time passes.

Example:
    giftkey send --to 0x... --amount 0.5 --message "Happy Birthday!" --unlock-in 24h keyfile.json
`,
	Flags: sessionFlags(toFlag, amountFlag, messageFlag, unlockFlag, unlockInFlag),
	Action: func(ctx *cli.Context) error {
		session, cleanup := makeSession(ctx)
		defer cleanup()

		raw := strings.TrimSpace(ctx.String(toFlag.Name))
		if !common.IsHexAddress(raw) {
			utils.Fatalf("Invalid --to address: %q", raw)
		}
		recipient := common.HexToAddress(raw)

		unlock := ctx.Uint64(unlockFlag.Name)
		if ctx.IsSet(unlockInFlag.Name) {
			if ctx.IsSet(unlockFlag.Name) {
				utils.Fatalf("--unlock and --unlock-in are mutually exclusive")
			}
			unlock = uint64(time.Now().Add(ctx.Duration(unlockInFlag.Name)).Unix())
		}

		id, err := session.CreateGift(context.Background(), recipient,
			ctx.String(amountFlag.Name), ctx.String(messageFlag.Name), unlock)
		if err != nil {
			utils.Fatalf("Gift creation failed: %v", err)
		}
		out := sendOutput{GiftID: id, Recipient: recipient.Hex(), UnlockTime: unlock}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Printf("Gift %d sent to %s, unlocks at %s\n",
				out.GiftID, out.Recipient, time.Unix(int64(unlock), 0).Format(time.RFC3339))
		}
		return nil
	},
}

type openOutput struct {
	GiftID         uint64   `json:"giftId"`
	AmountHandle   string   `json:"amountHandle"`
	MessageHandles []string `json:"messageHandles"`
}

var commandOpen = &cli.Command{
	Name:      "open",
	Usage:     "open a received gift after its unlock time",
	ArgsUsage: "<keyfile>",
	Description: `
Open a gift addressed to this key. Opening grants this account decryption
access to the gift's ciphertext handles; it does not move any value.

Example:
    giftkey open --id 3 keyfile.json
`,
	Flags: sessionFlags(idFlag),
	Action: func(ctx *cli.Context) error {
		session, cleanup := makeSession(ctx)
		defer cleanup()

		id := ctx.Uint64(idFlag.Name)
		handles, err := session.OpenGift(context.Background(), id)
		if err != nil {
			if errors.Is(err, gift.ErrGiftLocked) {
				reportLocked(session, id)
			}
			utils.Fatalf("Open failed: %v", err)
		}
		out := openOutput{GiftID: id, AmountHandle: handles.Amount.Hex()}
		for _, h := range handles.Message {
			out.MessageHandles = append(out.MessageHandles, h.Hex())
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Printf("Gift %d opened; decrypt it with: giftkey decrypt --id %d\n", id, id)
		}
		return nil
	},
}

func reportLocked(session *giftflow.Session, id uint64) {
	remaining, err := session.Client().TimeUntilUnlock(context.Background(), id)
	if err != nil {
		return
	}
	fmt.Printf("Gift %d unlocks in %s\n", id, time.Duration(remaining)*time.Second)
}

type decryptOutput struct {
	GiftID         uint64 `json:"giftId"`
	Amount         string `json:"amount,omitempty"`
	AmountSettled  bool   `json:"amountSettled"`
	Message        string `json:"message,omitempty"`
	MessageSettled bool   `json:"messageSettled"`
}

var commandDecrypt = &cli.Command{
	Name:      "decrypt",
	Usage:     "decrypt the contents of an opened gift",
	ArgsUsage: "<keyfile>",
	Description: `
Resolve the cleartext amount and message of an opened gift. The two values
settle independently: if only one resolves, the settled half is cached and
a rerun requests just the missing one. No transaction is submitted.

Example:
    giftkey decrypt --id 3 keyfile.json
`,
	Flags: sessionFlags(idFlag, amountOnlyFlag),
	Action: func(ctx *cli.Context) error {
		session, cleanup := makeSession(ctx)
		defer cleanup()

		id := ctx.Uint64(idFlag.Name)
		contents, err := session.DecryptGift(context.Background(), id, giftflow.DecryptOptions{
			AmountOnly: ctx.Bool(amountOnlyFlag.Name),
		})
		if err != nil && contents == nil {
			utils.Fatalf("Decryption failed: %v", err)
		}
		out := decryptOutput{
			GiftID:         id,
			Amount:         contents.Amount,
			AmountSettled:  contents.AmountSettled,
			Message:        contents.Message,
			MessageSettled: contents.MessageSettled,
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			if contents.AmountSettled {
				fmt.Printf("Amount:  %s\n", contents.Amount)
			}
			if contents.MessageSettled {
				fmt.Printf("Message: %s\n", contents.Message)
			}
		}
		if err != nil {
			utils.Fatalf("Decryption incomplete: %v (rerun to request the missing part)", err)
		}
		return nil
	},
}

type claimOutput struct {
	GiftID  uint64 `json:"giftId"`
	Claimed bool   `json:"claimed"`
}

var commandClaim = &cli.Command{
	Name:      "claim",
	Usage:     "move an opened gift's amount into the confidential balance",
	ArgsUsage: "<keyfile>",
	Description: `
Claim an opened gift: the encrypted amount moves into this account's
confidential balance. By default the gift must have been decrypted first,
so you never claim a value you cannot read; --force skips that check.

Example:
    giftkey claim --id 3 keyfile.json
`,
	Flags: sessionFlags(idFlag, forceClaimFlag),
	Action: func(ctx *cli.Context) error {
		session, cleanup := makeSession(ctx)
		defer cleanup()

		id := ctx.Uint64(idFlag.Name)
		err := session.ClaimGift(context.Background(), id, ctx.Bool(forceClaimFlag.Name))
		if err != nil {
			if errors.Is(err, giftflow.ErrAmountNotDecrypted) {
				utils.Fatalf("Gift %d has not been decrypted; run 'giftkey decrypt --id %d' first or pass --force", id, id)
			}
			utils.Fatalf("Claim failed: %v", err)
		}
		out := claimOutput{GiftID: id, Claimed: true}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Printf("Gift %d claimed\n", id)
		}
		return nil
	},
}
