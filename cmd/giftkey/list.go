package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/cgift-network/cgift/cmd/utils"
	"github.com/cgift-network/cgift/giftindex"
	"github.com/cgift-network/cgift/internal/flags"
)

var (
	sentFlag = &cli.BoolFlag{
		Name:     "sent",
		Usage:    "list only sent gifts",
		Category: flags.GiftCategory,
	}
	receivedFlag = &cli.BoolFlag{
		Name:     "received",
		Usage:    "list only received gifts",
		Category: flags.GiftCategory,
	}
)

type listEntryOutput struct {
	GiftID     uint64 `json:"giftId"`
	Direction  string `json:"direction"`
	Sender     string `json:"sender"`
	Recipient  string `json:"recipient"`
	UnlockTime uint64 `json:"unlockTime"`
	Status     string `json:"status"`
}

var commandList = &cli.Command{
	Name:      "list",
	Usage:     "list sent and received gifts",
	ArgsUsage: "<keyfile>",
	Description: `
List this account's gifts, most recent first, with a status derived from
ledger state: locked, ready, claimable, opened or claimed. Only public
fields are shown; amounts and messages stay encrypted.

Example:
    giftkey list --received keyfile.json
`,
	Flags: sessionFlags(sentFlag, receivedFlag),
	Action: func(ctx *cli.Context) error {
		session, cleanup := makeSession(ctx)
		defer cleanup()

		index, err := giftindex.New(session.Client())
		if err != nil {
			utils.Fatalf("Failed to build gift index: %v", err)
		}
		account := session.Account()
		wantSent := ctx.Bool(sentFlag.Name) || !ctx.Bool(receivedFlag.Name)
		wantReceived := ctx.Bool(receivedFlag.Name) || !ctx.Bool(sentFlag.Name)

		var out []listEntryOutput
		if wantSent {
			entries, err := index.Sent(context.Background(), account)
			if err != nil {
				utils.Fatalf("Failed to list sent gifts: %v", err)
			}
			for _, e := range entries {
				out = append(out, toListOutput(e, "sent"))
			}
		}
		if wantReceived {
			entries, err := index.Received(context.Background(), account)
			if err != nil {
				utils.Fatalf("Failed to list received gifts: %v", err)
			}
			for _, e := range entries {
				out = append(out, toListOutput(e, "received"))
			}
		}

		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
			return nil
		}
		if len(out) == 0 {
			fmt.Println("No gifts")
			return nil
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Direction", "Sender", "Recipient", "Unlocks", "Status"})
		for _, e := range out {
			table.Append([]string{
				fmt.Sprintf("%d", e.GiftID),
				e.Direction,
				e.Sender,
				e.Recipient,
				time.Unix(int64(e.UnlockTime), 0).Format(time.RFC3339),
				e.Status,
			})
		}
		table.Render()
		return nil
	},
}

func toListOutput(e giftindex.Entry, direction string) listEntryOutput {
	return listEntryOutput{
		GiftID:     e.ID,
		Direction:  direction,
		Sender:     e.Sender.Hex(),
		Recipient:  e.Recipient.Hex(),
		UnlockTime: e.UnlockTime,
		Status:     e.Status.String(),
	}
}
