// giftkey is a command line companion for the confidential gift token:
// wrapping and unwrapping value, sending time-locked encrypted gifts, and
// opening, decrypting and claiming received ones.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/console/prompt"
	"github.com/urfave/cli/v2"

	"github.com/cgift-network/cgift/cmd/utils"
	"github.com/cgift-network/cgift/internal/flags"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

var app *cli.App

func init() {
	app = flags.NewApp(gitCommit, gitDate, "a confidential gift token wallet")
	app.Commands = []*cli.Command{
		commandWrap,
		commandUnwrap,
		commandBalance,
		commandSend,
		commandOpen,
		commandDecrypt,
		commandClaim,
		commandList,
	}
	app.Flags = []cli.Flag{configFileFlag}
}

// Commonly used command line flags.
var (
	passphraseFlag = &cli.StringFlag{
		Name:     "passwordfile",
		Usage:    "the file that contains the password for the keyfile",
		Category: flags.AccountCategory,
	}
	jsonFlag = &cli.BoolFlag{
		Name:     "json",
		Usage:    "output JSON instead of human-readable format",
		Category: flags.MiscCategory,
	}
)

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getPassphrase obtains the keyfile passphrase, either from the file given
// by --passwordfile or interactively from the terminal.
func getPassphrase(ctx *cli.Context, confirmation bool) string {
	if path := ctx.String(passphraseFlag.Name); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			utils.Fatalf("Failed to read password file '%s': %v", path, err)
		}
		return strings.TrimRight(string(content), "\r\n")
	}
	password, err := prompt.Stdin.PromptPassword("Password: ")
	if err != nil {
		utils.Fatalf("Failed to read password: %v", err)
	}
	if confirmation {
		confirm, err := prompt.Stdin.PromptPassword("Repeat password: ")
		if err != nil {
			utils.Fatalf("Failed to read password confirmation: %v", err)
		}
		if password != confirm {
			utils.Fatalf("Passwords do not match")
		}
	}
	return password
}

// mustPrintJSON prints the JSON encoding of the given object and exits the
// program with an error message when the marshaling fails.
func mustPrintJSON(jsonObject interface{}) {
	str, err := json.MarshalIndent(jsonObject, "", "  ")
	if err != nil {
		utils.Fatalf("Failed to marshal JSON object: %v", err)
	}
	fmt.Println(string(str))
}
