// Package flags holds the command line flag categories and app scaffolding
// shared by the cgift commands.
package flags

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/cgift-network/cgift/params"
)

const (
	GiftCategory    = "GIFT"
	AccountCategory = "ACCOUNT"
	APICategory     = "API"
	LoggingCategory = "LOGGING AND DEBUGGING"
	MiscCategory    = "MISC"
)

func init() {
	cli.HelpFlag.(*cli.BoolFlag).Category = MiscCategory
	cli.VersionFlag.(*cli.BoolFlag).Category = MiscCategory
}

// NewApp creates an app with sane defaults.
func NewApp(gitCommit, gitDate, usage string) *cli.App {
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = params.VersionWithCommit(gitCommit, gitDate)
	app.Usage = usage
	app.Copyright = "Copyright 2025-2026 The cgift Authors"
	app.Name = filepath.Base(os.Args[0])
	return app
}
