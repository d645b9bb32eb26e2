package main

import (
	"os"

	"github.com/common-fate/clio"
	"github.com/common-fate/clio/clierr"
	"github.com/joho/godotenv"
	"github.com/mhanyc/orgkit/cmd/command"
	"github.com/mhanyc/orgkit/cmd/command/sweep"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "orgkit",
		Usage: "account registry and naming tool for the multi-account AWS organization",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Enable verbose logging, effectively sets environment variable ORGKIT_LOG=DEBUG"},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("verbose") {
				os.Setenv("ORGKIT_LOG", "DEBUG")
			}
			clio.SetLevelFromEnv("ORGKIT_LOG")
			return nil
		},
		Commands: []*cli.Command{
			&command.Init,
			&command.Accounts,
			&command.Names,
			&sweep.Command,
		},
	}

	if err := app.Run(os.Args); err != nil {
		if cliError, ok := err.(clierr.PrintCLIErrorer); ok {
			cliError.PrintCLIError()
		} else {
			clio.Error(err)
		}
		os.Exit(1)
	}
}
