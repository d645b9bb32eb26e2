package command

import (
	"fmt"

	"github.com/common-fate/clio"
	"github.com/joho/godotenv"
	"github.com/mhanyc/orgkit/pkg/naming"
	"github.com/mhanyc/orgkit/pkg/projectconfig"
	"github.com/urfave/cli/v2"
)

var Names = cli.Command{
	Name:  "names",
	Usage: "print the resource names derived from the project identity",
	Flags: []cli.Flag{
		&cli.PathFlag{Name: "config", Value: projectconfig.DefaultFile, Usage: "path to orgkit.toml"},
		&cli.StringFlag{Name: "format", Value: "env", Usage: "output format: env or json"},
		&cli.BoolFlag{Name: "write", Usage: "write the names as a dotenv file instead of printing"},
		&cli.PathFlag{Name: "env-file", Value: ".env.orgkit", Usage: "dotenv file path used with --write"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := projectconfig.LoadFile(c.Path("config"))
		if err != nil {
			return err
		}

		project, err := cfg.Identity()
		if err != nil {
			return err
		}

		names, err := naming.Derive(project)
		if err != nil {
			return err
		}

		if c.Bool("write") {
			envFile := c.Path("env-file")
			err = godotenv.Write(names.Env(), envFile)
			if err != nil {
				return err
			}
			clio.Successf("wrote derived names to %s", envFile)
			return nil
		}

		switch c.String("format") {
		case "env":
			fmt.Print(names.Render())
		case "json":
			out, err := names.JSON()
			if err != nil {
				return err
			}
			fmt.Println(out)
		default:
			return fmt.Errorf("unknown format %q: expected env or json", c.String("format"))
		}
		return nil
	},
}
