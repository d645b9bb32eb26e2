package command

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/common-fate/clio"
	"github.com/common-fate/clio/clierr"
	"github.com/mhanyc/orgkit/pkg/projectconfig"
	"github.com/mhanyc/orgkit/pkg/registry"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

var Accounts = cli.Command{
	Name:  "accounts",
	Usage: "manage the environment → AWS account ID registry",
	Flags: []cli.Flag{
		&cli.PathFlag{Name: "config", Value: projectconfig.DefaultFile, Usage: "path to orgkit.toml"},
	},
	Subcommands: []*cli.Command{
		&accountsShow,
		&accountsSet,
		&accountsReplace,
		&accountsCheck,
		&accountsDetectManagement,
	},
}

func openRegistry(c *cli.Context) (afero.Fs, string, *registry.Snapshot, error) {
	cfg, err := projectconfig.LoadFile(c.Path("config"))
	if err != nil {
		return nil, "", nil, err
	}

	fsys := afero.NewOsFs()
	path := cfg.RegistryPath()
	snap, err := registry.Load(fsys, path)
	if err != nil {
		return nil, "", nil, err
	}
	return fsys, path, snap, nil
}

var accountsShow = cli.Command{
	Name:  "show",
	Usage: "print the account registry",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "env", Usage: "comma-separated environment allow-list, e.g. dev,prod"},
	},
	Action: func(c *cli.Context) error {
		_, _, snap, err := openRegistry(c)
		if err != nil {
			return err
		}

		accounts, err := snap.Filter(c.String("env"))
		if err != nil {
			return err
		}

		for _, env := range registry.Environments {
			id, ok := accounts[env]
			if !ok {
				continue
			}
			fmt.Printf("%-12s %s\n", env, id)
		}

		for env, old := range snap.Replaced {
			clio.Infow("replaced account", "environment", env, "old_account_id", old.OldAccountID, "old_status", old.OldStatus, "replaced_date", old.ReplacedDate, "reason", old.Reason)
		}
		return nil
	},
}

var accountsSet = cli.Command{
	Name:  "set",
	Usage: "bind an account ID to an environment",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "env", Required: true, Usage: "environment: management, dev, staging or prod"},
		&cli.StringFlag{Name: "account-id", Usage: "12-digit AWS account ID (prompted for when omitted)"},
	},
	Action: func(c *cli.Context) error {
		fsys, path, snap, err := openRegistry(c)
		if err != nil {
			return err
		}

		env := registry.Environment(c.String("env"))
		accountID := c.String("account-id")
		if accountID == "" {
			in := &survey.Input{Message: fmt.Sprintf("AWS account ID for %s:", env)}
			err = survey.AskOne(in, &accountID)
			if err != nil {
				return err
			}
		}

		if err := snap.Set(env, accountID); err != nil {
			return err
		}
		if err := registry.Save(fsys, path, snap); err != nil {
			return err
		}

		clio.Successf("bound %s to account %s", env, accountID)
		return nil
	},
}

var accountsReplace = cli.Command{
	Name:  "replace",
	Usage: "supersede an environment's account, archiving the old binding",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "env", Required: true, Usage: "environment: management, dev, staging or prod"},
		&cli.StringFlag{Name: "account-id", Required: true, Usage: "the new 12-digit AWS account ID"},
		&cli.StringFlag{Name: "reason", Required: true, Usage: "why the old account is being replaced"},
		&cli.StringFlag{Name: "status", Value: "replaced", Usage: "status of the old account, e.g. suspended or pending-close"},
		&cli.BoolFlag{Name: "confirm", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"},
	},
	Action: func(c *cli.Context) error {
		fsys, path, snap, err := openRegistry(c)
		if err != nil {
			return err
		}

		env := registry.Environment(c.String("env"))
		newID := c.String("account-id")

		if !c.Bool("confirm") {
			var ok bool
			prompt := &survey.Confirm{
				Message: fmt.Sprintf("Replace %s account %s with %s?", env, snap.Accounts[env], newID),
			}
			err = survey.AskOne(prompt, &ok)
			if err != nil {
				return err
			}
			if !ok {
				clio.Info("aborted")
				return nil
			}
		}

		if err := snap.Replace(env, newID, c.String("status"), c.String("reason"), time.Now()); err != nil {
			return err
		}
		if err := registry.Save(fsys, path, snap); err != nil {
			return err
		}

		clio.Successf("replaced %s: old account archived, now bound to %s", env, newID)
		return nil
	},
}

var accountsCheck = cli.Command{
	Name:  "check",
	Usage: "verify that dev, staging and prod all have bound accounts",
	Action: func(c *cli.Context) error {
		_, _, snap, err := openRegistry(c)
		if err != nil {
			return err
		}

		if err := snap.RequireComplete(); err != nil {
			if errors.Is(err, registry.ErrIncompleteRegistry) {
				e := clierr.New(err.Error())
				e.Messages = append(e.Messages, clierr.Infof("Bind the missing accounts with: 'orgkit accounts set --env <env> --account-id <id>'"))
				return e
			}
			return err
		}

		clio.Success("registry is complete")
		return nil
	},
}

var accountsDetectManagement = cli.Command{
	Name:  "detect-management",
	Usage: "resolve the management account from the current AWS credentials",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "save", Usage: "write the detected account into the registry"},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

		fsys, path, snap, err := openRegistry(c)
		if err != nil {
			return err
		}

		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return err
		}

		id, err := registry.DetectManagementAccount(ctx, cfg)
		if err != nil {
			return err
		}
		clio.Infof("management account: %s", id)

		if !c.Bool("save") {
			return nil
		}
		if err := snap.Set(registry.Management, id); err != nil {
			return err
		}
		if err := registry.Save(fsys, path, snap); err != nil {
			return err
		}
		clio.Successf("saved management account to %s", path)
		return nil
	},
}
