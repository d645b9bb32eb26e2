package sweep

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/common-fate/clio"
	"github.com/mhanyc/orgkit/pkg/naming"
	"github.com/mhanyc/orgkit/pkg/projectconfig"
	"github.com/mhanyc/orgkit/pkg/registry"
	"github.com/mhanyc/orgkit/pkg/sweep"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

var Command = cli.Command{
	Name:  "sweep",
	Usage: "discover project-owned AWS resources across regions and accounts",
	Description: `Lists S3 buckets, IAM roles, DynamoDB tables, Lambda functions and
CloudFormation stacks whose names match the project's pattern set. The sweep
never deletes anything: its output is the candidate list an operator reviews
before running the destroy scripts. Matching is broad substring containment,
so check the printed pattern for collisions with foreign resources.`,
	Flags: []cli.Flag{
		&cli.PathFlag{Name: "config", Value: projectconfig.DefaultFile, Usage: "path to orgkit.toml"},
		&cli.StringSliceFlag{Name: "regions", Usage: "regions to sweep (defaults to the full commercial region set)"},
		&cli.StringFlag{Name: "env", Usage: "comma-separated environment allow-list, e.g. dev,prod"},
		&cli.BoolFlag{Name: "skip-member-accounts", Usage: "sweep only the account of the current credentials"},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

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

		snap, err := registry.Load(afero.NewOsFs(), cfg.RegistryPath())
		if err != nil {
			return err
		}

		envFilter := c.String("env")
		if envFilter == "" && isFixedTier(cfg.Environment) {
			// test environments live in the dev account and are not
			// registry entries, so only a fixed tier narrows the sweep.
			envFilter = cfg.Environment
		}
		accounts, err := snap.Filter(envFilter)
		if err != nil {
			return err
		}

		awscfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return err
		}
		if awscfg.Region == "" {
			awscfg.Region = project.Region
		}

		regions := c.StringSlice("regions")
		if len(regions) == 0 {
			regions = sweep.DefaultRegions()
		}

		runID := ksuid.New().String()
		clio.Infow("starting sweep", "run", runID, "regions", len(regions), "patterns", names.Patterns)

		sweepers := []*sweep.Sweeper{sweep.New(awscfg, "current", names.Patterns)}
		if !c.Bool("skip-member-accounts") {
			for _, env := range registry.Environments {
				if env == registry.Management {
					// management is the account the credentials already live in.
					continue
				}
				if id, ok := accounts[env]; ok {
					sweepers = append(sweepers, sweepers[0].ForAccount(id))
				}
			}
		}

		var total int
		for _, s := range sweepers {
			results, err := s.Global(ctx)
			if err != nil {
				clio.Errorw("global sweep failed", "run", runID, "error", err.Error())
			}
			total += report(results)

			err = sweep.Run(ctx, runID, regions, func(ctx context.Context, region string) error {
				results, err := s.Region(ctx, region)
				total += report(results)
				return err
			})
			if err != nil {
				return err
			}
		}

		if total == 0 {
			clio.Info("no project-owned resources found")
			return nil
		}
		clio.Successf("sweep %s found %d project-owned resources", runID, total)
		return nil
	},
}

func isFixedTier(env string) bool {
	for _, e := range registry.Environments {
		if string(e) == env {
			return true
		}
	}
	return false
}

func report(results []sweep.Result) int {
	for _, r := range results {
		clio.Infow("found resource", "account", r.Account, "service", r.Service, "region", r.Region, "name", r.Resource, "pattern", r.Pattern)
	}
	return len(results)
}
