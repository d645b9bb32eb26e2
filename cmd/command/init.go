package command

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/common-fate/boilermaker"
	"github.com/common-fate/clio"
	"github.com/mhanyc/orgkit/boilerplate"
	"github.com/mhanyc/orgkit/pkg/identity"
	"github.com/urfave/cli/v2"
)

type templateData struct {
	Name       string
	Repository string
	Region     string
}

var Init = cli.Command{
	Name:  "init",
	Usage: "Scaffold orgkit.toml and an empty account registry in the current directory",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Short project name (lowercase kebab-case)",
		},
		&cli.StringFlag{
			Name:    "repository",
			Aliases: []string{"r"},
			Usage:   "GitHub repository in owner/repo form",
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "Home AWS region",
			Value: "us-east-1",
		},
		&cli.StringFlag{
			Name:    "template",
			Aliases: []string{"t"},
			Usage:   "The project template to use",
			Value:   "default",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Overwrite existing files",
		},
	},
	Action: func(c *cli.Context) error {
		name := c.String("name")
		repository := c.String("repository")
		region := c.String("region")

		dir, err := os.Getwd()
		if err != nil {
			return err
		}

		if name == "" {
			in := &survey.Input{
				Message: "Project name",
				Default: path.Base(dir),
			}
			err = survey.AskOne(in, &name)
			if err != nil {
				return err
			}
		}

		if repository == "" {
			in := &survey.Input{
				Message: "GitHub repository (owner/repo)",
				Help:    "Resource names are derived from the repository owner, so a fork gets its own namespace",
			}
			err = survey.AskOne(in, &repository)
			if err != nil {
				return err
			}
		}

		// validate up front so a scaffolded project never starts out broken.
		if _, err := identity.New(repository, name, region); err != nil {
			return err
		}

		boilerplates, err := boilermaker.ParseMapFS(boilerplate.TemplateFiles, "templates")
		if err != nil {
			return err
		}

		templateFlag := c.String("template")
		bp, ok := boilerplates[templateFlag]
		if !ok {
			var availableTemplates []string
			for k := range boilerplates {
				availableTemplates = append(availableTemplates, k)
			}
			return fmt.Errorf("invalid template %s. available templates: %s", templateFlag, strings.Join(availableTemplates, ", "))
		}

		result, err := bp.Generate(templateData{
			Name:       name,
			Repository: repository,
			Region:     region,
		})
		if err != nil {
			return err
		}

		for f, contents := range result {
			fullpath := filepath.Join(dir, f)
			if _, err := os.Stat(fullpath); err == nil && !c.Bool("force") {
				clio.Warnf("skipping %s: already exists (pass --force to overwrite)", fullpath)
				continue
			}

			parent := filepath.Dir(fullpath)
			err := os.MkdirAll(parent, 0755)
			if err != nil {
				return err
			}

			err = os.WriteFile(fullpath, []byte(contents), 0644)
			if err != nil {
				return err
			}
			clio.Infof("created %s", fullpath)
		}

		clio.Success("Success! Initialized the orgkit project")
		clio.Info("Get started by running these commands next:")
		fmt.Println("orgkit accounts detect-management --save")
		fmt.Println("orgkit names")
		return nil
	},
}
