package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/featureforge/plvalidate/registry"
	"github.com/featureforge/plvalidate/validate"
)

type ConfigConfig struct {
	*MainConfig
	Root string `cli:"name=root desc='root feature id' default=ROOT"`

	Config *cli.Command
}

func ConfigCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ConfigConfig{MainConfig: mainCfg, Root: validate.DefaultRootFeatureID}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Config, "config").
		WithAliases("c").
		WithSynopsis("config [-root <id>] <registry-file> <config-id>").
		WithDescription("check a configuration's SAT consistency and parameter bindings").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return configRun(cfg, cc, args)
		})
}

func configRun(cfg *ConfigConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Config.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: config requires a registry file and a configuration id", cli.ErrUsage)
	}
	data, err := cfg.loadRegistryBytes(args[0])
	if err != nil {
		return err
	}
	reg, err := registry.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	configID := args[1]
	c, ok := reg.Configuration(configID)
	if !ok {
		return fmt.Errorf("configuration %q not found in %s", configID, args[0])
	}

	failed := false
	satRes := validate.ConfigurationConsistency(reg, cfg.Root, c.SelectedSet())
	printSATResult(cc, satRes)
	if !satRes.IsConsistent {
		failed = true
	}

	paramRes, err := validate.ParameterBindings(reg, configID)
	if err != nil {
		return err
	}
	if paramRes.Valid {
		msg := fmt.Sprintf("parameter bindings valid (features=%d params=%d)", paramRes.NumFeaturesChecked, paramRes.NumParametersChecked)
		if useColor(cc.Out) {
			msg = color.GreenString(msg)
		}
		fmt.Fprintln(cc.Out, msg)
	} else {
		failed = true
		for _, e := range paramRes.Errors {
			line := fmt.Sprintf("%s: %s", e.FeatureID, e.Detail)
			if e.Constraint != "" {
				line = fmt.Sprintf("%s: constraint %q: %s", e.FeatureID, e.Constraint, e.Detail)
			}
			if useColor(cc.Out) {
				line = color.RedString(line)
			}
			fmt.Fprintln(cc.Out, line)
		}
	}

	if failed {
		return cli.ExitCodeErr(1)
	}
	return nil
}
