package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/featureforge/plvalidate/registry"
	"github.com/featureforge/plvalidate/validate"
)

type ModelConfig struct {
	*MainConfig
	Root string `cli:"name=root desc='root feature id' default=ROOT"`

	Model *cli.Command
}

func ModelCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ModelConfig{MainConfig: mainCfg, Root: validate.DefaultRootFeatureID}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Model, "model").
		WithAliases("m").
		WithSynopsis("model [-root <id>] <registry-file>").
		WithDescription("check a feature model for SAT consistency").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return modelRun(cfg, cc, args)
		})
}

func modelRun(cfg *ModelConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Model.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: model requires exactly one registry file argument", cli.ErrUsage)
	}
	data, err := cfg.loadRegistryBytes(args[0])
	if err != nil {
		return err
	}
	reg, err := registry.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	res := validate.ModelConsistency(reg, cfg.Root)
	printSATResult(cc, res)
	if !res.IsConsistent {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func printSATResult(cc *cli.Context, res validate.SATResult) {
	msg := res.Message
	if useColor(cc.Out) {
		if res.IsConsistent {
			msg = color.GreenString(msg)
		} else {
			msg = color.RedString(msg)
		}
	}
	fmt.Fprintf(cc.Out, "%s (features=%d clauses=%d)\n", msg, res.NumFeatures, res.NumClauses)
}
