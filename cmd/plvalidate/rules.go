package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/featureforge/plvalidate/registry"
	"github.com/featureforge/plvalidate/rules"
)

type RulesConfig struct {
	*MainConfig
	ActiveConfig string `cli:"name=active-config desc='active configuration id to additionally verify resolves'"`

	Rules *cli.Command
}

func RulesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &RulesConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Rules, "rules").
		WithAliases("r").
		WithSynopsis("rules [-active-config <id>] <registry-file>").
		WithDescription("run peripheral structural lints and trace-link checks").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return rulesRun(cfg, cc, args)
		})
}

func rulesRun(cfg *RulesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Rules.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: rules requires exactly one registry file argument", cli.ErrUsage)
	}
	data, err := cfg.loadRegistryBytes(args[0])
	if err != nil {
		return err
	}
	reg, err := registry.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	res := rules.Check(reg, cfg.ActiveConfig, nil)
	if res.Passed {
		msg := fmt.Sprintf("%s (elements=%d)", res.Message, res.TotalElements)
		if useColor(cc.Out) {
			msg = color.GreenString(msg)
		}
		fmt.Fprintln(cc.Out, msg)
		return nil
	}
	for _, v := range res.Violations {
		line := v.String()
		if useColor(cc.Out) {
			line = color.RedString(line)
		}
		fmt.Fprintln(cc.Out, line)
	}
	return cli.ExitCodeErr(1)
}
