package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "plvalidate").
		WithSynopsis("plvalidate [opts] command [opts]").
		WithDescription("plvalidate checks product-line feature models, configurations and constraints.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return plvalidateMain(cfg, cc, args)
		}).
		WithSubs(
			ModelCommand(cfg),
			ConfigCommand(cfg),
			RulesCommand(cfg),
			HelloCommand(cfg),
			FmtCommand(cfg),
			PatchCommand(cfg),
			DiffCommand(cfg),
			ServeCommand(cfg),
		)
}
