package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/featureforge/plvalidate/validate"
)

type HelloConfig struct {
	*MainConfig
	Hello *cli.Command
}

func HelloCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &HelloConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Hello, "hello").
		WithSynopsis("hello").
		WithDescription("check the validator is alive and reachable").
		WithRun(func(cc *cli.Context, args []string) error {
			return helloRun(cfg, cc, args)
		})
}

func helloRun(cfg *HelloConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Hello.Parse(cc, args); err != nil {
		return err
	}
	fmt.Fprintln(cc.Out, string(validate.Hello(nil)))
	return nil
}
