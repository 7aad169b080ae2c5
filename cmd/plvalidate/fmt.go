package main

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"
)

type FmtConfig struct {
	*MainConfig
	ToYAML bool `cli:"name=to-yaml desc='convert to YAML (default: to JSON)'"`

	Fmt *cli.Command
}

func FmtCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FmtConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Fmt, "fmt").
		WithSynopsis("fmt [-to-yaml] <registry-file>").
		WithDescription("convert a registry document between JSON and YAML").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return fmtRun(cfg, cc, args)
		})
}

func fmtRun(cfg *FmtConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Fmt.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: fmt requires exactly one registry file argument", cli.ErrUsage)
	}
	jsonData, err := cfg.loadRegistryBytes(args[0])
	if err != nil {
		return err
	}
	if !cfg.ToYAML {
		var v any
		if err := json.Unmarshal(jsonData, &v); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cc.Out, string(out))
		return nil
	}
	out, err := yaml.JSONToYAML(jsonData)
	if err != nil {
		return fmt.Errorf("converting %s to yaml: %w", args[0], err)
	}
	cc.Out.Write(out)
	return nil
}
