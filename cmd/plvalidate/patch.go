package main

import (
	"fmt"
	"os"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/scott-cotton/cli"

	"github.com/featureforge/plvalidate/registry"
	"github.com/featureforge/plvalidate/rules"
	"github.com/featureforge/plvalidate/validate"
)

type PatchConfig struct {
	*MainConfig
	ConfigID string `cli:"name=config desc='configuration id to re-check after patching'"`
	Root     string `cli:"name=root desc='root feature id' default=ROOT"`

	Patch *cli.Command
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg, Root: validate.DefaultRootFeatureID}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Patch, "patch").
		WithAliases("p").
		WithSynopsis("patch [-config <id>] <registry-file> <json-patch-file>").
		WithDescription("apply an RFC 6902 JSON Patch to a registry document and re-validate it").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return patchRun(cfg, cc, args)
		})
}

func patchRun(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: patch requires a registry file and a JSON Patch file", cli.ErrUsage)
	}
	docData, err := cfg.loadRegistryBytes(args[0])
	if err != nil {
		return err
	}
	patchData, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}
	p, err := jsonpatch.DecodePatch(patchData)
	if err != nil {
		return fmt.Errorf("decoding patch %s: %w", args[1], err)
	}
	patched, err := p.Apply(docData)
	if err != nil {
		return fmt.Errorf("applying patch: %w", err)
	}

	reg, err := registry.Parse(patched)
	if err != nil {
		return fmt.Errorf("patched document no longer parses: %w", err)
	}

	fmt.Fprintln(cc.Out, string(patched))

	res := rules.Check(reg, cfg.ConfigID, nil)
	if !res.Passed {
		for _, v := range res.Violations {
			fmt.Fprintln(cc.Out, v.String())
		}
		return cli.ExitCodeErr(1)
	}
	if cfg.ConfigID != "" {
		c, ok := reg.Configuration(cfg.ConfigID)
		if !ok {
			return fmt.Errorf("configuration %q not found after patching", cfg.ConfigID)
		}
		satRes := validate.ConfigurationConsistency(reg, cfg.Root, c.SelectedSet())
		printSATResult(cc, satRes)
		if !satRes.IsConsistent {
			return cli.ExitCodeErr(1)
		}
	}
	return nil
}
