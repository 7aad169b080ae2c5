package main

import (
	"encoding/json"
	"fmt"

	"github.com/scott-cotton/cli"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type DiffConfig struct {
	*MainConfig
	Diff *cli.Command
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d").
		WithSynopsis("diff <registry-file-a> <registry-file-b>").
		WithDescription("show a textual diff between two canonicalized registry documents").
		WithRun(func(cc *cli.Context, args []string) error {
			return diffRun(cfg, cc, args)
		})
}

func diffRun(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires exactly two registry file arguments", cli.ErrUsage)
	}
	a, err := canonicalJSON(cfg.MainConfig, args[0])
	if err != nil {
		return err
	}
	b, err := canonicalJSON(cfg.MainConfig, args[1])
	if err != nil {
		return err
	}

	dmp := diffpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	fmt.Fprintln(cc.Out, dmp.DiffPrettyText(diffs))
	if len(diffs) > 1 || (len(diffs) == 1 && diffs[0].Type != diffpatch.DiffEqual) {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func canonicalJSON(cfg *MainConfig, arg string) (string, error) {
	raw, err := cfg.loadRegistryBytes(arg)
	if err != nil {
		return "", err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("parsing %s: %w", arg, err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
