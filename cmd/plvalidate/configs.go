package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	J bool `cli:"name=j aliases=json desc='input/output registry documents as JSON (default)'"`
	Y bool `cli:"name=y aliases=yaml desc='input/output registry documents as YAML'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

// loadRegistryBytes reads arg (a file path, or "-" for stdin) and returns
// the JSON bytes registry.Parse expects, transcoding from YAML when -y is
// set or the file extension says so.
func (cfg *MainConfig) loadRegistryBytes(arg string) ([]byte, error) {
	var r io.Reader
	if arg == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(arg)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", arg, err)
		}
		defer f.Close()
		r = f
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", arg, err)
	}
	if cfg.Y || looksLikeYAML(arg) {
		return yaml.YAMLToJSON(raw)
	}
	return raw, nil
}

func looksLikeYAML(arg string) bool {
	return strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml")
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
