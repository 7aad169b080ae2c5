// Package debug gates verbose tracing behind environment variables so the
// core reasoning components can be instrumented without a logging
// dependency on their hot path.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Sat        bool
	Encode     bool
	Parse      bool
	Eval       bool
	Rules      bool
	Orchestrate bool
}

var d *debug

func init() {
	d = &debug{}
	d.Sat = boolEnv("PLV_DEBUG_SAT")
	d.Encode = boolEnv("PLV_DEBUG_ENCODE")
	d.Parse = boolEnv("PLV_DEBUG_PARSE")
	d.Eval = boolEnv("PLV_DEBUG_EVAL")
	d.Rules = boolEnv("PLV_DEBUG_RULES")
	d.Orchestrate = boolEnv("PLV_DEBUG_ORCHESTRATE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Sat reports whether DPLL branching/propagation tracing is enabled.
func Sat() bool { return d.Sat }

// Encode reports whether CNF-encoding tracing is enabled.
func Encode() bool { return d.Encode }

// Parse reports whether constraint-parser tracing is enabled.
func Parse() bool { return d.Parse }

// Eval reports whether constraint-evaluator tracing is enabled.
func Eval() bool { return d.Eval }

// Rules reports whether peripheral rule-checker tracing is enabled.
func Rules() bool { return d.Rules }

// Orchestrate reports whether orchestrator entry-point tracing is enabled.
func Orchestrate() bool { return d.Orchestrate }

// Logf writes a trace line to stderr, JSON-encoding any struct/slice/map
// argument so nested values stay greppable.
func Logf(msg string, args ...any) {
	for i := range args {
		switch args[i].(type) {
		case string, bool, int, int64, float64:
			continue
		default:
			b, err := json.Marshal(args[i])
			if err != nil {
				args[i] = fmt.Sprintf("%v", args[i])
				continue
			}
			args[i] = string(b)
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
