package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"
	"go.uber.org/zap"

	"github.com/featureforge/plvalidate/validate"
)

type ServeConfig struct {
	*MainConfig
	Addr string `cli:"name=addr desc='TCP listen address' default=localhost:9187"`
	Gops bool   `cli:"name=gops desc='register a gops diagnostics agent'"`

	Serve *cli.Command
}

func ServeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ServeConfig{MainConfig: mainCfg, Addr: "localhost:9187"}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Serve, "serve").
		WithSynopsis("serve [-addr <addr>] [-gops]").
		WithDescription("run plvalidate as a batch validation daemon, one request per newline-delimited JSON line").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return serveRun(cfg, cc, args)
		})
}

// serveRequest is the wire envelope a connected client sends: method
// names one of the spec.md §6 entry points, payload is that entry
// point's raw JSON request body.
type serveRequest struct {
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload"`
}

var serveHandlers = map[string]func([]byte) []byte{
	"validate_feature_model_sat": validate.ValidateFeatureModelSAT,
	"validate_configuration_sat": validate.ValidateConfigurationSAT,
	"validate_rules":             validate.ValidateRules,
	"hello":                      validate.Hello,
}

func serveRun(cfg *ServeConfig, cc *cli.Context, args []string) error {
	_, err := cfg.Serve.Parse(cc, args)
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Warn("gops agent failed", zap.Error(err))
		}
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr, err)
	}
	defer ln.Close()
	log.Info("serving", zap.String("addr", ln.Addr().String()))
	fmt.Fprintf(cc.Out, "plvalidate serving on %s\n", ln.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("accept error", zap.Error(err))
			continue
		}
		go serveConn(conn, log)
	}
}

func serveConn(conn net.Conn, log *zap.Logger) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req serveRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Warn("malformed request", zap.String("remote", remote), zap.Error(err))
			fmt.Fprintf(conn, "%s\n", mustMarshal(map[string]string{"error": err.Error()}))
			continue
		}
		handler, ok := serveHandlers[req.Method]
		if !ok {
			log.Warn("unknown method", zap.String("remote", remote), zap.String("method", req.Method))
			fmt.Fprintf(conn, "%s\n", mustMarshal(map[string]string{"error": fmt.Sprintf("unknown method %q", req.Method)}))
			continue
		}
		log.Debug("handling request", zap.String("remote", remote), zap.String("method", req.Method))
		out := handler(req.Payload)
		conn.Write(out)
		conn.Write([]byte("\n"))
	}
}

func mustMarshal(v any) []byte {
	out, _ := json.Marshal(v)
	return out
}
