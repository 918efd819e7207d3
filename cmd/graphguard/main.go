package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/apollosolutions/graphguard/internal/config"
	"github.com/apollosolutions/graphguard/internal/eventbus"
	"github.com/apollosolutions/graphguard/internal/guard"
	"github.com/apollosolutions/graphguard/internal/language"
	"github.com/apollosolutions/graphguard/internal/metrics"
	"github.com/apollosolutions/graphguard/internal/otel"
	"github.com/apollosolutions/graphguard/internal/schema"
	"github.com/apollosolutions/graphguard/internal/server"
)

const rootUsage = `graphguard — admission control for GraphQL endpoints

USAGE:
  graphguard <command> [flags]

COMMANDS:
  serve            Run the admission proxy in front of a GraphQL endpoint
  check            Analyze one operation against a schema and print the verdict
  compile-schema   Parse an SDL file and report its field index
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>            Configuration file (required)
  -listen <addr>            Listen address, overrides config (default :8080)
  -upstream <url>           Upstream GraphQL endpoint, overrides config
  -watch <bool>             Reload configuration on change (default: true)
  -server.pretty            Pretty-print JSON responses
  -server.timeout <dur>     Per-request timeout, e.g. 10s (default: 10s)
  -otel.endpoint <addr>     OTLP collector endpoint
  -otel.service <name>      OpenTelemetry service name (default: graphguard)
`

const checkUsage = `check FLAGS:
  -schema <file>       GraphQL SDL file (required)
  -query <file>        Operation document to analyze (required)
  -config <file>       Configuration file with limits and weights (optional)
  -operation <name>    Operation to analyze when the document has several
`

const compileSchemaUsage = `compile-schema FLAGS:
  -schema <file>       GraphQL SDL file (required)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("graphguard", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "check":
		return cmdCheck(cmdArgs)
	case "compile-schema":
		return cmdCompileSchema(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "check":
		fmt.Print(checkUsage)
	case "compile-schema":
		fmt.Print(compileSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "")
	listen := fs.String("listen", "", "")
	upstream := fs.String("upstream", "", "")
	watch := fs.Bool("watch", true, "")
	pretty := fs.Bool("server.pretty", false, "")
	timeout := fs.Duration("server.timeout", 10*time.Second, "")
	otelEndpoint := fs.String("otel.endpoint", "", "")
	otelService := fs.String("otel.service", "graphguard", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	if *configPath == "" {
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("-config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	baseDir := filepath.Dir(*configPath)
	snap, err := config.BuildSnapshot(cfg, baseDir)
	if err != nil {
		return err
	}
	store := config.NewStore(snap)

	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *upstream != "" {
		cfg.Server.Upstream = *upstream
	}
	if cfg.Server.Upstream == "" {
		return fmt.Errorf("no upstream endpoint configured")
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(*otelEndpoint, *otelService)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	}()
	metricsHandler, err := metrics.Setup(nil)
	if err != nil {
		return err
	}

	if *watch {
		go func() {
			if err := config.Watch(context.Background(), store, *configPath); err != nil && err != context.Canceled {
				log.Printf("config watcher stopped: %v", err)
			}
		}()
	}

	opts := []server.Option{server.WithTimeout(*timeout)}
	if cfg.Server.Pretty || *pretty {
		opts = append(opts, server.WithPretty())
	}
	handler := server.New(store, server.NewUpstream(cfg.Server.Upstream, nil), opts...)

	mux := http.NewServeMux()
	mux.Handle("/graphql", handler)
	mux.Handle("/metrics", metricsHandler)

	log.Printf("graphguard listening on %s, forwarding to %s", cfg.Server.Listen, cfg.Server.Upstream)
	return http.ListenAndServe(cfg.Server.Listen, mux)
}

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	schemaPath := fs.String("schema", "", "")
	queryPath := fs.String("query", "", "")
	configPath := fs.String("config", "", "")
	operation := fs.String("operation", "", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkUsage)
		return err
	}
	if *schemaPath == "" || *queryPath == "" {
		fmt.Fprint(os.Stderr, checkUsage)
		return fmt.Errorf("-schema and -query are required")
	}

	cfg := config.Default()
	baseDir := "."
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
		baseDir = filepath.Dir(*configPath)
	}
	absSchema, err := filepath.Abs(*schemaPath)
	if err != nil {
		return err
	}
	cfg.Schema = absSchema
	snap, err := config.BuildSnapshot(cfg, baseDir)
	if err != nil {
		return err
	}

	query, err := os.ReadFile(*queryPath)
	if err != nil {
		return err
	}
	doc, err := language.ParseQuery(string(query))
	if err != nil {
		return err
	}

	result := guard.Check(doc, *operation, snap)
	fmt.Printf("depth:   %d (max %d)\n", result.Depth, snap.Limits.MaxDepth)
	fmt.Printf("cost:    %d (max %d)\n", result.Cost, snap.Limits.MaxCost)
	fmt.Printf("verdict: %s\n", result.Verdict)
	for _, v := range result.Violations {
		fmt.Printf("  %s: %s\n", v.Code, v.Message)
	}
	if result.Verdict == guard.VerdictReject {
		os.Exit(1)
	}
	return nil
}

func cmdCompileSchema(args []string) error {
	fs := flag.NewFlagSet("compile-schema", flag.ContinueOnError)
	schemaPath := fs.String("schema", "", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, compileSchemaUsage)
		return err
	}
	if *schemaPath == "" {
		fmt.Fprint(os.Stderr, compileSchemaUsage)
		return fmt.Errorf("-schema is required")
	}

	sdl, err := os.ReadFile(*schemaPath)
	if err != nil {
		return err
	}
	doc, err := language.ParseSchema(filepath.Base(*schemaPath), string(sdl))
	if err != nil {
		return err
	}
	s, err := schema.BuildFromSDL(doc)
	if err != nil {
		return err
	}
	idx := schema.BuildIndex(s)
	fmt.Printf("schema ok: %d types, %d indexed fields, query root %s\n", len(s.Types), idx.Len(), s.QueryType)
	return nil
}
