// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"phi-redact/internal/config"
	"phi-redact/internal/engine"
	"phi-redact/internal/extract"
	"phi-redact/internal/gateway"
	"phi-redact/internal/observability"
	"phi-redact/internal/registry"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

type cliFlags struct {
	file         string
	output       string
	tokenMapFile string
	format       string
	configFile   string
	disable      string
	failPolicy   string
	noColor      bool
	debug        bool
}

func main() {
	// A .env next to the binary may carry PHI_REDACT_* overrides.
	_ = godotenv.Load()

	flags := parseFlags()
	cfg := loadConfiguration(flags.configFile)
	applyFlagOverrides(&cfg, flags)

	if flags.noColor || !term.IsTerminal(int(os.Stderr.Fd())) {
		color.NoColor = true
	}

	observer := buildObserver(cfg, flags.debug)

	text, err := readInput(flags.file)
	if err != nil {
		fatal("reading input: %v", err)
	}

	eng, err := buildEngine(cfg, observer)
	if err != nil {
		fatal("initializing: %v", err)
	}

	result, err := eng.Process(context.Background(), text)
	if err != nil {
		fatal("processing document: %v", err)
	}

	if err := writeOutput(cfg, flags, result); err != nil {
		fatal("writing output: %v", err)
	}

	printSummary(result)
	if result.Partial {
		os.Exit(2)
	}
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.file, "file", "", "Input file to redact (PDF or text; default: stdin)")
	flag.StringVar(&f.output, "output", "", "Redacted output file (default: stdout)")
	flag.StringVar(&f.tokenMapFile, "token-map", "", "Write the token map JSON to this file for later unredaction")
	flag.StringVar(&f.format, "format", "", "Output format: text or json")
	flag.StringVar(&f.configFile, "config", "", "Path to configuration file")
	flag.StringVar(&f.disable, "disable", "", "Comma-separated detector names to disable")
	flag.StringVar(&f.failPolicy, "failure-policy", "", "Detector failure policy: fail-open or abort")
	flag.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

func loadConfiguration(configFile string) config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		return config.Default()
	}
	return cfg
}

func applyFlagOverrides(cfg *config.Config, flags cliFlags) {
	if flags.format != "" {
		cfg.Redaction.Format = flags.format
	}
	if flags.tokenMapFile != "" {
		cfg.Redaction.TokenMapFile = flags.tokenMapFile
	}
	if flags.failPolicy != "" {
		cfg.Defaults.FailurePolicy = flags.failPolicy
	}
	if flags.disable != "" {
		for _, n := range strings.Split(flags.disable, ",") {
			if n = strings.TrimSpace(n); n != "" {
				cfg.Detectors.Disabled = append(cfg.Detectors.Disabled, n)
			}
		}
	}
	if flags.debug {
		cfg.Defaults.LogLevel = "debug"
	}
}

func buildObserver(cfg config.Config, debug bool) *observability.Observer {
	level := observability.LevelOff
	switch cfg.Defaults.LogLevel {
	case "metrics":
		level = observability.LevelMetrics
	case "debug":
		level = observability.LevelDebug
	}
	if debug {
		level = observability.LevelDebug
	}
	if level == observability.LevelOff {
		return observability.NewObserver(level, nil)
	}
	return observability.NewObserver(level, os.Stderr)
}

func buildEngine(cfg config.Config, observer *observability.Observer) (*engine.Engine, error) {
	var gw gateway.Gateway = gateway.Disabled{}
	if cfg.Gateway.Enabled {
		gw = gateway.NewBridgeGateway(cfg.Gateway.Command, cfg.Gateway.Args, observer)
	}
	consultant := gateway.NewConsultant(gw, cfg.GatewayTimeout())

	reg := registry.New(consultant, registry.WithDisabled(cfg.Detectors.Disabled...))
	if err := reg.Initialize(); err != nil {
		return nil, err
	}

	policy := engine.FailOpen
	if cfg.Defaults.FailurePolicy == "abort" {
		policy = engine.Abort
	}
	return engine.New(reg, observer,
		engine.WithFailurePolicy(policy),
		engine.WithDeadline(cfg.Deadline()),
	), nil
}

func readInput(file string) (string, error) {
	if file == "" {
		return extract.FromReader(os.Stdin)
	}
	return extract.Text(file)
}

func writeOutput(cfg config.Config, flags cliFlags, result *engine.Result) error {
	var payload []byte
	switch cfg.Redaction.Format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		payload = append(data, '\n')
	default:
		payload = []byte(result.RedactedText)
	}

	if flags.output == "" {
		_, err := os.Stdout.Write(payload)
		if err != nil {
			return err
		}
	} else if err := os.WriteFile(flags.output, payload, 0o600); err != nil {
		return err
	}

	if cfg.Redaction.TokenMapFile != "" {
		data, err := json.MarshalIndent(result.TokenMap, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Redaction.TokenMapFile, data, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(result *engine.Result) {
	counts := make(map[string]int)
	for _, s := range result.Spans {
		counts[string(s.FilterType)]++
	}

	fmt.Fprintf(os.Stderr, "%s document %s: %d spans redacted\n",
		color.GreenString("✓"), result.DocumentID, len(result.Spans))
	for category, n := range counts {
		fmt.Fprintf(os.Stderr, "  %s: %d\n", color.CyanString(category), n)
	}
	if len(result.FailedDetectors) > 0 {
		fmt.Fprintf(os.Stderr, "%s detectors failed open: %s\n",
			color.YellowString("!"), strings.Join(result.FailedDetectors, ", "))
	}
	if result.Partial {
		fmt.Fprintf(os.Stderr, "%s deadline expired before all detectors finished; coverage is partial\n",
			color.RedString("!"))
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}
