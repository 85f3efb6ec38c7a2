// Package main is the entry point for pagedit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options are the parsed command line.
type options struct {
	ConfigPath string
	LogLevel   string
	DSN        string
	Listen     string
	Encoding   string
	Command    string
	Args       []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, ok := commands[opts.Command]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", opts.Command)
		flag.Usage()
		return 2
	}
	if len(opts.Args) < cmd.minArgs {
		fmt.Fprintf(os.Stderr, "Usage: pagedit %s\n", cmd.usage)
		return 2
	}

	rt, err := newRuntime(ctx, opts, cmd.interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer rt.Close()

	if err := cmd.run(ctx, rt, opts.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		rt.logger.Error().Err(err).Str("command", opts.Command).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.DSN, "db", "", "SQLite database file")
	flag.StringVar(&opts.Listen, "listen", "", "Address the server listens on")
	flag.StringVar(&opts.Encoding, "encoding", "", "Stored document encoding for new saves (json, cbor)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pagedit - block document editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagedit [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		for _, name := range commandOrder {
			fmt.Fprintf(os.Stderr, "  %-28s %s\n", commands[name].usage, commands[name].help)
		}
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pagedit new \"Meeting notes\"        Create a page\n")
		fmt.Fprintf(os.Stderr, "  pagedit edit 3f2a...               Edit a page in the terminal\n")
		fmt.Fprintf(os.Stderr, "  pagedit -listen :9000 serve        Serve the HTTP API\n")
		fmt.Fprintf(os.Stderr, "  pagedit export 3f2a... html > p.html\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("pagedit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	opts.Command, opts.Args = args[0], args[1:]
	return opts
}
