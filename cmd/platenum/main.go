package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hpungsan/platenum/internal/config"
	"github.com/hpungsan/platenum/internal/db"
	"github.com/hpungsan/platenum/internal/history"
	"github.com/hpungsan/platenum/internal/interpret"
	"github.com/hpungsan/platenum/internal/mcp"
	"github.com/hpungsan/platenum/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"calculate": true, "calc": true, "interpret": true,
	"history": true, "serve": true,
	"help": true, "h": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false // No args → MCP server
	}
	return cliCommands[args[1]] || isHelpOrVersion(args)
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	switch args[1] {
	case "--help", "-h", "--version", "-v", "help", "h":
		return true
	}
	return false
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
         _       _
   _ __ | | __ _| |_ ___ _ __  _   _ _ __ ___
  | '_ \| |/ _' | __/ _ \ '_ \| | | | '_ ' _ \
  | |_) | | (_| | ||  __/ | | | |_| | | | | | |
  | .__/|_|\__,_|\__\___|_| |_|\__,_|_| |_| |_|
  |_|

  Vehicle registration numerology

  Usage: platenum <command> [options]
         platenum --help

  MCP server mode requires piped input.`)
}

// buildEnv wires the stores shared by every surface. A failed data load is
// kept on the Env rather than aborting, so history commands still work and
// calculations report the load failure.
func buildEnv(ctx context.Context, database *sql.DB, cfg *config.Config, logger *slog.Logger) *ops.Env {
	env := &ops.Env{
		History: history.New(db.NewKV(database),
			history.WithRetention(cfg.Retention()),
			history.WithLogger(logger),
		),
		Logger: logger,
	}

	interps, err := interpret.Load(ctx, cfg.DataSource, cfg.LoadTimeout())
	if err != nil {
		logger.Error("failed to load numerology data", "source", cfg.DataSource, "error", err)
		env.LoadErr = err
		return env
	}
	env.Interpretations = interps
	logger.Debug("numerology data loaded", "source", interps.Source(), "records", interps.Len())
	return env
}

// warnUnknownDisabled logs config entries that name no known MCP tool or type.
func warnUnknownDisabled(cfg *config.Config, logger *slog.Logger) {
	for _, name := range mcp.ValidateDisabledTools(cfg.DisabledTools) {
		logger.Warn("unknown tool in disabled_tools", "tool", name)
	}
	for _, name := range mcp.ValidateDisabledTypes(cfg.DisabledTypes) {
		logger.Warn("unknown type in disabled_types", "type", name, "known", mcp.KnownTypes)
	}
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion(os.Args) {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode(os.Args) && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'platenum --help' for usage.\n")
		os.Exit(1)
	}

	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, config.DirName)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not determine working directory: %w", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.SetDefault(logger)

	database, err := db.Init(baseDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	env := buildEnv(context.Background(), database, cfg, logger)

	// CLI mode: known subcommand
	if isCLIMode(args) {
		return newCLIApp(env).Run(args)
	}

	// MCP server mode (default)
	warnUnknownDisabled(cfg, logger)
	return mcp.Run(env, cfg, Version)
}
