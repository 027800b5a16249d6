package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/platenum/internal/errors"
	"github.com/hpungsan/platenum/internal/ops"
	"github.com/hpungsan/platenum/internal/web"
)

const defaultPort = 8314

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *ops.Env) *cli.App {
	app := &cli.App{
		Name:    "platenum",
		Usage:   "Vehicle registration numerology",
		Version: Version,
		Commands: []*cli.Command{
			calculateCmd(env),
			interpretCmd(env),
			historyCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func textFlag() cli.Flag {
	return &cli.BoolFlag{Name: "text", Aliases: []string{"t"}, Usage: "Human-readable output instead of JSON"}
}

// calculateCmd creates the calculate command.
func calculateCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "calculate",
		Aliases:   []string{"calc"},
		Usage:     "Calculate the numerology number of a vehicle registration",
		ArgsUsage: "<vehicle number>",
		Flags:     []cli.Flag{textFlag()},
		Action: func(c *cli.Context) error {
			// "KA 01 AB 1234" may arrive as several arguments
			input := strings.Join(c.Args().Slice(), " ")

			output, err := ops.Calculate(c.Context, env, ops.CalculateInput{Input: input})
			return outputCalculation(c, output, err)
		},
	}
}

// interpretCmd creates the interpret command.
func interpretCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "interpret",
		Usage:     "Show the interpretation for a single-digit number",
		ArgsUsage: "<number>",
		Flags:     []cli.Flag{textFlag()},
		Action: func(c *cli.Context) error {
			n, err := parseIntArg(c, "number")
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Interpret(env, ops.InterpretInput{Number: n})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("text") {
				writeInterpretation(c.App.Writer, output.Interpretation)
				return nil
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// historyCmd creates the history command and its subcommands.
func historyCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List, delete, clear or rerun recent lookups",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent lookups, oldest first",
				Flags: []cli.Flag{textFlag()},
				Action: func(c *cli.Context) error {
					output, err := ops.HistoryList(c.Context, env)
					if err != nil {
						return outputError(err)
					}
					if c.Bool("text") {
						writeHistory(c.App.Writer, output)
						return nil
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete one entry by its index from history list",
				ArgsUsage: "<index>",
				Action: func(c *cli.Context) error {
					index, err := parseIntArg(c, "index")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.HistoryDelete(c.Context, env, ops.HistoryDeleteInput{Index: index})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:  "clear",
				Usage: "Delete all entries",
				Action: func(c *cli.Context) error {
					output, err := ops.HistoryClear(c.Context, env)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "rerun",
				Usage:     "Calculate again for the entry at an index",
				ArgsUsage: "<index>",
				Flags:     []cli.Flag{textFlag()},
				Action: func(c *cli.Context) error {
					index, err := parseIntArg(c, "index")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.HistoryRerun(c.Context, env, ops.HistoryRerunInput{Index: index})
					return outputCalculation(c, output, err)
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: defaultPort, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidInput(fmt.Sprintf("invalid port %d", port)))
			}

			srv, err := web.NewServer(env, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, env.Logger)
		},
	}
}

// outputCalculation writes a calculation result. A missing interpretation
// still prints the calculation in text mode before reporting the error.
func outputCalculation(c *cli.Context, output *ops.CalculateOutput, err error) error {
	if c.Bool("text") {
		if output != nil {
			writeCalculation(c.App.Writer, output)
		}
		if err != nil {
			return outputError(err)
		}
		return nil
	}

	if err != nil {
		return outputError(err)
	}
	return outputJSON(c.App.Writer, output)
}

// parseIntArg parses the first positional argument as an integer.
func parseIntArg(c *cli.Context, name string) (int, error) {
	if c.NArg() == 0 {
		return 0, errors.NewInvalidInput(name + " is required")
	}
	n, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, errors.NewInvalidInput(fmt.Sprintf("%s must be an integer, got %q", name, c.Args().First()))
	}
	return n, nil
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if e, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", e.Code, e.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
