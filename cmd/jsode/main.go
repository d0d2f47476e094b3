// Command jsode validates and queries JSON5 documents.
//
//	jsode FILE                  exit 0 if FILE parses, 1 otherwise
//	jsode check FILE...         parse many files concurrently
//	jsode get FILE PATH         print the raw text of the value at PATH
//	jsode eval FILE EXPR        evaluate an expression against FILE
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpotapov/go-jsode"
	"github.com/dpotapov/go-jsode/internal/query"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every command shares.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
	logger  *slog.Logger
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "jsode FILE",
		Short: "Validate and query JSON5 documents",
		Long: `Validate and query JSON5 documents.

With a single FILE argument jsode parses it and exits 0 when it is valid.
A file named like a subcommand is dispatched to that subcommand; pass it
after "--" or with a path prefix instead, e.g. "jsode -- check" or
"jsode ./check".`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(a.stderr, a.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.parseFile(args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log parser activity to stderr")

	cmd.AddCommand(newCheckCmd(a), newGetCmd(a), newEvalCmd(a))
	return cmd
}

// parseFile reads and parses a whole file.
func (a *app) parseFile(path string) (jsode.Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jsode.Output{}, err
	}
	p := jsode.NewParser(string(data))
	if a.logger != nil {
		p.Logger = a.logger.With("file", path)
	}
	return p.Parse()
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE PATH",
		Short: "Print the raw text of the value at a dotted path, e.g. servers.0.host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.parseFile(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			v, ok := out.Path(args[1])
			if !ok {
				return fmt.Errorf("%s: path %q not found", args[0], args[1])
			}
			_, err = fmt.Fprintln(a.stdout, v.Slice())
			return err
		},
	}
}

func newEvalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval FILE EXPR",
		Short: "Evaluate an expression against a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.parseFile(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			v, err := query.Eval(out, args[1])
			if err != nil {
				return err
			}
			a.logger.Debug("evaluated", "expr", args[1], "type", fmt.Sprintf("%T", v))
			_, err = fmt.Fprintln(a.stdout, v)
			return err
		},
	}
}
