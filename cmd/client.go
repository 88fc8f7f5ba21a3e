// Package cmd holds the one-shot subcommands that talk to the backend directly.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smazurov/ptzdeck/internal/backend"
	"github.com/smazurov/ptzdeck/internal/config"
	"github.com/smazurov/ptzdeck/internal/logging"
)

// session is what every subcommand needs: resolved options and a client.
type session struct {
	opts   *config.Options
	client *backend.Client
	out    io.Writer
	json   bool
}

// newSession applies the config file and environment on top of the parsed
// flags and builds a backend client.
func newSession(cmd *cobra.Command, opts *config.Options) (*session, error) {
	if err := config.LoadConfig(opts, cmd.Root()); err != nil {
		return nil, err
	}

	// Subcommands log warnings only; their output is the result.
	logging.Initialize(logging.Config{Level: "warn", Format: opts.LoggingFormat})

	client, err := backend.New(backend.Config{
		BaseURL: opts.BackendURL,
		Timeout: opts.BackendTimeout(),
		Logger:  logging.GetLogger("backend"),
	})
	if err != nil {
		return nil, err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	return &session{opts: opts, client: client, out: cmd.OutOrStdout(), json: asJSON}, nil
}

func (s *session) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*s.opts.BackendTimeout())
}

// print writes v as indented JSON, or calls table when JSON was not requested.
func (s *session) print(v any, table func(w *tabwriter.Writer)) error {
	if s.json {
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	table(w)
	return w.Flush()
}

// run wraps a subcommand body: failures go to stderr with exit status 1.
func run(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string, *config.Options) {
	return func(cmd *cobra.Command, args []string, opts *config.Options) {
		s, err := newSession(cmd, opts)
		if err == nil {
			err = fn(cmd, args, s)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}
}

func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print the result as JSON")
}
