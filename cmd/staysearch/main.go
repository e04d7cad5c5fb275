package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/staysearch/internal/config"
	"github.com/kailas-cloud/staysearch/internal/transport/console"
	healthuc "github.com/kailas-cloud/staysearch/internal/usecase/health"
	"github.com/kailas-cloud/staysearch/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	env string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "staysearch",
		Short: "Compare FLAT and HNSW vector search over rental listings",
		Long: `staysearch loads a listings dataset with precomputed embeddings into Redis,
builds a FLAT and an HNSW vector index over the text embeddings, and runs an
interactive search loop that compares both indexes for every query.

Without a subcommand it waits for Redis, creates the index, loads the dataset
(skipped when the store already holds data) and starts the interactive loop.`,
		Version:      version.String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd.Context(), opts.env, in, out)
		},
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(),
		"configuration environment (loads config/<env>.yaml)")

	cmd.AddCommand(
		newSetupCmd(opts),
		newIngestCmd(opts),
		newHealthCmd(opts, out),
		newResetCmd(opts),
		newShowCmd(opts, out),
	)
	return cmd
}

func newSetupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the listing index if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts.env, func(ctx context.Context, a *app) error {
				return a.setup(ctx)
			})
		},
	}
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Create the index and load the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts.env, func(ctx context.Context, a *app) error {
				stopOps, err := a.startOps()
				if err != nil {
					return err
				}
				defer stopOps()
				return a.ingest(ctx)
			})
		},
	}
}

func newHealthCmd(opts *rootOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Print a health report for Redis, the index and the embedding API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts.env, func(ctx context.Context, a *app) error {
				report := a.healthService().Check(ctx)
				if err := writeReport(out, report); err != nil {
					return err
				}
				if report.Status != healthuc.Healthy {
					return fmt.Errorf("status %s", report.Status)
				}
				return nil
			})
		},
	}
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var deleteDocs bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop the listing index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts.env, func(ctx context.Context, a *app) error {
				return a.reset(ctx, deleteDocs)
			})
		},
	}
	cmd.Flags().BoolVar(&deleteDocs, "delete-docs", false, "also delete the indexed listing hashes")
	return cmd
}

func newShowCmd(opts *rootOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored listing and verify its vectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts.env, func(ctx context.Context, a *app) error {
				return a.show(ctx, args[0], out)
			})
		},
	}
}

// runInteractive is the default command: wait, setup, ingest, then the loop.
func runInteractive(ctx context.Context, env string, in io.Reader, out io.Writer) error {
	return withApp(ctx, env, func(ctx context.Context, a *app) error {
		stopOps, err := a.startOps()
		if err != nil {
			return err
		}
		defer stopOps()

		if err := a.ingest(ctx); err != nil {
			return err
		}

		repl := console.New(a.searchService(), in, out, console.Options{
			TopK:     a.cfg.Search.TopK,
			MinPrice: a.cfg.Search.MinPrice,
			MaxPrice: a.cfg.Search.MaxPrice,
			Logger:   a.logger,
		})
		if err := repl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("interactive loop: %w", err)
		}
		return nil
	})
}

// withApp bootstraps the app, runs fn and releases resources.
func withApp(ctx context.Context, env string, fn func(context.Context, *app) error) error {
	a, err := bootstrap(ctx, env)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

// healthOutput is the printed form of a health report.
type healthOutput struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func writeReport(w io.Writer, report healthuc.Report) error {
	res := healthOutput{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, check := range report.Checks {
		res.Checks[name] = string(check)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write health report: %w", err)
	}
	return nil
}
