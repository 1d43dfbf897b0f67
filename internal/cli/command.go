// Package cli implements the foldersize command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/foldersize/internal/config"
	"github.com/idelchi/foldersize/internal/integration"
	"github.com/idelchi/foldersize/internal/log"
)

// DefaultAddr is the listen address of the serve command.
const DefaultAddr = "127.0.0.1:8080"

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// options collects flag values and the loaded configuration.
type options struct {
	configFile string
	debug      bool
	output     string
	top        int
	permanent  bool
	addr       string

	cfg config.Config
}

// Execute runs the CLI with the process arguments.
// SIGINT and SIGTERM cancel the running operation.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.Command().ExecuteContext(ctx)
}

// Command builds the root command.
//
//nolint:funlen // Flat command wiring
func (c CLI) Command() *cobra.Command {
	opts := &options{}

	allowedOutputs := []string{OutputTable, OutputJSON, OutputTSV}

	root := &cobra.Command{
		Use:   "foldersize",
		Short: "Rank folders by size",
		Long: heredoc.Doc(`
			foldersize sizes directories and ranks their contents.

			Directory sizes are cached per process and reused while a folder's
			direct children are unchanged. Tunables are read from
			application.properties in the working directory (or --config):

			  cache.maxEntries       maximum cached directories (default 2000)
			  cache.ttlMillis        cache freshness window (default 30000)
			  delete.allowPermanent  delete permanently without trash (default false)
			  log.level              log level (default info)

			Every key can be overridden with FOLDERSIZE_<KEY>, e.g. FOLDERSIZE_CACHE_TTLMILLIS.
		`),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !slices.Contains(allowedOutputs, opts.output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", opts.output, allowedOutputs)
			}

			opts.cfg = config.Load(opts.configFile)

			log.SetLevel(opts.cfg.LogLevel)

			if opts.debug {
				log.SetDebugMode()
			}

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a properties config file")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug output")
	flags.StringVarP(&opts.output, "output", "o", OutputTable, "Output format: table, json or tsv")

	listCmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List files and folders of a directory by size",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(cmd.Context(), opts, pathArg(args), false)
		},
	}

	foldersCmd := &cobra.Command{
		Use:   "folders [dir]",
		Short: "List the subfolders of a directory by size",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(cmd.Context(), opts, pathArg(args), true)
		},
	}

	topCmd := &cobra.Command{
		Use:   "top [dir]",
		Short: "Find the largest non-overlapping folders below a directory",
		Long: heredoc.Doc(`
			Walks the whole tree below dir and reports the K largest folders.
			A folder is never reported together with one of its own subfolders.
			Interrupting the walk prints the partial result.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.top < 1 {
				return errors.New("top must be positive")
			}

			return top(cmd.Context(), opts, pathArg(args))
		},
	}
	topCmd.Flags().IntVarP(&opts.top, "top", "k", 10, "Number of folders to report")

	deleteCmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Move a file or folder to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return remove(opts, args[0])
		},
	}
	deleteCmd.Flags().BoolVar(&opts.permanent, "permanent", false, "Delete permanently if the trash is unavailable")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browse API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	serveCmd.Flags().StringVar(&opts.addr, "addr", DefaultAddr, "Listen address")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Output init script for shell usage",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			rendered, err := integration.Render()
			if err != nil {
				return fmt.Errorf("rendering integration script: %w", err)
			}

			//nolint:forbidigo // Integration script output to console
			fmt.Println(rendered)

			return nil
		},
	}

	root.AddCommand(listCmd, foldersCmd, topCmd, deleteCmd, serveCmd, initCmd)

	return root
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}

	return args[0]
}
