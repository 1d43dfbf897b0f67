package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/idelchi/foldersize/internal/config"
	"github.com/idelchi/foldersize/internal/metrics"
	"github.com/idelchi/foldersize/internal/scan"
	"github.com/idelchi/foldersize/internal/server"
)

// newScanner builds a Scanner from cfg, registering its metrics on reg.
func newScanner(cfg config.Config, reg prometheus.Registerer) *scan.Scanner {
	return scan.New(scan.Options{
		CacheMaxEntries: cfg.CacheMaxEntries,
		CacheTTL:        cfg.CacheTTL,
		Metrics:         metrics.New(reg),
	})
}

func list(ctx context.Context, opts *options, dir string, foldersOnly bool) error {
	scanner := newScanner(opts.cfg, nil)
	defer scanner.Close()

	var (
		items []scan.Item
		err   error
		title string
	)

	if foldersOnly {
		title = "Folders"
		items, err = scanner.ListFoldersAndSizes(ctx, dir)
	} else {
		title = "Contents"
		items, err = scanner.ListFolderContents(ctx, dir)
	}

	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return Print(opts.output, title, items, os.Stdout)
}

func top(ctx context.Context, opts *options, root string) error {
	enableProgress := opts.output == OutputTable &&
		!opts.debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	// Simple progress callback that prints directly to stderr
	var progressHook scan.ProgressFunc

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", msg)
		}
	}

	items, err := scan.FindTopK(ctx, root, opts.top, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	return Print(opts.output, fmt.Sprintf("Top %d folders", opts.top), items, os.Stdout)
}

func remove(opts *options, path string) error {
	scanner := newScanner(opts.cfg, nil)
	defer scanner.Close()

	allowPermanent := opts.permanent || opts.cfg.AllowPermanentDelete

	return reportRemoval(os.Stdout, path, scanner.Remove(path, allowPermanent))
}

// reportRemoval prints what happened to path, or explains why it is still there.
func reportRemoval(w io.Writer, path string, outcome scan.Outcome) error {
	switch outcome {
	case scan.Trashed:
		_, err := fmt.Fprintf(w, "moved to trash %s\n", path)

		return err
	case scan.Removed:
		_, err := fmt.Fprintf(w, "deleted %s\n", path)

		return err
	case scan.Refused:
		return fmt.Errorf("could not move %q to trash (use --permanent to delete it)", path)
	default:
		return fmt.Errorf("could not delete %q", path)
	}
}

func serve(ctx context.Context, opts *options) error {
	reg := prometheus.NewRegistry()

	scanner := newScanner(opts.cfg, reg)
	defer scanner.Close()

	return server.New(scanner, reg, opts.cfg.AllowPermanentDelete).Run(ctx, opts.addr)
}
