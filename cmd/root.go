// Package cmd wires the splitdump command line.
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/splitdump/splitdump/internal/config"
	"github.com/splitdump/splitdump/internal/logging"
	"github.com/splitdump/splitdump/internal/output"
	"github.com/splitdump/splitdump/internal/reaper"
	"github.com/splitdump/splitdump/internal/report"
	"github.com/splitdump/splitdump/internal/split"
)

// newRootCommand creates a fresh root command instance. The factory
// pattern keeps tests free of shared flag state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "splitdump [flags] [dumpfile]",
		Short: "Split a monolithic SQL dump into per-table files",
		Long: `Splitdump reads a mysqldump-style SQL dump from a file or stdin and
partitions it into a directory of per-table structure, data, and
trigger files, plus a manifest that sources them back in order.
Large data sections are chunked, and files left over from previous
runs are deleted after confirmation.

Examples:
  splitdump -d shop dump.sql
  mysqldump shop | splitdump -d shop -f
  splitdump -d shop -t orders -f dump.sql     # scope deletion to table orders
  mysqldump --no-data shop | splitdump -d shop -s -f`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cfg, args)
		},
	}

	cmd.Flags().StringP("output", "o", "dump.sql", "Manifest file path")
	cmd.Flags().StringP("database", "d", "dump", "Database label; names the output directory")
	cmd.Flags().StringP("table", "t", "", "Limit stale-file deletion to files of one table")
	cmd.Flags().BoolP("force", "f", false, "Delete stale files without prompting")
	cmd.Flags().BoolP("structure-only", "s", false, "Input is a structure-only dump; existing data files are kept")
	cmd.Flags().StringP("preamble", "p", "", "Text written before the first manifest entry")
	cmd.Flags().Int("chunk-size", split.DefaultChunkSize, "Row-insert statements per data chunk")
	cmd.Flags().String("summary", "", "Write a JSON run summary to this path")
	cmd.Flags().BoolP("verbose", "v", false, "Log progress to stderr")
	cmd.Flags().String("log-dir", "", "Write a JSON log file into this directory")

	cmd.AddCommand(newVersionCommand())
	return cmd
}

// Execute runs the command line. A nil return means exit code 0; this
// includes help and a user-declined confirmation.
func Execute() error {
	return newRootCommand().Execute()
}

func run(cfg *config.Config, args []string) error {
	logTarget := cfg.LogDir
	if logTarget == "" && cfg.Verbose {
		logTarget = "stderr"
	}
	logger, cleanup := logging.Setup(logTarget)
	defer cleanup()
	slog.SetDefault(logger)
	logger.Info("splitdump started", "args", os.Args)

	var in io.Reader = os.Stdin
	fromStdin := true
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open dump file: %w", err)
		}
		defer f.Close()
		in = f
		fromStdin = false
	}

	dir := cfg.Database
	rp, err := reaper.Snapshot(dir, cfg.Table)
	if err != nil {
		return err
	}
	if !rp.Confirm(cfg.Force, promptConfirm(fromStdin)) {
		logger.Info("run aborted at confirmation prompt", "dir", dir)
		fmt.Println("Aborted. No files were changed.")
		return nil
	}

	manifest := output.NewManifest(cfg.Output, manifestDirPrefix(cfg.Output, dir), cfg.Preamble)
	mgr, err := output.NewManager(dir, manifest, rp.Claim)
	if err != nil {
		return err
	}

	sp := split.New(mgr, split.Options{
		StructureOnly: cfg.StructureOnly,
		ChunkSize:     cfg.ChunkSize,
	})
	runErr := sp.Run(in)
	if closeErr := mgr.Close(); runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		logger.Error("split failed", slog.Any("error", runErr))
		return runErr
	}

	deleted, err := rp.Reap()
	if err != nil {
		return err
	}

	sum := report.New(cfg.Database, cfg.Output, sp.Tables(), sp.Lines(), sp.Inserts(), mgr.Written(), deleted)
	if cfg.Summary != "" {
		if err := sum.WriteFile(cfg.Summary); err != nil {
			return err
		}
	}

	logger.Info("splitdump finished",
		"manifest", cfg.Output, "dir", dir,
		"tables", sum.Tables, "lines", sum.Lines, "inserts", sum.Inserts,
		"files", len(sum.Files), "deleted", len(deleted))
	fmt.Printf("Wrote %d files to %s/ (manifest %s", len(sum.Files), dir, cfg.Output)
	if len(deleted) > 0 {
		fmt.Printf(", %d stale files deleted", len(deleted))
	}
	fmt.Println(")")
	return nil
}

// manifestDirPrefix returns the output directory as referenced from the
// manifest's location, so the manifest can be piped to a client from
// its own directory.
func manifestDirPrefix(manifestPath, dir string) string {
	rel, err := filepath.Rel(filepath.Dir(manifestPath), dir)
	if err != nil {
		return filepath.ToSlash(dir)
	}
	return filepath.ToSlash(rel)
}

// promptConfirm builds the reaper's confirmation capability. When the
// dump itself comes from stdin the prompt reads from the controlling
// terminal; without one the answer is a decline, never a delete.
func promptConfirm(dumpFromStdin bool) reaper.ConfirmFunc {
	return func(dir string, candidates int) bool {
		in := io.Reader(os.Stdin)
		if dumpFromStdin {
			tty, err := os.Open("/dev/tty")
			if err != nil {
				slog.Warn("no terminal available for confirmation, aborting", "error", err)
				return false
			}
			defer tty.Close()
			in = tty
		}
		fmt.Fprintf(os.Stderr, "%d files in %s/ may be deleted if this run does not rewrite them. Continue? [y/N] ", candidates, dir)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil {
			return false
		}
		ans := strings.ToLower(strings.TrimSpace(line))
		return ans == "y" || ans == "yes"
	}
}
