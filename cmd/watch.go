package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/meysamhadeli/talos/config"
	"github.com/meysamhadeli/talos/constants/lipgloss"
	"github.com/meysamhadeli/talos/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [input-dir]",
	Short: "Rescan and rewrite the output whenever a source file changes",
	Long: `The 'watch' command performs a scan, writes the output and then keeps watching
the input directory. Whenever an eligible source file or a .gitignore file is
created, modified, renamed or removed, the project is scanned again and the
output is replaced. Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		rootDependencies, err := handleRootCommand(cmd, true)
		if err != nil {
			return err
		}
		defer rootDependencies.Close()

		return handleWatchCommand(cmd.Context(), rootDependencies, inputDirFromArgs(args), debounce)
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", watcher.DefaultDebounce, "Quiet period after the last change before rescanning.")
	rootCmd.AddCommand(watchCmd)
}

func handleWatchCommand(ctx context.Context, rootDependencies *RootDependencies, inputDir string, debounce time.Duration) error {
	options, err := rootDependencies.Config.ScanOptions()
	if err != nil {
		return err
	}
	output, err := rootDependencies.Config.OutputPath(inputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	relevant, err := rootDependencies.Analyzer.EligibilityFilter(inputDir, options)
	if err != nil {
		return err
	}

	// Watch before the first scan so edits made during it trigger a rescan.
	w, err := watcher.NewWatcher(inputDir, debounce, rootDependencies.Logger)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", inputDir, err)
	}
	defer w.Close()

	rescan := func() {
		doc, err := rootDependencies.Analyzer.ScanProject(ctx, inputDir, options)
		if err != nil {
			if ctx.Err() == nil {
				fmt.Fprintln(os.Stderr, lipgloss.Red.Render(fmt.Sprintf("Scan failed: %v", err)))
			}
			return
		}
		if err := writeDocument(rootDependencies, doc, output); err != nil {
			fmt.Fprintln(os.Stderr, lipgloss.Red.Render(fmt.Sprintf("Write failed: %v", err)))
		}
	}

	rescan()
	if output != config.StdoutOutput {
		fmt.Fprintln(os.Stderr, lipgloss.BlueSky.Render(fmt.Sprintf("👀 Watching %s for changes (Ctrl+C to stop)", inputDir)))
	}

	err = w.Watch(ctx, func(relPath string) bool {
		return relevant(relPath)
	}, func() {
		// A .gitignore edit may have changed which files are eligible.
		if refreshed, err := rootDependencies.Analyzer.EligibilityFilter(inputDir, options); err == nil {
			relevant = refreshed
		}
		rescan()
	})
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, lipgloss.Yellow.Render("\n🔄 Exiting..."))
		return nil
	}
	return err
}
