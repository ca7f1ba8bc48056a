package cmd

import (
	"bufio"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/meysamhadeli/talos/constants/lipgloss"
	"github.com/meysamhadeli/talos/utils"
	"github.com/spf13/cobra"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Reset the signature cache",
	Long: `The 'reset-cache' command removes every cached signature list from the on-disk
signature cache. Cached entries are keyed by file content and grammar, so a reset is
never required for correctness; use it to reclaim space or after a corrupted cache.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		stats, _ := cmd.Flags().GetBool("stats")

		return handleResetCacheCommand(cmd, force, stats)
	},
}

func init() {
	resetCacheCmd.Flags().BoolP("force", "f", false, "Force cache reset without confirmation")
	resetCacheCmd.Flags().BoolP("stats", "s", false, "Show cache statistics instead of resetting")

	rootCmd.AddCommand(resetCacheCmd)
}

func handleResetCacheCommand(cmd *cobra.Command, force bool, showStats bool) error {
	rootDependencies, err := handleRootCommand(cmd, true)
	if err != nil {
		return err
	}
	defer rootDependencies.Close()

	if !rootDependencies.Config.EnableCache {
		fmt.Println(lipgloss.Yellow.Render("Cache is disabled. No cache to reset."))
		return nil
	}

	if showStats {
		report, err := rootDependencies.Analyzer.GetCacheStats()
		if err != nil {
			return fmt.Errorf("could not read cache statistics: %w", err)
		}
		fmt.Println(lipgloss.BoxStyle.Render(formatCacheReport(report)))
		return nil
	}

	if !force {
		confirmed, err := utils.ConfirmPrompt(bufio.NewReader(os.Stdin), os.Stdout, "Are you sure you want to reset the signature cache?")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(lipgloss.Yellow.Render("Cache reset cancelled."))
			return nil
		}
	}

	spinnerInstance, _ := newSpinner().Start("Resetting signature cache...")
	err = rootDependencies.Analyzer.ClearCache()
	spinnerInstance.Stop()
	if err != nil {
		return fmt.Errorf("error resetting cache: %w", err)
	}

	fmt.Println(lipgloss.Green.Render("✓ Signature cache has been successfully reset!"))
	return nil
}

// formatCacheReport renders the report returned by GetCacheStats.
func formatCacheReport(report map[string]interface{}) string {
	out := lipgloss.Info.Render("Cache Statistics") + "\n"

	if storage, ok := report["storage"].(map[string]interface{}); ok {
		if dir, ok := storage["cache_dir"].(string); ok {
			out += fmt.Sprintf("  Cache Directory:   %s\n", dir)
		}
		if entries, ok := storage["cache_entries"].(int); ok {
			out += fmt.Sprintf("  Cached Files:      %d\n", entries)
		}
		if signatures, ok := storage["cached_signatures"].(int); ok {
			out += fmt.Sprintf("  Cached Signatures: %d\n", signatures)
		}
		if size, ok := storage["total_size_mb"].(float64); ok {
			out += fmt.Sprintf("  Total Size:        %.2f MB\n", size)
		}
		if byGrammar, ok := storage["entries_by_grammar"].(map[string]int); ok {
			for _, tag := range slices.Sorted(maps.Keys(byGrammar)) {
				out += fmt.Sprintf("    %-20s %d\n", tag, byGrammar[tag])
			}
		}
		if oldest, ok := storage["oldest_entry"].(string); ok {
			out += fmt.Sprintf("  Oldest Entry:      %s\n", oldest)
		}
		if newest, ok := storage["newest_entry"].(string); ok {
			out += fmt.Sprintf("  Newest Entry:      %s\n", newest)
		}
	}
	return out[:len(out)-1]
}
