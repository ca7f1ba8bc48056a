package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meysamhadeli/talos/code_analyzer/models"
	"github.com/meysamhadeli/talos/config"
	"github.com/meysamhadeli/talos/constants/lipgloss"
	"github.com/meysamhadeli/talos/utils"
	"github.com/spf13/cobra"
)

// errDocumentsDiffer is returned with --exit-code when the scan differs from the baseline.
var errDocumentsDiffer = errors.New("signatures differ from baseline")

type diffOptions struct {
	against  string
	rev      string
	exitCode bool
}

var diffCmd = &cobra.Command{
	Use:   "diff [input-dir]",
	Short: "Show how the project's signatures changed since a previous report",
	Long: `The 'diff' command scans the input directory without writing any output and
prints a unified diff between the signatures of a baseline report and the fresh
scan. Timestamps are ignored. The baseline is the configured output file unless
--against names another report; with --rev the baseline is read from git at the
given revision (e.g., HEAD, main~2).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var options diffOptions
		options.against, _ = cmd.Flags().GetString("against")
		options.rev, _ = cmd.Flags().GetString("rev")
		options.exitCode, _ = cmd.Flags().GetBool("exit-code")

		rootDependencies, err := handleRootCommand(cmd, true)
		if err != nil {
			return err
		}
		defer rootDependencies.Close()

		return handleDiffCommand(cmd.Context(), rootDependencies, inputDirFromArgs(args), options)
	},
}

func init() {
	diffCmd.Flags().String("against", "", "Baseline report to compare with. Defaults to the configured output file.")
	diffCmd.Flags().String("rev", "", "Read the baseline report from this git revision.")
	diffCmd.Flags().Bool("exit-code", false, "Exit with status 1 when there are differences.")
	rootCmd.AddCommand(diffCmd)
}

func handleDiffCommand(ctx context.Context, rootDependencies *RootDependencies, inputDir string, options diffOptions) error {
	baselinePath := options.against
	if baselinePath == "" {
		output, err := rootDependencies.Config.OutputPath(inputDir)
		if err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
		if output == config.StdoutOutput {
			return errors.New("no baseline: use --against when --output is '-'")
		}
		baselinePath = output
	}

	baselineName, data, err := readBaseline(ctx, baselinePath, options.rev)
	if err != nil {
		return err
	}
	baseline, err := utils.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("%s: %w", baselineName, err)
	}

	current, err := scanProject(ctx, rootDependencies, inputDir, utils.IsTerminal(os.Stderr))
	if err != nil {
		return err
	}

	return printDiff(rootDependencies, baselineName, baseline, current, options.exitCode)
}

// readBaseline loads the baseline report from disk, or from git when rev is set.
func readBaseline(ctx context.Context, path, rev string) (string, []byte, error) {
	if rev == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read baseline: %w", err)
		}
		return path, data, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}
	git := utils.NewGitOperations(filepath.Dir(absPath))
	if err := git.CheckGitRepo(ctx); err != nil {
		return "", nil, fmt.Errorf("--rev %s: %w", rev, err)
	}
	repoPath, err := git.RepoRelativePath(ctx, absPath)
	if err != nil {
		return "", nil, err
	}
	data, err := git.ShowFileAtRevision(ctx, rev, repoPath)
	if err != nil {
		return "", nil, err
	}
	return rev + ":" + repoPath, data, nil
}

func printDiff(rootDependencies *RootDependencies, baselineName string, baseline, current *models.Document, exitCode bool) error {
	diff, err := utils.DiffDocuments(baselineName, "current scan", baseline, current)
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintln(os.Stderr, lipgloss.Green.Render("✔️ No signature changes."))
		return nil
	}

	if err := utils.RenderDiff(os.Stdout, diff, rootDependencies.Config.Theme, utils.IsTerminal(os.Stdout)); err != nil {
		return err
	}
	if exitCode {
		return errDocumentsDiffer
	}
	return nil
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, errDocumentsDiffer) {
		return 1
	}
	return 2
}
