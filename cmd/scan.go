package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/meysamhadeli/talos/code_analyzer/models"
	"github.com/meysamhadeli/talos/config"
	"github.com/meysamhadeli/talos/constants/lipgloss"
	"github.com/meysamhadeli/talos/utils"
	"github.com/pterm/pterm"
)

func newSpinner() *pterm.SpinnerPrinter {
	return pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true).
		WithWriter(os.Stderr)
}

// scanProject validates the scan options and runs one scan of inputDir.
func scanProject(ctx context.Context, rootDependencies *RootDependencies, inputDir string, showSpinner bool) (*models.Document, error) {
	options, err := rootDependencies.Config.ScanOptions()
	if err != nil {
		return nil, err
	}

	if showSpinner {
		spinner, _ := newSpinner().Start(fmt.Sprintf("Scanning %s...", inputDir))
		defer spinner.Stop()
	}

	return rootDependencies.Analyzer.ScanProject(ctx, inputDir, options)
}

// handleScanCommand scans inputDir and writes the document to the configured output.
func handleScanCommand(ctx context.Context, rootDependencies *RootDependencies, inputDir string) error {
	output, err := rootDependencies.Config.OutputPath(inputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	toFile := output != config.StdoutOutput
	doc, err := scanProject(ctx, rootDependencies, inputDir, toFile && utils.IsTerminal(os.Stderr))
	if err != nil {
		return err
	}

	return writeDocument(rootDependencies, doc, output)
}

func writeDocument(rootDependencies *RootDependencies, doc *models.Document, output string) error {
	if err := utils.WriteDocument(doc, output, rootDependencies.Config.Theme); err != nil {
		return err
	}
	if output == config.StdoutOutput {
		return nil
	}

	summary := fmt.Sprintf("✔️ Wrote %d signatures from %d files to %s", doc.SignatureCount(), doc.FileCount(), output)
	fmt.Fprintln(os.Stderr, lipgloss.Green.Render(summary))
	if len(doc.Errors) > 0 {
		fmt.Fprintln(os.Stderr, lipgloss.Yellow.Render(fmt.Sprintf("%d files could not be processed; see \"errors\" in the output", len(doc.Errors))))
	}
	return nil
}
