package cmd

import (
	"fmt"
	"strings"

	"github.com/meysamhadeli/talos/code_analyzer/extractor"
	"github.com/meysamhadeli/talos/constants/lipgloss"
	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the supported grammars and their file extensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := extractor.DefaultRegistry()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), lipgloss.BoxStyle.Render(formatLanguages(registry)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func formatLanguages(registry *extractor.Registry) string {
	width := 0
	for _, grammar := range registry.Grammars() {
		width = max(width, len(grammar.Tag))
	}

	lines := make([]string, 0, len(registry.Grammars()))
	for _, grammar := range registry.Grammars() {
		exts := "." + strings.Join(grammar.Extensions, ", .")
		lines = append(lines, fmt.Sprintf("%-*s  %s", width, grammar.Tag, lipgloss.Gray.Render(exts)))
	}
	return strings.Join(lines, "\n")
}
