package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/meysamhadeli/talos/code_analyzer"
	"github.com/meysamhadeli/talos/code_analyzer/contracts"
	"github.com/meysamhadeli/talos/code_analyzer/extractor"
	"github.com/meysamhadeli/talos/config"
	"github.com/meysamhadeli/talos/constants/lipgloss"
	"github.com/meysamhadeli/talos/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// RootDependencies holds everything a command needs after configuration is loaded.
type RootDependencies struct {
	Config   *config.Config
	Analyzer contracts.ICodeAnalyzer
	Registry *extractor.Registry
	Logger   *pterm.Logger
	Cwd      string
}

// Close releases the analyzer's cache database.
func (deps *RootDependencies) Close() {
	if deps == nil || deps.Analyzer == nil {
		return
	}
	if err := deps.Analyzer.Close(); err != nil {
		deps.Logger.Warn("failed to close cache", deps.Logger.Args("error", err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "talos [input-dir]",
	Short: "Extract a JSON map of the declarations in a JS/TS/CSS project",
	Long: `talos walks a project directory, parses every JavaScript, TypeScript, TSX and
CSS file with tree-sitter and writes one JSON document listing the function,
class, method and style-rule signatures found in each file, grouped by directory.
The input directory defaults to the current directory.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("talos version %s", config.DefaultConfig.Version)))
			return nil
		}

		rootDependencies, err := handleRootCommand(cmd, true)
		if err != nil {
			return err
		}
		defer rootDependencies.Close()

		return handleScanCommand(cmd.Context(), rootDependencies, inputDirFromArgs(args))
	},
}

// handleRootCommand loads the configuration and builds the analyzer. When
// withCache is set and caching is enabled, a cache that cannot be opened is
// reported and the analyzer runs without one.
func handleRootCommand(cmd *cobra.Command, withCache bool) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(rootCmd, cwd)
	if err != nil {
		return nil, err
	}

	logger, err := utils.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if used := cfg.ConfigFileUsed(); used != "" {
		logger.Debug("configuration loaded", logger.Args("file", used))
	}

	registry, err := extractor.DefaultRegistry()
	if err != nil {
		return nil, err
	}

	var cacheManager *code_analyzer.CacheManager
	if withCache && cfg.EnableCache {
		cacheManager = openCache(cfg, logger)
	}

	return &RootDependencies{
		Config:   cfg,
		Analyzer: code_analyzer.NewCodeAnalyzer(registry, cacheManager, logger),
		Registry: registry,
		Logger:   logger,
		Cwd:      cwd,
	}, nil
}

func openCache(cfg *config.Config, logger *pterm.Logger) *code_analyzer.CacheManager {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		dir, err := code_analyzer.DefaultCacheDir()
		if err != nil {
			logger.Warn("cache disabled", logger.Args("error", err))
			return nil
		}
		cacheDir = dir
	}

	cacheManager, err := code_analyzer.NewCacheManager(cacheDir)
	if err != nil {
		logger.Warn("cache disabled", logger.Args("dir", cacheDir, "error", err))
		return nil
	}
	return cacheManager
}

func inputDirFromArgs(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errDocumentsDiffer) {
			fmt.Fprintln(os.Stderr, lipgloss.Red.Render(fmt.Sprintf("Error: %v", err)))
		}
		cancel()
		os.Exit(exitCode(err))
	}
}

func init() {
	config.InitFlags(rootCmd)
}
