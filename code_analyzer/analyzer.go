package code_analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/meysamhadeli/talos/code_analyzer/extractor"
	"github.com/meysamhadeli/talos/code_analyzer/models"
	"github.com/meysamhadeli/talos/utils"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

var ErrCacheDisabled = errors.New("signature cache is disabled")

// CodeAnalyzer walks a project, extracts signatures from every eligible file
// and assembles the scan Document.
type CodeAnalyzer struct {
	registry     *extractor.Registry
	cacheManager *CacheManager
	logger       *pterm.Logger
	now          func() time.Time
}

// NewCodeAnalyzer initializes a new CodeAnalyzer. cacheManager and logger may be nil.
func NewCodeAnalyzer(registry *extractor.Registry, cacheManager *CacheManager, logger *pterm.Logger) *CodeAnalyzer {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return &CodeAnalyzer{
		registry:     registry,
		cacheManager: cacheManager,
		logger:       logger,
		now:          time.Now,
	}
}

// ScanProject scans rootDir and returns the assembled Document. Per-file read
// and parse failures are reported in Document.Errors; an error is returned
// only for unusable options, an unreadable root or a cancelled context.
func (analyzer *CodeAnalyzer) ScanProject(ctx context.Context, rootDir string, options models.ScanOptions) (*models.Document, error) {
	root, err := resolveRoot(rootDir)
	if err != nil {
		return nil, err
	}

	filter, err := newFileFilter(analyzer.registry, options)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	candidates, err := walkProject(root, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", rootDir, err)
	}

	results := make([]fileResult, len(candidates))
	cacheErrs := make([]error, len(candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(options.Workers, 1))
	for i, c := range candidates {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i], cacheErrs[i] = analyzer.processFile(groupCtx, c)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, result := range results {
		if result.err != nil {
			analyzer.logger.Warn("extraction failed", analyzer.logger.Args("path", result.relPath, "error", result.err))
			continue
		}
		analyzer.logger.Debug("file scanned", analyzer.logger.Args(
			"path", result.relPath,
			"grammar", result.grammar.Tag,
			"signatures", len(result.signatures),
		))
		if cacheErrs[i] != nil {
			analyzer.logger.Warn("cache write failed", analyzer.logger.Args("path", result.relPath, "error", cacheErrs[i]))
		}
	}

	doc := aggregate(results, options.TerseOutput, analyzer.now())

	analyzer.logger.Info("scan complete", analyzer.logger.Args(
		"files", doc.FileCount(),
		"signatures", doc.SignatureCount(),
		"errors", len(doc.Errors),
		"duration", time.Since(started).Round(time.Millisecond),
	))

	return doc, nil
}

// EligibilityFilter returns a predicate telling whether a slash-separated
// path relative to rootDir would be scanned with options. Sizes and ignore
// files are not consulted.
func (analyzer *CodeAnalyzer) EligibilityFilter(rootDir string, options models.ScanOptions) (func(relPath string) bool, error) {
	filter, err := newFileFilter(analyzer.registry, options)
	if err != nil {
		return nil, err
	}
	ignoreRules := utils.LoadIgnoreRules(rootDir)
	return func(relPath string) bool {
		if ignoreRules.IsIgnored(relPath, false) {
			return false
		}
		_, ok := filter.eligible(relPath, 0)
		return ok
	}, nil
}

// processFile reads and extracts one candidate. The second return value
// reports a failed cache write, which never affects the result.
func (analyzer *CodeAnalyzer) processFile(ctx context.Context, c candidate) (fileResult, error) {
	result := fileResult{candidate: c}

	content, err := os.ReadFile(c.absPath)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		result.err = fmt.Errorf("failed to read file: %w", err)
		return result, nil
	}

	if analyzer.cacheManager != nil {
		if signatures, found := analyzer.cacheManager.GetSignatures(c.grammar, content); found {
			result.signatures = signatures
			return result, nil
		}
	}

	signatures, err := extractor.Extract(ctx, c.grammar, content)
	if err != nil {
		result.err = err
		return result, nil
	}
	result.signatures = signatures

	if analyzer.cacheManager != nil {
		return result, analyzer.cacheManager.SetSignatures(c.grammar, content, signatures)
	}
	return result, nil
}

// GetCacheStats returns the combined performance and storage report.
func (analyzer *CodeAnalyzer) GetCacheStats() (map[string]interface{}, error) {
	if analyzer.cacheManager == nil {
		return nil, ErrCacheDisabled
	}
	return analyzer.cacheManager.GetFullCacheReport()
}

// ClearCache removes every cached signature list.
func (analyzer *CodeAnalyzer) ClearCache() error {
	if analyzer.cacheManager == nil {
		return ErrCacheDisabled
	}
	return analyzer.cacheManager.ClearCache()
}

// Close releases the cache database, if any.
func (analyzer *CodeAnalyzer) Close() error {
	return analyzer.cacheManager.Close()
}

func resolveRoot(rootDir string) (string, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rootDir, err)
	}
	// The root itself may be a symlink; only entries below it are never followed.
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("failed to access %s: %w", rootDir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("failed to access %s: %w", rootDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidScanOptions, rootDir)
	}
	return root, nil
}
