package code_analyzer

import (
	"errors"
	"fmt"
	"path"

	"github.com/meysamhadeli/talos/code_analyzer/extractor"
	"github.com/meysamhadeli/talos/code_analyzer/models"
	"github.com/meysamhadeli/talos/utils"
)

// ErrInvalidScanOptions wraps configuration problems detected before a scan starts.
var ErrInvalidScanOptions = errors.New("invalid scan options")

// fileFilter decides which walked files are eligible for extraction.
type fileFilter struct {
	registry    *extractor.Registry
	extensions  models.Extensions
	include     *utils.GlobSet
	exclude     *utils.GlobSet
	maxFileSize int64
}

func newFileFilter(registry *extractor.Registry, options models.ScanOptions) (*fileFilter, error) {
	extensions := options.AllowedExtensions
	if len(extensions) == 0 {
		extensions = models.DefaultExtensions
	}
	if options.MaxFileSize < 0 {
		return nil, fmt.Errorf("%w: max file size must not be negative", ErrInvalidScanOptions)
	}

	include, err := utils.CompileGlobs(options.Include...)
	if err != nil {
		return nil, fmt.Errorf("%w: include: %w", ErrInvalidScanOptions, err)
	}
	defaults, err := utils.CompileGlobs(utils.DefaultExcludePatterns...)
	if err != nil {
		return nil, fmt.Errorf("%w: default exclude: %w", ErrInvalidScanOptions, err)
	}
	userExclude, err := utils.CompileGlobs(options.Exclude...)
	if err != nil {
		return nil, fmt.Errorf("%w: exclude: %w", ErrInvalidScanOptions, err)
	}

	return &fileFilter{
		registry:    registry,
		extensions:  extensions,
		include:     include,
		exclude:     defaults.Merge(userExclude),
		maxFileSize: options.MaxFileSize,
	}, nil
}

// skipDir reports whether nothing below relDir can be eligible.
func (f *fileFilter) skipDir(relDir string) bool {
	return f.exclude.MatchDir(relDir)
}

// eligible returns the grammar for relPath when the file passes every filter.
// Exclusion is checked before inclusion so an exclude pattern always wins.
func (f *fileFilter) eligible(relPath string, size int64) (*extractor.Grammar, bool) {
	ext := path.Ext(relPath)
	if !f.extensions.Contains(ext) {
		return nil, false
	}
	grammar, ok := f.registry.Resolve(ext)
	if !ok {
		return nil, false
	}
	if f.exclude.Match(relPath) {
		return nil, false
	}
	if !f.include.Empty() && !f.include.Match(relPath) {
		return nil, false
	}
	if f.maxFileSize > 0 && size > f.maxFileSize {
		return nil, false
	}
	return grammar, true
}
