package contracts

import (
	"context"

	"github.com/meysamhadeli/talos/code_analyzer/models"
)

type ICodeAnalyzer interface {
	ScanProject(ctx context.Context, rootDir string, options models.ScanOptions) (*models.Document, error)
	EligibilityFilter(rootDir string, options models.ScanOptions) (func(relPath string) bool, error)
	GetCacheStats() (map[string]interface{}, error)
	ClearCache() error
	Close() error
}
