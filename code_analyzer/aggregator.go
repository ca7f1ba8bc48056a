package code_analyzer

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/meysamhadeli/talos/code_analyzer/models"
)

// fileResult is the buffered outcome of one file's extraction.
type fileResult struct {
	candidate
	signatures []string
	err        error
}

// aggregate assembles the Document from per-file results. Every timestamp in
// the document is scannedAt.
func aggregate(results []fileResult, terse bool, scannedAt time.Time) *models.Document {
	timestamp := scannedAt.UTC().Format(time.RFC3339)

	byDir := make(map[string][]models.FileEntry)
	errs := []models.ErrorEntry{}

	for _, result := range results {
		if result.err != nil {
			errs = append(errs, models.ErrorEntry{
				Path:  result.relPath,
				Error: result.err.Error(),
			})
			continue
		}
		if terse && len(result.signatures) == 0 {
			continue
		}

		signatures := result.signatures
		if signatures == nil {
			signatures = []string{}
		}
		byDir[result.relDir] = append(byDir[result.relDir], models.FileEntry{
			FileName:         result.name,
			RelativeFilePath: result.relPath,
			LastScanned:      timestamp,
			Signatures:       signatures,
		})
	}

	directories := []models.DirectoryEntry{}
	for _, dir := range slices.Sorted(maps.Keys(byDir)) {
		files := byDir[dir]
		if len(files) == 0 {
			continue
		}
		slices.SortFunc(files, func(a, b models.FileEntry) int {
			return strings.Compare(a.RelativeFilePath, b.RelativeFilePath)
		})
		directories = append(directories, models.DirectoryEntry{
			DirectoryPath: dir,
			Files:         files,
		})
	}

	slices.SortFunc(errs, func(a, b models.ErrorEntry) int {
		return strings.Compare(a.Path, b.Path)
	})

	return &models.Document{
		SchemaVersion: models.SchemaVersion,
		LastUpdated:   timestamp,
		Directories:   directories,
		Errors:        errs,
	}
}
