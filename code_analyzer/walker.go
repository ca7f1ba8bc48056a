package code_analyzer

import (
	"io/fs"
	"path"
	"path/filepath"

	"github.com/meysamhadeli/talos/code_analyzer/extractor"
	"github.com/meysamhadeli/talos/code_analyzer/models"
	"github.com/meysamhadeli/talos/utils"
)

// candidate is an eligible file discovered by the walk.
type candidate struct {
	absPath string
	relPath string
	relDir  string
	name    string
	grammar *extractor.Grammar
}

// walkProject lists the eligible files under root in lexical walk order.
// Symbolic links are never followed; unreadable directories are skipped.
func walkProject(root string, filter *fileFilter) ([]candidate, error) {
	ignoreRules := utils.LoadIgnoreRules(root)
	var candidates []candidate

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if filter.skipDir(rel) || ignoreRules.IsIgnored(rel, true) {
				return filepath.SkipDir
			}
			ignoreRules.LoadDir(rel)
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if ignoreRules.IsIgnored(rel, false) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		grammar, ok := filter.eligible(rel, info.Size())
		if !ok {
			return nil
		}

		relDir := path.Dir(rel)
		if relDir == "." {
			relDir = models.RootDirectoryPath
		}
		candidates = append(candidates, candidate{
			absPath: p,
			relPath: rel,
			relDir:  relDir,
			name:    d.Name(),
			grammar: grammar,
		})
		return nil
	})

	return candidates, err
}
