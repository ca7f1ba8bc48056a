package utils

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultExcludePatterns cover version-control metadata, dependency trees,
// build output and coverage reports. They are always applied and always win
// over include patterns.
var DefaultExcludePatterns = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/node_modules/**",
	"**/bower_components/**",
	"**/dist/**",
	"**/build/**",
	"**/coverage/**",
}

const gitignoreFileName = ".gitignore"

type ignoreMatcher struct {
	// dir is the slash-separated directory the rules were loaded from,
	// relative to the scan root ("" for the root itself).
	dir     string
	matcher *ignore.GitIgnore
}

// IgnoreRules applies the .gitignore files found while walking a tree,
// together with the repository's .git/info/exclude file.
type IgnoreRules struct {
	root     string
	matchers []ignoreMatcher
}

// LoadIgnoreRules reads the root .gitignore and .git/info/exclude, if present.
// Nested .gitignore files are added with LoadDir as the walk reaches them.
func LoadIgnoreRules(root string) *IgnoreRules {
	rules := &IgnoreRules{root: root}
	rules.addFile("", filepath.Join(root, ".git", "info", "exclude"))
	rules.LoadDir("")
	return rules
}

// LoadDir compiles relDir/.gitignore when the file exists.
func (r *IgnoreRules) LoadDir(relDir string) {
	r.addFile(relDir, filepath.Join(r.root, filepath.FromSlash(relDir), gitignoreFileName))
}

func (r *IgnoreRules) addFile(relDir, file string) {
	if _, err := os.Stat(file); err != nil {
		return
	}
	matcher, err := ignore.CompileIgnoreFile(file)
	if err != nil {
		return
	}
	r.matchers = append(r.matchers, ignoreMatcher{dir: relDir, matcher: matcher})
}

// IsIgnored reports whether relPath (slash-separated, relative to the root)
// is excluded by any loaded rule file whose directory contains it.
func (r *IgnoreRules) IsIgnored(relPath string, isDir bool) bool {
	for _, m := range r.matchers {
		local, ok := relativeTo(m.dir, relPath)
		if !ok {
			continue
		}
		if m.matcher.MatchesPath(local) {
			return true
		}
		if isDir && m.matcher.MatchesPath(local+"/") {
			return true
		}
	}
	return false
}

// IsGitignoreFile reports whether p names a .gitignore file.
func IsGitignoreFile(p string) bool {
	return path.Base(filepath.ToSlash(p)) == gitignoreFileName
}

func relativeTo(dir, relPath string) (string, bool) {
	if dir == "" {
		return relPath, true
	}
	rest, ok := strings.CutPrefix(relPath, dir+"/")
	return rest, ok && rest != ""
}
