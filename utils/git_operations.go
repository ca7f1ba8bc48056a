package utils

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

var ErrNotGitRepository = errors.New("not a git repository")

// GitOperations runs read-only git commands inside a working directory.
type GitOperations struct {
	workingDir string
}

// NewGitOperations creates a new GitOperations instance
func NewGitOperations(workingDir string) *GitOperations {
	return &GitOperations{workingDir: workingDir}
}

// CheckGitRepo checks if the working directory is inside a git repository
func (g *GitOperations) CheckGitRepo(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir")
	cmd.Dir = g.workingDir
	if err := cmd.Run(); err != nil {
		return ErrNotGitRepository
	}
	return nil
}

// RepoRelativePath converts path (absolute or relative to the working
// directory) to the slash-separated form git expects in "<rev>:<path>".
func (g *GitOperations) RepoRelativePath(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = g.workingDir
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to locate repository root: %w", err)
	}
	top := strings.TrimSpace(string(output))

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.workingDir, path)
	}
	// git reports the resolved top-level path; resolve ours the same way.
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(resolved, filepath.Base(abs))
	}

	rel, err := filepath.Rel(top, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the repository", path)
	}
	return filepath.ToSlash(rel), nil
}

// ShowFileAtRevision returns the content of a repository-relative file at rev.
func (g *GitOperations) ShowFileAtRevision(ctx context.Context, rev, repoPath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", "show", rev+":"+repoPath)
	cmd.Dir = g.workingDir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("failed to read %s at %s: %s", repoPath, rev, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("failed to read %s at %s: %w", repoPath, rev, err)
	}
	return output, nil
}
