// Package archive keeps the screenshot directory under git, one commit per
// artifact.
package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/executil"
	"github.com/manav03panchal/worklog/internal/logging"
)

// Commit identity used for every archive commit.
const (
	CommitName  = "WorkLog"
	CommitEmail = "worklog@localhost"
)

// CommitMessage is the message recorded for an artifact.
func CommitMessage(name string) string {
	return "Add screenshot " + name
}

// Archive commits artifacts with the git command-line tool.
type Archive struct {
	gitPath string
	exec    executil.Executor

	mu          sync.Mutex
	initialized map[string]bool
}

// New creates an archive using the git binary at gitPath.
func New(gitPath string, exec executil.Executor) *Archive {
	if gitPath == "" {
		gitPath = "git"
	}
	return &Archive{
		gitPath:     gitPath,
		exec:        exec,
		initialized: make(map[string]bool),
	}
}

// EnsureInitialized makes dir a git repository with the WorkLog identity.
// It is idempotent: a directory that already has a .git entry, or that this
// archive already initialized, is left alone.
func (a *Archive) EnsureInitialized(ctx context.Context, dir string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized[dir] {
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		a.initialized[dir] = true
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewArchiveError("init", dir, err)
	}
	if _, err := a.exec.RunDir(ctx, dir, a.gitPath, "init", "--quiet"); err != nil {
		return errors.NewArchiveError("init", dir, err)
	}
	for _, kv := range [][2]string{{"user.name", CommitName}, {"user.email", CommitEmail}} {
		if _, err := a.exec.RunDir(ctx, dir, a.gitPath, "config", kv[0], kv[1]); err != nil {
			return errors.NewArchiveError("init", dir, err)
		}
	}

	a.initialized[dir] = true
	logging.Info("archive initialized", logging.KeyDir, dir)
	return nil
}

// Record stages and commits exactly the file at path, which must live inside dir.
func (a *Archive) Record(ctx context.Context, dir, path, message string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		if err == nil {
			err = errors.New("path is outside the archive: " + path)
		}
		return errors.NewArchiveError("add", dir, err)
	}
	rel = filepath.ToSlash(rel)

	if _, err := a.exec.RunDir(ctx, dir, a.gitPath, "add", "--", rel); err != nil {
		return errors.NewArchiveError("add", dir, err)
	}
	if _, err := a.exec.RunDir(ctx, dir, a.gitPath,
		"-c", "commit.gpgsign=false",
		"commit", "--quiet", "-m", message, "--", rel); err != nil {
		return errors.NewArchiveError("commit", dir, err)
	}
	return nil
}

// Count returns the number of commits in dir, zero for an empty repository
// or a directory that is not under git yet.
func (a *Archive) Count(ctx context.Context, dir string) (int, error) {
	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		return 0, nil
	}
	out, err := a.exec.RunDir(ctx, dir, a.gitPath, "rev-list", "--count", "--all")
	if err != nil {
		return 0, errors.NewArchiveError("count", dir, err)
	}
	n := 0
	for _, r := range strings.TrimSpace(string(out)) {
		if r < '0' || r > '9' {
			return 0, errors.NewArchiveError("count", dir, errors.New("unexpected output: "+string(out)))
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
