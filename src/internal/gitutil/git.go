// Package gitutil records catalog saves as git commits.
package gitutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner abstracts command execution for testability.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner runs real processes.
type ExecRunner struct{}

// Run executes the named program in dir and returns stdout, stderr, and error.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out, errB bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errB
	err := cmd.Run()
	return out.String(), errB.String(), err
}

// Committer commits files inside the working tree that contains them.
type Committer struct {
	Runner Runner
	// Push also pushes after a successful commit.
	Push bool
}

// New returns a Committer backed by real git.
func New(push bool) *Committer {
	return &Committer{Runner: ExecRunner{}, Push: push}
}

// Commit stages path and commits it with message. A commit with nothing to
// record is treated as success and nothing is pushed.
func (c *Committer) Commit(ctx context.Context, path, message string) error {
	if path == "" {
		return nil
	}
	dir, base := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	if _, stderr, err := c.Runner.Run(ctx, dir, "git", "add", "-A", "--", base); err != nil {
		return fmt.Errorf("git add failed: %v: %s", err, stderr)
	}
	noChange, err := c.commit(ctx, dir, message)
	if err != nil {
		return err
	}
	if noChange || !c.Push {
		return nil
	}
	return c.pushWithFallback(ctx, dir)
}

// commit returns noChange=true when there is nothing to commit.
func (c *Committer) commit(ctx context.Context, dir, message string) (noChange bool, err error) {
	stdout, stderr, runErr := c.Runner.Run(ctx, dir, "git", "commit", "-m", message)
	if runErr == nil {
		return false, nil
	}
	combined := stderr + stdout
	if strings.Contains(combined, "nothing to commit") ||
		strings.Contains(combined, "no changes added to commit") ||
		strings.Contains(combined, "working tree clean") {
		return true, nil
	}
	return false, fmt.Errorf("git commit failed: %v: %s%s", runErr, stderr, stdout)
}

// pushWithFallback runs `git push`, falling back to
// `git push -u origin <branch>` when no upstream is configured.
func (c *Committer) pushWithFallback(ctx context.Context, dir string) error {
	_, stderr, err := c.Runner.Run(ctx, dir, "git", "push")
	if err == nil {
		return nil
	}
	if !strings.Contains(stderr, "has no upstream branch") &&
		!strings.Contains(stderr, "no configured push destination") {
		return fmt.Errorf("git push failed: %v: %s", err, stderr)
	}
	branch := "HEAD"
	if br, _, bErr := c.Runner.Run(ctx, dir, "git", "rev-parse", "--abbrev-ref", "HEAD"); bErr == nil && strings.TrimSpace(br) != "" {
		branch = strings.TrimSpace(br)
	}
	if _, stderr2, err2 := c.Runner.Run(ctx, dir, "git", "push", "-u", "origin", branch); err2 != nil {
		return fmt.Errorf("git push failed: %v: %s; fallback failed: %v: %s", err, stderr, err2, stderr2)
	}
	return nil
}

// Message builds the commit message for a catalog save.
func Message(action string, keys []string) string {
	switch len(keys) {
	case 0:
		return "catalog: " + action
	case 1:
		return fmt.Sprintf("catalog: %s %s", action, keys[0])
	default:
		return fmt.Sprintf("catalog: %s %d books", action, len(keys))
	}
}
