package git

import (
	"os/exec"
	"strings"
)

// Unknown is reported when a revision cannot be determined, for example
// outside a git repository or without a git binary.
const Unknown = "unknown"

// Revision identifies the state of the tree a run audited.
type Revision struct {
	Branch string
	Commit string
}

// Operations defines the git queries an audit run records.
// This allows mocking git commands in tests.
type Operations interface {
	// CurrentBranch returns the current branch name.
	// For detached HEAD, returns "detached-{short-hash}".
	// Returns Unknown if all git commands fail.
	CurrentBranch(dir string) string

	// HeadCommit returns the full hash of HEAD, or Unknown.
	HeadCommit(dir string) string
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) CurrentBranch(dir string) string {
	if branch, ok := run(dir, "branch", "--show-current"); ok && branch != "" {
		return branch
	}
	// Might be detached HEAD
	if short, ok := run(dir, "rev-parse", "--short", "HEAD"); ok && short != "" {
		return "detached-" + short
	}
	return Unknown
}

func (g *gitOps) HeadCommit(dir string) string {
	if commit, ok := run(dir, "rev-parse", "HEAD"); ok && commit != "" {
		return commit
	}
	return Unknown
}

func run(dir string, args ...string) (string, bool) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(output)), true
}

// ReadRevision collects the branch and commit of dir.
func ReadRevision(ops Operations, dir string) Revision {
	return Revision{
		Branch: ops.CurrentBranch(dir),
		Commit: ops.HeadCommit(dir),
	}
}
