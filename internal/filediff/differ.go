package filediff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Output is the captured result of one external diff invocation.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Differ produces a unified diff of two files.
type Differ interface {
	Diff(ctx context.Context, legacyPath, targetPath string) (*Output, error)
}

// ExecDiffer runs an external diff tool as "<command> -u legacy target".
// No timeout is applied; ctx only carries interrupt cancellation.
type ExecDiffer struct {
	Command string
}

// NewExecDiffer creates a differ for command, defaulting to "diff".
func NewExecDiffer(command string) *ExecDiffer {
	if command == "" {
		command = "diff"
	}
	return &ExecDiffer{Command: command}
}

// Diff runs the tool. A non-zero exit status is not an error here; the
// caller interprets Output.ExitCode. Failing to start the tool is.
func (d *ExecDiffer) Diff(ctx context.Context, legacyPath, targetPath string) (*Output, error) {
	cmd := exec.CommandContext(ctx, d.Command, "-u", legacyPath, targetPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := &Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return nil, fmt.Errorf("failed to run %s: %w", d.Command, err)
	}
	return out, nil
}
