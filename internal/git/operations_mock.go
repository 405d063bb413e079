package git

import "fmt"

// MockGitOps is a mock implementation of Operations for testing.
type MockGitOps struct {
	Branch string
	Commit string
}

// NewMockGitOps creates a mock with sensible defaults.
func NewMockGitOps() *MockGitOps {
	return &MockGitOps{
		Branch: "main",
		Commit: "0123456789abcdef0123456789abcdef01234567",
	}
}

func (m *MockGitOps) CurrentBranch(dir string) string {
	return m.Branch
}

func (m *MockGitOps) HeadCommit(dir string) string {
	return m.Commit
}

// String returns a human-readable representation of the mock state.
func (m *MockGitOps) String() string {
	return fmt.Sprintf("MockGitOps{branch=%s, commit=%s}", m.Branch, m.Commit)
}
