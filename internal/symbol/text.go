package symbol

import (
	"bytes"
	"os"
	"strings"
)

// textSniffLen is how many leading bytes are inspected for NUL bytes,
// the same heuristic used by tools like 'file'.
const textSniffLen = 512

// readLines reads path and splits it into lines without their terminators.
// Binary files (a NUL byte in the first 512 bytes) are reported as unreadable.
// Invalid UTF-8 is kept as-is; regexp matching tolerates it.
func readLines(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	sniff := data
	if len(sniff) > textSniffLen {
		sniff = sniff[:textSniffLen]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return nil, false
	}

	return splitLines(string(data)), true
}

// splitLines splits content the way a line-oriented reader would: a
// trailing newline does not produce an extra empty line, and CRLF endings
// lose their carriage return.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
