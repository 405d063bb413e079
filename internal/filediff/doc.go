// Package filediff runs the whole-file diff pass. Every file of a legacy
// tree is paired with its counterpart in the current tree and compared with
// an external unified diff tool; each diff is written to one artifact.
package filediff
