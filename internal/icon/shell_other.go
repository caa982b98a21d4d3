//go:build !windows

package icon

// NewShellSource returns nil on platforms without a shell icon service;
// the resolver then carries the direct-decode strategy alone.
func NewShellSource() Source { return nil }
