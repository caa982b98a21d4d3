// Package icon turns a file-system path into a decoded bitmap.
//
// Resolution is a fixed, ordered fallback chain rather than a type
// hierarchy: try to decode the file itself as an image, then ask the shell
// for the extra-large associated icon, then fall back to the legacy
// association lookup. The first strategy to succeed wins. Native icon
// handles are a scarce OS resource, so every acquisition is scoped inside a
// single strategy call (acquire, copy into an owned pixel buffer, release);
// callers only ever see plain image values.
package icon

import (
	"fmt"
	"image"
	"strings"
)

// Strategy is one step of the fallback chain. Resolve returns the decoded
// bitmap or the reason this step could not produce one.
type Strategy struct {
	Name    string
	Resolve func(path string) (image.Image, error)
}

// Attempt records one failed strategy inside a ResolutionError.
type Attempt struct {
	Strategy string
	Err      error
}

// ResolutionError reports that no strategy produced a bitmap for a path.
// Callers treat it as non-fatal: the item keeps a nil icon and renders as a
// placeholder.
type ResolutionError struct {
	Path     string
	Attempts []Attempt
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no icon for %s:", e.Path)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, " %s: %v;", a.Strategy, a.Err)
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Resolver runs the fallback chain.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds the standard chain: direct decode first, then the
// shell-backed strategies when a Source is available (src may be nil on
// platforms without a shell icon service, leaving only direct decode).
func NewResolver(src Source) *Resolver {
	strategies := []Strategy{DirectDecode()}
	if src != nil {
		strategies = append(strategies, ShellExtraLarge(src), ShellAssociated(src))
	}
	return &Resolver{strategies: strategies}
}

// NewResolverWith builds a resolver from an explicit chain. Used by tests
// and by hosts that need to reorder or extend the strategies.
func NewResolverWith(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve returns the first strategy's successful bitmap, or a
// *ResolutionError describing every failed attempt.
func (r *Resolver) Resolve(path string) (image.Image, error) {
	res := &ResolutionError{Path: path}
	for _, s := range r.strategies {
		img, err := s.Resolve(path)
		if err == nil {
			return img, nil
		}
		res.Attempts = append(res.Attempts, Attempt{Strategy: s.Name, Err: err})
	}
	return nil, res
}
