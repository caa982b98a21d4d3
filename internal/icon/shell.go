package icon

import "image"

// Icon is a native icon handle acquired from the shell. Render copies it
// into an owned pixel buffer; Release frees the native handle. A strategy
// must call Release on every path out, including render failure. That is
// the whole resource-ownership contract of this package.
type Icon interface {
	Render() (*image.RGBA, error)
	Release()
}

// Source acquires native icons for paths. The real implementation talks to
// the Windows shell; tests substitute a counting double to prove handle
// acquire/release balance.
type Source interface {
	// ExtraLarge looks up the path's icon index in the system image list
	// and fetches the extra-large (48x48) entry.
	ExtraLarge(path string) (Icon, error)
	// Associated asks for "the" icon associated with the path through the
	// simpler legacy lookup, at whatever size the shell returns.
	Associated(path string) (Icon, error)
}

// ShellExtraLarge wraps Source.ExtraLarge as a chain strategy.
func ShellExtraLarge(src Source) Strategy {
	return Strategy{Name: "shell-extra-large", Resolve: scoped(src.ExtraLarge)}
}

// ShellAssociated wraps Source.Associated as a chain strategy.
func ShellAssociated(src Source) Strategy {
	return Strategy{Name: "shell-associated", Resolve: scoped(src.Associated)}
}

// scoped runs one acquisition with its full lifecycle inside the call:
// acquire, render to an owned buffer, release. The deferred Release fires
// on the render-failure path too, so a handle can never leak past a
// strategy regardless of which branch it exits through.
func scoped(acquire func(string) (Icon, error)) func(string) (image.Image, error) {
	return func(path string) (image.Image, error) {
		ic, err := acquire(path)
		if err != nil {
			return nil, err
		}
		defer ic.Release()

		img, err := ic.Render()
		if err != nil {
			return nil, err
		}
		return img, nil
	}
}
