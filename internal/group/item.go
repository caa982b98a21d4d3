package group

import (
	"image"
	"path/filepath"
	"strings"
)

// Item is one file or shortcut reference inside a group.
//
// DisplayName is derived from the path once, at construction, and kept
// through save/restore. If the underlying file is later renamed the cached
// name diverges from the path; that is deliberate (the name is part of how
// the user arranged the group, not a live view of the filesystem).
type Item struct {
	DisplayName string
	SourcePath  string

	// Icon is a render artifact, recomputed from SourcePath on every load.
	// It is never persisted; nil means "no icon resolved", which the view
	// renders as a placeholder cell.
	Icon image.Image
}

// NewItem builds an Item for a dropped path. The display name is the base
// name without its extension, falling back to the full base name, and as a
// last resort the path itself (covers paths like "C:\" with no base).
func NewItem(path string) Item {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = base
	}
	if name == "." || name == string(filepath.Separator) {
		name = path
	}
	return Item{DisplayName: name, SourcePath: path}
}
