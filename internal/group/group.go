// Package group defines the in-memory state of one desktop group: its
// identity, member items, placement, and appearance. A Group is mutated only
// from the owning window's event dispatch, so it carries no locking; the
// mutators instead focus on precise change detection so callers can decide
// when a disk write is actually warranted.
package group

import (
	"strings"
	"sync"
	"time"
)

// GeometryUnset is the sentinel for geometry fields that have never been
// set by a restore or a user interaction.
const GeometryUnset = -1

// DefaultOpacity is the stored opacity for new groups.
const DefaultOpacity = 0.5

// Geometry is a window rectangle in desktop-relative coordinates (already
// corrected for the desktop surface's origin offset). Raw screen coordinates
// must never be stored here.
type Geometry struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// UnsetGeometry returns a Geometry with every field at the unset sentinel.
func UnsetGeometry() Geometry {
	return Geometry{Top: GeometryUnset, Left: GeometryUnset, Width: GeometryUnset, Height: GeometryUnset}
}

// Unset reports whether the geometry still holds the sentinel values.
func (g Geometry) Unset() bool {
	return g == UnsetGeometry()
}

// Group is the durable state of one desktop group.
type Group struct {
	// Identity is the stable opaque key correlating the in-memory group,
	// its window, and its persisted file. Assigned once, never changed.
	Identity string

	// Items in display order. Duplicates are allowed.
	Items []Item

	Geometry   Geometry
	Background Color
	Border     Color
	// BorderSet distinguishes "never customized" from an explicit border
	// color; an unset border is omitted from the persisted file.
	BorderSet bool

	// Opacity is the stored window opacity (0..1). The hover override to
	// full opacity lives in the view layer and is never written here.
	Opacity float64
}

// New creates an empty group with the given identity and default styling.
func New(identity string) *Group {
	return &Group{
		Identity:   identity,
		Geometry:   UnsetGeometry(),
		Background: DefaultBackground,
		Opacity:    DefaultOpacity,
	}
}

// AddItem appends an item, preserving insertion order. Always a change.
func (g *Group) AddItem(it Item) bool {
	g.Items = append(g.Items, it)
	return true
}

// RemoveItem removes the item at index i, keeping order. Returns false when
// the index is out of range.
func (g *Group) RemoveItem(i int) bool {
	if i < 0 || i >= len(g.Items) {
		return false
	}
	g.Items = append(g.Items[:i], g.Items[i+1:]...)
	return true
}

// SetGeometry replaces the geometry, reporting whether anything changed.
// Move notifications fire on Windows for plenty of events that do not move
// the window; the equality check keeps those from turning into disk writes.
func (g *Group) SetGeometry(geo Geometry) bool {
	if g.Geometry == geo {
		return false
	}
	g.Geometry = geo
	return true
}

// SetBackground replaces the background color, reporting change.
func (g *Group) SetBackground(c Color) bool {
	if g.Background == c {
		return false
	}
	g.Background = c
	return true
}

// SetBorder replaces the border color, reporting change.
func (g *Group) SetBorder(c Color) bool {
	if g.BorderSet && g.Border == c {
		return false
	}
	g.Border = c
	g.BorderSet = true
	return true
}

// SetOpacity replaces the stored opacity, clamped to 0..1, reporting change.
func (g *Group) SetOpacity(o float64) bool {
	if o < 0 {
		o = 0
	} else if o > 1 {
		o = 1
	}
	if g.Opacity == o {
		return false
	}
	g.Opacity = o
	return true
}

var lastIdentity struct {
	sync.Mutex
	prev string
}

// NewIdentity generates a fresh identity from the current time with
// millisecond precision: 17 digits, "20060102150405000". Two groups created
// within the same millisecond would collide, so generation waits out the
// millisecond instead; group creation is a user gesture, never a hot path.
func NewIdentity() string {
	lastIdentity.Lock()
	defer lastIdentity.Unlock()
	id := timestampID()
	for id == lastIdentity.prev {
		time.Sleep(time.Millisecond)
		id = timestampID()
	}
	lastIdentity.prev = id
	return id
}

func timestampID() string {
	return strings.Replace(time.Now().Format("20060102150405.000"), ".", "", 1)
}
