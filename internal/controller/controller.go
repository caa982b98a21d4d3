// Package controller owns the lifecycle of one on-screen group.
//
// A Controller drives a single window through Restore into its live state
// and funnels every mutation through the group model's change detection, so
// a mutation that changes nothing never touches disk. Persistence and icon
// failures degrade the group instead of killing it.
package controller

import (
	"errors"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/weizlogy/desktop-grouping/internal/desktop"
	"github.com/weizlogy/desktop-grouping/internal/group"
	"github.com/weizlogy/desktop-grouping/internal/logging"
	"github.com/weizlogy/desktop-grouping/internal/store"
)

// State tracks where a controller is in its lifecycle. Transitions only
// move forward.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateLive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateLive:
		return "live"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ErrNotLive is returned by mutations attempted outside the live state.
var ErrNotLive = errors.New("group is not live")

// Appearance is the visual slice of the group the window needs to paint.
type Appearance struct {
	Background group.Color
	Border     group.Color
	BorderSet  bool
	Opacity    float64
}

// Window is the native surface a controller drives.
type Window interface {
	Handle() uintptr
	SetBounds(g group.Geometry)
	SetAppearance(a Appearance)
	SetItems(items []group.Item)
	Show()
	Close()
}

// Persister is the slice of the store gateway the controller uses.
type Persister interface {
	Save(g *group.Group)
	Load(identity string) (*group.Group, bool, error)
	Delete(identity string) error
}

// Resolver turns item paths into bitmaps.
type Resolver interface {
	Resolve(path string) (image.Image, error)
}

// Controller binds one group to one window.
type Controller struct {
	mu       sync.Mutex
	state    State
	grp      *group.Group
	offset   desktop.Offset
	window   Window
	embedder desktop.Embedder
	persist  Persister
	resolver Resolver
	log      *logging.Logger
}

// Config collects a controller's collaborators. Embedder may be nil when
// the platform has none; the group then stays in screen coordinates.
type Config struct {
	Window    Window
	Embedder  desktop.Embedder
	Persister Persister
	Resolver  Resolver
	Log       *logging.Logger
}

func New(cfg Config) *Controller {
	log := cfg.Log
	if log == nil {
		log = logging.NewNop()
	}
	return &Controller{
		state:    StateUninitialized,
		window:   cfg.Window,
		embedder: cfg.Embedder,
		persist:  cfg.Persister,
		resolver: cfg.Resolver,
		log:      log,
	}
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity reports the group's identity; empty before Restore.
func (c *Controller) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.grp == nil {
		return ""
	}
	return c.grp.Identity
}

// Snapshot returns a copy of the group for read-only callers.
func (c *Controller) Snapshot() group.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.grp == nil {
		return group.Group{}
	}
	snap := *c.grp
	snap.Items = append([]group.Item(nil), c.grp.Items...)
	return snap
}

// Restore brings the group on screen. An empty identity mints a fresh one
// and persists it immediately so the group exists on disk from first
// sight. A present record restores geometry, appearance and items, with
// icons re-resolved concurrently; a corrupt record is logged and treated
// as new. The controller reaches the live state on every path.
func (c *Controller) Restore(identity string) error {
	c.mu.Lock()
	if c.state != StateUninitialized {
		c.mu.Unlock()
		return errors.New("restore on a started controller")
	}
	c.state = StateRestoring
	c.mu.Unlock()

	fresh := identity == ""
	if fresh {
		identity = group.NewIdentity()
	}
	grp := group.New(identity)

	offset := c.embed()

	loaded, found, err := c.persist.Load(identity)
	switch {
	case err != nil:
		var corrupt *store.CorruptError
		if errors.As(err, &corrupt) {
			c.log.Warn("group file unreadable, starting over with defaults",
				zap.String("identity", identity), zap.Error(err))
		} else {
			c.log.Error("group load failed, starting over with defaults",
				zap.String("identity", identity), zap.Error(err))
		}
		c.persist.Save(grp)
	case !found:
		// First sighting of this identity; write the record so it
		// survives even if the session ends before any mutation.
		c.persist.Save(grp)
	default:
		grp = loaded
		c.resolveIcons(grp)
	}

	c.window.SetBounds(desktop.ToScreen(grp.Geometry, offset))
	c.window.SetAppearance(Appearance{
		Background: grp.Background,
		Border:     grp.Border,
		BorderSet:  grp.BorderSet,
		Opacity:    grp.Opacity,
	})
	c.window.SetItems(grp.Items)
	c.window.Show()

	c.mu.Lock()
	c.grp = grp
	c.offset = offset
	c.state = StateLive
	c.mu.Unlock()

	c.log.Info("group live",
		zap.String("identity", identity),
		zap.Bool("fresh", fresh || !found),
		zap.Int("items", len(grp.Items)))
	return nil
}

// embed parents the window behind the desktop icons and reports the icon
// surface's origin. Embed failure degrades to bottom-of-z-order stacking
// with a zero offset.
func (c *Controller) embed() desktop.Offset {
	if c.embedder == nil {
		return desktop.Offset{}
	}
	if err := c.embedder.SuppressTaskSwitching(c.window.Handle()); err != nil {
		c.log.Warn("task switching suppression failed", zap.Error(err))
	}
	offset, err := c.embedder.EmbedBehindIcons(c.window.Handle())
	if err != nil {
		c.log.Warn("embedding behind desktop icons failed, forcing to bottom",
			zap.Error(err))
		if err := c.embedder.ForceToBottom(c.window.Handle()); err != nil {
			c.log.Warn("force to bottom failed", zap.Error(err))
		}
		return desktop.Offset{}
	}
	return offset
}

// resolveIcons fills in every item's icon concurrently. A failed
// resolution leaves the icon nil; the window paints a placeholder.
func (c *Controller) resolveIcons(grp *group.Group) {
	if c.resolver == nil {
		return
	}
	var wg sync.WaitGroup
	for i := range grp.Items {
		wg.Add(1)
		go func(it *group.Item) {
			defer wg.Done()
			img, err := c.resolver.Resolve(it.SourcePath)
			if err != nil {
				c.log.Warn("icon resolution failed",
					zap.String("path", it.SourcePath), zap.Error(err))
				return
			}
			it.Icon = img
		}(&grp.Items[i])
	}
	wg.Wait()
}

// AddItems appends one item per path, resolving icons as it goes. Always
// persists when at least one path was given.
func (c *Controller) AddItems(paths []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLive {
		return ErrNotLive
	}
	changed := false
	for _, p := range paths {
		it := group.NewItem(p)
		if c.resolver != nil {
			img, err := c.resolver.Resolve(p)
			if err != nil {
				c.log.Warn("icon resolution failed",
					zap.String("path", p), zap.Error(err))
			} else {
				it.Icon = img
			}
		}
		if c.grp.AddItem(it) {
			changed = true
		}
	}
	if changed {
		c.window.SetItems(c.grp.Items)
		c.persist.Save(c.grp)
	}
	return nil
}

// RemoveItem drops the item at index i. Out-of-range indices are ignored
// without a write.
func (c *Controller) RemoveItem(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLive {
		return ErrNotLive
	}
	if c.grp.RemoveItem(i) {
		c.window.SetItems(c.grp.Items)
		c.persist.Save(c.grp)
	}
	return nil
}

// MoveResize records the window's new screen-space bounds. The persisted
// geometry is desktop-relative, so the embed offset is subtracted first.
func (c *Controller) MoveResize(screen group.Geometry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLive {
		return ErrNotLive
	}
	if c.grp.SetGeometry(desktop.ToDesktop(screen, c.offset)) {
		c.persist.Save(c.grp)
	}
	return nil
}

// SetBackground updates the background color.
func (c *Controller) SetBackground(col group.Color) error {
	return c.setAppearance(func() bool { return c.grp.SetBackground(col) })
}

// SetBorder updates the border color.
func (c *Controller) SetBorder(col group.Color) error {
	return c.setAppearance(func() bool { return c.grp.SetBorder(col) })
}

// SetOpacity updates the resting opacity.
func (c *Controller) SetOpacity(o float64) error {
	return c.setAppearance(func() bool { return c.grp.SetOpacity(o) })
}

func (c *Controller) setAppearance(mutate func() bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLive {
		return ErrNotLive
	}
	if !mutate() {
		return nil
	}
	c.window.SetAppearance(Appearance{
		Background: c.grp.Background,
		Border:     c.grp.Border,
		BorderSet:  c.grp.BorderSet,
		Opacity:    c.grp.Opacity,
	})
	c.persist.Save(c.grp)
	return nil
}

// Delete removes the group's record and closes its window. Unconditional:
// it runs from any state and always ends closed.
func (c *Controller) Delete() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed
	var identity string
	if c.grp != nil {
		identity = c.grp.Identity
	}
	var err error
	if identity != "" {
		if err = c.persist.Delete(identity); err != nil {
			c.log.Error("group file delete failed",
				zap.String("identity", identity), zap.Error(err))
		}
	}
	if c.window != nil {
		c.window.Close()
	}
	return err
}

// Close closes the window without touching the persisted record.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	if c.window != nil {
		c.window.Close()
	}
}
