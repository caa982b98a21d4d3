// Package store persists groups as one JSON file per group in a flat
// directory. Files are keyed by the group's identity with a fixed name
// prefix, so startup discovery is a directory scan and deleting a group is
// deleting its file. Saves are asynchronous with a queue depth of one per
// identity: a save issued while another is writing supersedes the queued
// payload instead of racing it.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/weizlogy/desktop-grouping/internal/group"
	"github.com/weizlogy/desktop-grouping/internal/logging"
)

const (
	// filePrefix + identity + fileExt is a group's on-disk name.
	filePrefix = "group-"
	fileExt    = ".json"
)

// CorruptError reports a group file that exists but cannot be parsed.
// It is deliberately distinct from the absent case so callers can tell a
// brand-new group apart from a damaged save.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt group file %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Gateway reads and writes group files under a single directory.
type Gateway struct {
	dir string
	log *logging.Logger

	mu    sync.Mutex
	slots map[string]*saveSlot
	wg    sync.WaitGroup
}

// saveSlot serializes writes for one identity.
type saveSlot struct {
	mu      sync.Mutex
	writing bool
	pending []byte
}

// NewGateway creates a gateway rooted at dir, creating it if needed.
func NewGateway(dir string, log *logging.Logger) (*Gateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create group directory: %w", err)
	}
	return &Gateway{dir: dir, log: log, slots: make(map[string]*saveSlot)}, nil
}

// Dir returns the directory the gateway persists into.
func (gw *Gateway) Dir() string { return gw.dir }

// Path returns the file path for an identity.
func (gw *Gateway) Path(identity string) string {
	return filepath.Join(gw.dir, filePrefix+identity+fileExt)
}

// Save schedules an asynchronous write of the group's current state. The
// payload snapshot is taken synchronously, so the caller may keep mutating
// the group afterwards. Saves for distinct identities are independent; for
// the same identity a newer save supersedes an undelivered older one.
// Write failures are logged, never surfaced: persistence trouble must not
// block window interaction.
func (gw *Gateway) Save(g *group.Group) {
	data, err := encode(g)
	if err != nil {
		// Only reachable with a non-finite float smuggled into geometry.
		gw.log.Error("failed to encode group", zap.String("identity", g.Identity), zap.Error(err))
		return
	}

	slot := gw.slot(g.Identity)
	path := gw.Path(g.Identity)

	slot.mu.Lock()
	slot.pending = data
	if slot.writing {
		slot.mu.Unlock()
		return
	}
	slot.writing = true
	slot.mu.Unlock()

	gw.wg.Add(1)
	go func() {
		defer gw.wg.Done()
		for {
			slot.mu.Lock()
			next := slot.pending
			slot.pending = nil
			if next == nil {
				slot.writing = false
				slot.mu.Unlock()
				return
			}
			slot.mu.Unlock()

			if err := os.WriteFile(path, next, 0o644); err != nil {
				gw.log.Error("failed to save group", zap.String("path", path), zap.Error(err))
			}
		}
	}()
}

// Sync blocks until every scheduled save has been written. Called at
// shutdown and by tests; runtime save paths never wait on it.
func (gw *Gateway) Sync() {
	gw.wg.Wait()
}

// Load reads the group for identity. The second return value is false when
// no file exists, the normal case for a brand-new group rather than an
// error.
// A file that exists but cannot be decoded yields a *CorruptError.
func (gw *Gateway) Load(identity string) (*group.Group, bool, error) {
	path := gw.Path(identity)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read group file %s: %w", path, err)
	}
	g, err := gw.decode(identity, data)
	if err != nil {
		gw.quarantine(path)
		return nil, false, &CorruptError{Path: path, Err: err}
	}
	return g, true, nil
}

// quarantine renames a corrupt group file aside so the forced save that
// follows a corrupt load cannot destroy whatever is left in it.
func (gw *Gateway) quarantine(path string) {
	backup := path + ".bak"
	if err := os.Rename(path, backup); err != nil {
		gw.log.Error("failed to set corrupt group file aside",
			zap.String("path", path), zap.Error(err))
		return
	}
	gw.log.Warn("corrupt group file set aside",
		zap.String("path", path), zap.String("backup", backup))
}

// Delete removes the group file. Deleting an already-absent file succeeds.
func (gw *Gateway) Delete(identity string) error {
	err := os.Remove(gw.Path(identity))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete group file: %w", err)
	}
	return nil
}

// List returns the identities of every persisted group, sorted for
// reproducible startup order.
func (gw *Gateway) List() ([]string, error) {
	entries, err := os.ReadDir(gw.dir)
	if err != nil {
		return nil, fmt.Errorf("scan group directory: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (gw *Gateway) slot(identity string) *saveSlot {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	s, ok := gw.slots[identity]
	if !ok {
		s = &saveSlot{}
		gw.slots[identity] = s
	}
	return s
}
