package store

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/weizlogy/desktop-grouping/internal/group"
	"github.com/weizlogy/desktop-grouping/internal/logging"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	gw, err := NewGateway(t.TempDir(), logging.NewNop())
	if err != nil {
		t.Fatalf("gateway creation failed: %v", err)
	}
	return gw
}

func sampleGroup() *group.Group {
	g := group.New("20240101120000123")
	g.AddItem(group.NewItem("/home/user/photo.png"))
	g.AddItem(group.NewItem("/home/user/tool.exe"))
	g.SetGeometry(group.Geometry{Top: 100, Left: 50, Width: 300, Height: 200})
	g.SetBackground(group.Color{A: 0x99, R: 0xFF, G: 0xFF, B: 0xFF})
	g.SetBorder(group.Color{A: 0xFF, R: 0x10, G: 0x20, B: 0x30})
	g.SetOpacity(0.75)
	return g
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	gw := newTestGateway(t)
	g := sampleGroup()

	gw.Save(g)
	gw.Sync()

	loaded, ok, err := gw.Load(g.Identity)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected group file to exist")
	}
	if loaded.Identity != g.Identity {
		t.Errorf("identity: got %s, want %s", loaded.Identity, g.Identity)
	}
	if len(loaded.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded.Items))
	}
	if loaded.Items[0].DisplayName != "photo" || loaded.Items[0].SourcePath != "/home/user/photo.png" {
		t.Errorf("item 0 mismatch: %+v", loaded.Items[0])
	}
	if loaded.Items[1].DisplayName != "tool" {
		t.Errorf("item order not preserved: %+v", loaded.Items)
	}
	if loaded.Geometry != g.Geometry {
		t.Errorf("geometry: got %+v, want %+v", loaded.Geometry, g.Geometry)
	}
	if loaded.Background != g.Background {
		t.Errorf("background: got %+v, want %+v", loaded.Background, g.Background)
	}
	if !loaded.BorderSet || loaded.Border != g.Border {
		t.Errorf("border: got %+v (set=%v)", loaded.Border, loaded.BorderSet)
	}
	if loaded.Opacity != 0.75 {
		t.Errorf("opacity: got %v", loaded.Opacity)
	}
	if loaded.Items[0].Icon != nil {
		t.Error("icons must never survive a load")
	}
}

func TestLoad_Absent(t *testing.T) {
	gw := newTestGateway(t)
	g, ok, err := gw.Load("19990101000000000")
	if err != nil {
		t.Fatalf("absent file must not be an error, got %v", err)
	}
	if ok || g != nil {
		t.Error("expected absent result")
	}
}

func TestLoad_Corrupt(t *testing.T) {
	gw := newTestGateway(t)
	if err := os.WriteFile(gw.Path("20240101120000000"), []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, ok, err := gw.Load("20240101120000000")
	if err == nil {
		t.Fatal("expected corruption error")
	}
	var ce *CorruptError
	if !errors.As(err, &ce) {
		t.Errorf("expected *CorruptError, got %T", err)
	}
	if ok {
		t.Error("corrupt load must not report ok")
	}
}

func TestLoad_CorruptFileSetAside(t *testing.T) {
	gw := newTestGateway(t)
	id := "20240101120000000"
	damaged := []byte("{truncated")
	if err := os.WriteFile(gw.Path(id), damaged, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := gw.Load(id); err == nil {
		t.Fatal("expected corruption error")
	}

	// The damaged bytes must survive the forced save that follows.
	backup, err := os.ReadFile(gw.Path(id) + ".bak")
	if err != nil {
		t.Fatalf("expected a backup of the corrupt file: %v", err)
	}
	if string(backup) != string(damaged) {
		t.Errorf("backup altered: %q", backup)
	}

	gw.Save(group.New(id))
	gw.Sync()
	if _, ok, err := gw.Load(id); err != nil || !ok {
		t.Fatalf("fresh save after quarantine should load: ok=%v err=%v", ok, err)
	}

	// Backups do not reappear as groups on the next startup scan.
	ids, err := gw.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("unexpected identities: %v", ids)
	}
}

func TestLoad_AbsentFieldsDefault(t *testing.T) {
	gw := newTestGateway(t)
	// A minimal file from an older version: only items are present.
	content := `{"items":[{"displayName":"a","sourcePath":"/a"}],"unknownField":42}`
	if err := os.WriteFile(gw.Path("20240101120000000"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	g, ok, err := gw.Load("20240101120000000")
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	if !g.Geometry.Unset() {
		t.Errorf("absent geometry should default to unset, got %+v", g.Geometry)
	}
	if g.Background != group.DefaultBackground {
		t.Errorf("absent background should default, got %+v", g.Background)
	}
	if g.BorderSet {
		t.Error("absent border should stay unset")
	}
	if g.Opacity != group.DefaultOpacity {
		t.Errorf("absent opacity should default to %v, got %v", group.DefaultOpacity, g.Opacity)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	gw := newTestGateway(t)
	g := sampleGroup()
	gw.Save(g)
	gw.Sync()

	if err := gw.Delete(g.Identity); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := gw.Delete(g.Identity); err != nil {
		t.Fatalf("second delete must succeed: %v", err)
	}
	if _, ok, _ := gw.Load(g.Identity); ok {
		t.Error("file should be gone")
	}
}

func TestList_SortedIdentities(t *testing.T) {
	gw := newTestGateway(t)
	for _, id := range []string{"20240301000000000", "20240101000000000", "20240201000000000"} {
		gw.Save(group.New(id))
	}
	gw.Sync()
	// Noise the scan must ignore.
	os.WriteFile(gw.Path(""), []byte("{}"), 0o644)                                  // prefix with empty identity
	os.WriteFile(gw.Dir()+string(os.PathSeparator)+"notes.txt", []byte("x"), 0o644) // unrelated file

	ids, err := gw.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"20240101000000000", "20240201000000000", "20240301000000000"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d identities, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestSave_SupersedesInFlight(t *testing.T) {
	gw := newTestGateway(t)
	g := group.New("20240101120000000")
	// Rapid saves of the same identity must not interleave; the file ends
	// up holding the last payload.
	for i := 0; i < 50; i++ {
		g.SetOpacity(float64(i) / 100)
		gw.Save(g)
	}
	gw.Sync()

	loaded, ok, err := gw.Load(g.Identity)
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	if loaded.Opacity != 0.49 {
		t.Errorf("expected last payload to win, got opacity %v", loaded.Opacity)
	}
}

func TestEncode_PrettyAndUnescaped(t *testing.T) {
	g := group.New("20240101120000000")
	g.AddItem(group.NewItem("/files/a&b <видео>.png"))
	data, err := encode(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "\n  ") {
		t.Error("expected indented output")
	}
	if strings.Contains(s, `\u0026`) || strings.Contains(s, `\u003c`) {
		t.Errorf("HTML escaping should be off: %s", s)
	}
	if !strings.Contains(s, "a&b <видео>") {
		t.Errorf("path should appear verbatim: %s", s)
	}
	if !json.Valid(data) {
		t.Error("encoded output is not valid JSON")
	}
}
