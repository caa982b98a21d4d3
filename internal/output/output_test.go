package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/weizlogy/desktop-grouping/internal/group"
)

func capture(t *testing.T, print func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := print()
	w.Close()
	os.Stdout = old

	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func sampleGroup() *group.Group {
	g := group.New("20260830120000000")
	g.AddItem(group.NewItem("C:/tools/app.exe"))
	g.SetGeometry(group.Geometry{Top: 100, Left: 30, Width: 300, Height: 200})
	return g
}

func TestPrintYAML_GroupDetail(t *testing.T) {
	out := capture(t, func() error { return PrintYAML(Detail(sampleGroup())) })

	var decoded GroupDetail
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Identity != "20260830120000000" {
		t.Errorf("identity: got %q", decoded.Identity)
	}
	if len(decoded.Items) != 1 || decoded.Items[0].DisplayName != "app" {
		t.Errorf("items: got %+v", decoded.Items)
	}
	if decoded.Geometry == nil || decoded.Geometry.Top != 100 {
		t.Errorf("geometry: got %+v", decoded.Geometry)
	}
}

func TestPrintJSON_Compact(t *testing.T) {
	out := capture(t, func() error { return PrintJSON(Detail(sampleGroup())) })

	if strings.Count(out, "\n") != 1 {
		t.Errorf("compact JSON should be single-line, got:\n%s", out)
	}
	var decoded GroupDetail
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.BackgroundColor != "#00FFFFFF" {
		t.Errorf("backgroundColor: got %q", decoded.BackgroundColor)
	}
}

func TestPrintPrettyJSON_Indented(t *testing.T) {
	out := capture(t, func() error { return PrintPrettyJSON(Detail(sampleGroup())) })

	if !strings.Contains(out, "\n  ") {
		t.Errorf("pretty JSON should be indented, got:\n%s", out)
	}
}

func TestDetail_OmitsUnsetFields(t *testing.T) {
	g := group.New("20260830120000001")

	out := capture(t, func() error { return PrintJSON(Detail(g)) })

	if strings.Contains(out, "geometry") {
		t.Errorf("unplaced group should omit geometry, got:\n%s", out)
	}
	if strings.Contains(out, "borderColor") {
		t.Errorf("borderless group should omit borderColor, got:\n%s", out)
	}
}

func TestPrint_RespectsFormat(t *testing.T) {
	defer func() { OutputFormat = FormatYAML; PrettyOutput = false }()

	OutputFormat = FormatJSON
	out := capture(t, func() error { return Print(GroupSummary{Identity: "x", Items: 2}) })
	if !strings.HasPrefix(out, "{") {
		t.Errorf("json format: got %q", out)
	}

	OutputFormat = FormatYAML
	out = capture(t, func() error { return Print(GroupSummary{Identity: "x", Items: 2}) })
	if !strings.Contains(out, "identity: x") {
		t.Errorf("yaml format: got %q", out)
	}

	OutputFormat = Format("xml")
	if err := Print(GroupSummary{}); err == nil {
		t.Error("unsupported format should error")
	}
}
