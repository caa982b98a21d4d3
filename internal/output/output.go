package output

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weizlogy/desktop-grouping/internal/group"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// GroupSummary is one row of the `list` command.
type GroupSummary struct {
	Identity string `yaml:"identity"        json:"identity"`
	Items    int    `yaml:"items"           json:"items"`
	File     string `yaml:"file,omitempty"  json:"file,omitempty"`
}

// ItemDetail is one item inside a GroupDetail.
type ItemDetail struct {
	DisplayName string `yaml:"displayName" json:"displayName"`
	SourcePath  string `yaml:"sourcePath"  json:"sourcePath"`
}

// GeometryDetail is the placement block of a GroupDetail; nil when the
// group has never been positioned.
type GeometryDetail struct {
	Top    float64 `yaml:"top"    json:"top"`
	Left   float64 `yaml:"left"   json:"left"`
	Width  float64 `yaml:"width"  json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// GroupDetail is the top-level output of the `show` command.
type GroupDetail struct {
	Identity        string          `yaml:"identity"              json:"identity"`
	Items           []ItemDetail    `yaml:"items"                 json:"items"`
	Geometry        *GeometryDetail `yaml:"geometry,omitempty"    json:"geometry,omitempty"`
	BackgroundColor string          `yaml:"backgroundColor"       json:"backgroundColor"`
	BorderColor     string          `yaml:"borderColor,omitempty" json:"borderColor,omitempty"`
	Opacity         float64         `yaml:"opacity"               json:"opacity"`
}

// Detail flattens a group into its command output shape.
func Detail(g *group.Group) GroupDetail {
	d := GroupDetail{
		Identity:        g.Identity,
		Items:           make([]ItemDetail, 0, len(g.Items)),
		BackgroundColor: g.Background.Hex(),
		Opacity:         g.Opacity,
	}
	for _, it := range g.Items {
		d.Items = append(d.Items, ItemDetail{
			DisplayName: it.DisplayName,
			SourcePath:  it.SourcePath,
		})
	}
	if !g.Geometry.Unset() {
		d.Geometry = &GeometryDetail{
			Top:    g.Geometry.Top,
			Left:   g.Geometry.Left,
			Width:  g.Geometry.Width,
			Height: g.Geometry.Height,
		}
	}
	if g.BorderSet {
		d.BorderColor = g.Border.Hex()
	}
	return d
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
