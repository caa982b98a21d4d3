package store

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/weizlogy/desktop-grouping/internal/group"
)

// fileModel is the persisted shape of a group. Icons are render artifacts
// and never appear here; they are recomputed from sourcePath on load.
type fileModel struct {
	Identity        string       `json:"identity"`
	Items           []fileItem   `json:"items"`
	Geometry        fileGeometry `json:"geometry"`
	BackgroundColor string       `json:"backgroundColor"`
	BorderColor     string       `json:"borderColor,omitempty"`
	Opacity         float64      `json:"opacity"`
}

type fileItem struct {
	DisplayName string `json:"displayName"`
	SourcePath  string `json:"sourcePath"`
}

// fileGeometry uses -1 as the "never placed" sentinel on every field.
type fileGeometry struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// encode renders a group as indented JSON with HTML escaping off, so paths
// with &, <, and non-ASCII names stay readable in the file.
func encode(g *group.Group) ([]byte, error) {
	fm := fileModel{
		Identity: g.Identity,
		Items:    make([]fileItem, 0, len(g.Items)),
		Geometry: fileGeometry{
			Top:    g.Geometry.Top,
			Left:   g.Geometry.Left,
			Width:  g.Geometry.Width,
			Height: g.Geometry.Height,
		},
		BackgroundColor: g.Background.Hex(),
		Opacity:         g.Opacity,
	}
	if g.BorderSet {
		fm.BorderColor = g.Border.Hex()
	}
	for _, it := range g.Items {
		fm.Items = append(fm.Items, fileItem{DisplayName: it.DisplayName, SourcePath: it.SourcePath})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fm); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode parses a group file. Absent fields keep their defaults (the model
// is pre-seeded before unmarshalling) and unknown fields are ignored, so
// files written by newer versions still load. The identity argument is the
// filename key and is authoritative over whatever the payload claims.
func (gw *Gateway) decode(identity string, data []byte) (*group.Group, error) {
	fm := fileModel{
		Geometry:        fileGeometry{Top: group.GeometryUnset, Left: group.GeometryUnset, Width: group.GeometryUnset, Height: group.GeometryUnset},
		BackgroundColor: group.DefaultBackground.Hex(),
		Opacity:         group.DefaultOpacity,
	}
	if err := json.Unmarshal(data, &fm); err != nil {
		return nil, err
	}

	g := group.New(identity)
	g.Geometry = group.Geometry{
		Top:    fm.Geometry.Top,
		Left:   fm.Geometry.Left,
		Width:  fm.Geometry.Width,
		Height: fm.Geometry.Height,
	}
	g.SetOpacity(fm.Opacity)

	if c, err := group.ParseColor(fm.BackgroundColor); err == nil {
		g.Background = c
	} else {
		gw.log.Warn("invalid background color in group file, using default",
			zap.String("identity", identity), zap.String("value", fm.BackgroundColor))
	}
	if fm.BorderColor != "" {
		if c, err := group.ParseColor(fm.BorderColor); err == nil {
			g.Border = c
			g.BorderSet = true
		} else {
			gw.log.Warn("invalid border color in group file, ignoring",
				zap.String("identity", identity), zap.String("value", fm.BorderColor))
		}
	}

	for _, it := range fm.Items {
		item := group.Item{DisplayName: it.DisplayName, SourcePath: it.SourcePath}
		if item.DisplayName == "" && item.SourcePath != "" {
			item = group.NewItem(item.SourcePath)
		}
		g.Items = append(g.Items, item)
	}
	return g, nil
}
