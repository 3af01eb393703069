package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/tms"
)

// keywordXML/metadataURLXML are the small display-metadata value types
// supplemented beyond spec.md's core pipeline (SPEC_FULL.md §4), carried
// through from the capabilities-oriented elements ServerXML/StyleXML show
// for Title/Abstract/Keywords/LegendURL.
type keywordXML struct {
	Value string `xml:",chardata"`
}

type metadataURLXML struct {
	Format string `xml:"format,attr"`
	Type   string `xml:"type,attr"`
	Href   string `xml:"href,attr"`
}

type layerXML struct {
	Identifier     string           `xml:"Identifier"`
	Title          []string         `xml:"Title"`
	Abstract       []string         `xml:"Abstract"`
	Keywords       []keywordXML     `xml:"Keywords>Keyword"`
	MetadataURL    []metadataURLXML `xml:"MetadataURL"`
	PyramidFile    string           `xml:"pyramid"`
	TileMatrixSet  string           `xml:"tileMatrixSet"`
	Styles         []string         `xml:"styles>style"`
	DefaultStyle   string           `xml:"defaultStyle"`
	WGS84BBox      string           `xml:"WGS84BoundingBox"`
	Resampling     string           `xml:"resampling"`
	MaxTileRows    int              `xml:"maxTileRow"`
}

// MetadataURL is one "see also" document link (ISO 19115/19139 metadata
// record, style sheets) listed in a layer's GetCapabilities entry.
type MetadataURL struct {
	Format string
	Type   string
	Href   string
}

// Layer ties one pyramid to the TileMatrixSet it is served through, the
// styles it supports, and the display metadata the capabilities documents
// list, with a shape implied by ServerXML's <layerList> and StyleXML's
// own metadata fields.
type Layer struct {
	Identifier    string
	Title         []string
	Abstract      []string
	Keywords      []string
	MetadataURL   []MetadataURL
	Pyramid       *tms.Pyramid
	TileMatrixSet *tms.TileMatrixSet
	Styles        map[string]*Style
	DefaultStyle  string
	WGS84BBox     georef.BoundingBox
	Resampling    string
}

// LoadLayer reads a Layer XML document, then resolves and loads its
// referenced TileMatrixSet, Pyramid and Style documents relative to
// tmsDir/pyramidDir/styleDir.
func LoadLayer(path, tmsDir, pyramidDir, styleDir string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading layer %s: %w", path, err)
	}
	var raw layerXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing layer %s: %w", path, err)
	}
	if raw.Identifier == "" {
		return nil, fmt.Errorf("config: %s: missing Identifier", path)
	}
	if raw.PyramidFile == "" || raw.TileMatrixSet == "" {
		return nil, fmt.Errorf("config: %s: layer requires pyramid and tileMatrixSet", path)
	}

	set, err := LoadTileMatrixSet(filepath.Join(tmsDir, raw.TileMatrixSet+".xml"))
	if err != nil {
		return nil, fmt.Errorf("config: layer %s: %w", path, err)
	}
	pyr, err := LoadPyramid(filepath.Join(pyramidDir, raw.PyramidFile), set)
	if err != nil {
		return nil, fmt.Errorf("config: layer %s: %w", path, err)
	}

	l := &Layer{
		Identifier:    raw.Identifier,
		Title:         raw.Title,
		Abstract:      raw.Abstract,
		Pyramid:       pyr,
		TileMatrixSet: set,
		Styles:        map[string]*Style{},
		DefaultStyle:  raw.DefaultStyle,
		Resampling:    raw.Resampling,
	}
	for _, k := range raw.Keywords {
		l.Keywords = append(l.Keywords, k.Value)
	}
	for _, m := range raw.MetadataURL {
		l.MetadataURL = append(l.MetadataURL, MetadataURL{Format: m.Format, Type: m.Type, Href: m.Href})
	}
	if raw.WGS84BBox != "" {
		box, err := parseWGS84BBox(raw.WGS84BBox)
		if err != nil {
			return nil, fmt.Errorf("config: layer %s: WGS84BoundingBox: %w", path, err)
		}
		l.WGS84BBox = box
	}
	for _, styleName := range raw.Styles {
		st, err := LoadStyle(filepath.Join(styleDir, styleName+".xml"))
		if err != nil {
			return nil, fmt.Errorf("config: layer %s: style %q: %w", path, styleName, err)
		}
		l.Styles[st.Identifier] = st
	}
	if l.DefaultStyle == "" && len(raw.Styles) > 0 {
		l.DefaultStyle = raw.Styles[0]
	}

	return l, nil
}

func parseWGS84BBox(s string) (georef.BoundingBox, error) {
	var xmin, ymin, xmax, ymax float64
	if _, err := fmt.Sscanf(s, "%g %g %g %g", &xmin, &ymin, &xmax, &ymax); err != nil {
		return georef.BoundingBox{}, fmt.Errorf("invalid bbox %q", s)
	}
	return georef.BoundingBox{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax, CRS: "CRS:84"}, nil
}
