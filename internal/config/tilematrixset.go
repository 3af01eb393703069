package config

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/rok4/rok4go/internal/tms"
)

// tileMatrixSetXML follows the OGC WMTS TileMatrixSet document shape
// (the same document rok4 publishes verbatim from GetCapabilities), not
// ServerXML's internal structs: <TileMatrixSet><Identifier/><SupportedCRS/>
// <TileMatrix>*</TileMatrixSet>, each <TileMatrix> carrying ScaleDenominator
// or a direct resolution, a TopLeftCorner pair, TileWidth/TileHeight and
// MatrixWidth/MatrixHeight.
type tileMatrixSetXML struct {
	Identifier   string            `xml:"Identifier"`
	SupportedCRS string            `xml:"SupportedCRS"`
	TileMatrix   []tileMatrixEntry `xml:"TileMatrix"`
}

type tileMatrixEntry struct {
	Identifier     string  `xml:"Identifier"`
	Resolution     float64 `xml:"Resolution"`
	TopLeftCorner  string  `xml:"TopLeftCorner"`
	TileWidth      int     `xml:"TileWidth"`
	TileHeight     int     `xml:"TileHeight"`
	MatrixWidth    int     `xml:"MatrixWidth"`
	MatrixHeight   int     `xml:"MatrixHeight"`
}

// LoadTileMatrixSet reads one TileMatrixSet XML document.
func LoadTileMatrixSet(path string) (*tms.TileMatrixSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading tile matrix set %s: %w", path, err)
	}
	var raw tileMatrixSetXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing tile matrix set %s: %w", path, err)
	}
	if raw.Identifier == "" {
		return nil, fmt.Errorf("config: %s: missing Identifier", path)
	}
	if len(raw.TileMatrix) == 0 {
		return nil, fmt.Errorf("config: %s: no TileMatrix entries", path)
	}

	set := &tms.TileMatrixSet{
		Name: raw.Identifier,
		CRS:  raw.SupportedCRS,
	}
	for _, m := range raw.TileMatrix {
		x, y, err := parseTopLeftCorner(m.TopLeftCorner)
		if err != nil {
			return nil, fmt.Errorf("config: %s: tile matrix %q: %w", path, m.Identifier, err)
		}
		set.Levels = append(set.Levels, tms.TileMatrix{
			ID:         m.Identifier,
			Resolution: m.Resolution,
			TopLeftX:   x,
			TopLeftY:   y,
			TileWidth:  m.TileWidth,
			TileHeight: m.TileHeight,
			MatrixW:    m.MatrixWidth,
			MatrixH:    m.MatrixHeight,
		})
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return set, nil
}

func parseTopLeftCorner(s string) (x, y float64, err error) {
	if _, err = fmt.Sscanf(s, "%g %g", &x, &y); err != nil {
		return 0, 0, fmt.Errorf("invalid TopLeftCorner %q", s)
	}
	return x, y, nil
}
