package config

import (
	"encoding/xml"
	"fmt"
	"os"

	styleimg "github.com/rok4/rok4go/internal/pipeline/style"
)

// colourXML is one <colour> breakpoint inside a <palette>, matching
// StyleXML.cpp's per-stop red/green/blue/alpha elements.
type colourXML struct {
	Value float64 `xml:"value,attr"`
	Red   uint8   `xml:"red"`
	Green uint8   `xml:"green"`
	Blue  uint8   `xml:"blue"`
	Alpha *uint8  `xml:"alpha"`
}

type paletteXML struct {
	RGBContinuous   bool        `xml:"rgbContinuous,attr"`
	AlphaContinuous bool        `xml:"alphaContinuous,attr"`
	NoAlpha         bool        `xml:"noAlpha,attr"`
	Colours         []colourXML `xml:"colour"`
}

type estompageXML struct {
	Angle        *int     `xml:"angle,attr"`
	Exaggeration *float64 `xml:"exaggeration,attr"`
	Center       *int     `xml:"center,attr"`
}

type legendURLXML struct {
	Format string `xml:"format,attr"`
	Href   string `xml:"href,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

type styleXML struct {
	Identifier string         `xml:"Identifier"`
	Title      []string       `xml:"Title"`
	Abstract   []string       `xml:"Abstract"`
	Keywords   []string       `xml:"Keywords>Keyword"`
	LegendURL  []legendURLXML `xml:"LegendURL"`
	Palette    paletteXML     `xml:"palette"`
	Estompage  *estompageXML  `xml:"estompage"`
}

// LegendURL is the rendered legend image metadata attached to a Style's
// GetCapabilities entry (spec.md's "display metadata" supplemented
// feature).
type LegendURL struct {
	Format string
	Href   string
	Width  int
	Height int
}

// Hillshade holds the "estompage" shaded-relief parameters: light azimuth
// in degrees (-1 meaning unset/use the caller's default), a vertical
// exaggeration factor, and the estompage center flag. Rendering
// (compose.applyStyle) reads only Angle; Exaggeration and Center are
// parsed and carried but not applied.
type Hillshade struct {
	Angle        int
	Exaggeration float64
	Center       bool
}

// Style is one named rendering: a palette for classified/continuous
// single-band rasters, optional hillshade parameters, and the display
// metadata (title/abstract/keywords/legend) rok4d's GetCapabilities
// response lists per style.
type Style struct {
	Identifier string
	Title      []string
	Abstract   []string
	Keywords   []string
	LegendURL  []LegendURL
	Palette    *styleimg.Palette
	Hillshade  *Hillshade
}

// LoadStyle reads one Style XML document, grounded on
// original_source/rok4/StyleXML.cpp.
func LoadStyle(path string) (*Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading style %s: %w", path, err)
	}
	var raw styleXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing style %s: %w", path, err)
	}
	if raw.Identifier == "" {
		return nil, fmt.Errorf("config: %s: missing Identifier", path)
	}

	s := &Style{
		Identifier: raw.Identifier,
		Title:      raw.Title,
		Abstract:   raw.Abstract,
		Keywords:   raw.Keywords,
	}
	for _, l := range raw.LegendURL {
		s.LegendURL = append(s.LegendURL, LegendURL{Format: l.Format, Href: l.Href, Width: l.Width, Height: l.Height})
	}

	if len(raw.Palette.Colours) > 0 {
		mode := styleimg.RGBContinuous
		switch {
		case raw.Palette.AlphaContinuous:
			mode = styleimg.AlphaContinuous
		case raw.Palette.NoAlpha:
			mode = styleimg.NoAlpha
		}
		stops := make([]styleimg.Stop, 0, len(raw.Palette.Colours))
		for _, c := range raw.Palette.Colours {
			a := uint8(255)
			if c.Alpha != nil {
				a = *c.Alpha
			}
			stops = append(stops, styleimg.Stop{Value: c.Value, R: c.Red, G: c.Green, B: c.Blue, A: a})
		}
		s.Palette = styleimg.NewPalette(mode, stops)
	}

	if raw.Estompage != nil {
		h := &Hillshade{Angle: -1, Exaggeration: 1}
		if raw.Estompage.Angle != nil {
			h.Angle = *raw.Estompage.Angle
		}
		if raw.Estompage.Exaggeration != nil {
			h.Exaggeration = *raw.Estompage.Exaggeration
		}
		if raw.Estompage.Center != nil {
			h.Center = *raw.Estompage.Center != 0
		}
		s.Hillshade = h
	}

	return s, nil
}
