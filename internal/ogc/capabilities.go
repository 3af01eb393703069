package ogc

import (
	"encoding/xml"
	"net/http"
	"sort"
)

// Minimal WMS 1.3.0 Capabilities document: enough for a client to
// discover layers, styles, and bounding boxes (spec.md §6). Full
// dimension/metadata advertisement is not attempted.
type wmsCapabilities struct {
	XMLName xml.Name        `xml:"WMS_Capabilities"`
	Version string          `xml:"version,attr"`
	Service wmsServiceInfo  `xml:"Service"`
	Cap     wmsCapabilityEl `xml:"Capability"`
}

type wmsServiceInfo struct {
	Name  string `xml:"Name"`
	Title string `xml:"Title"`
}

type wmsCapabilityEl struct {
	Request wmsRequestEl `xml:"Request"`
	Layer   []wmsLayerEl `xml:"Layer"`
}

type wmsRequestEl struct {
	GetMap wmsOperationEl `xml:"GetMap"`
}

type wmsOperationEl struct {
	Format []string `xml:"Format"`
}

type wmsLayerEl struct {
	Name     string        `xml:"Name"`
	Title    string        `xml:"Title"`
	CRS      []string      `xml:"CRS"`
	BBox     wmsBBoxEl     `xml:"BoundingBox"`
	Style    []wmsStyleEl  `xml:"Style"`
}

type wmsBBoxEl struct {
	CRS  string  `xml:"CRS,attr"`
	Xmin float64 `xml:"minx,attr"`
	Ymin float64 `xml:"miny,attr"`
	Xmax float64 `xml:"maxx,attr"`
	Ymax float64 `xml:"maxy,attr"`
}

type wmsStyleEl struct {
	Name  string `xml:"Name"`
	Title string `xml:"Title"`
}

func (s *Service) wmsGetCapabilities(w http.ResponseWriter) int {
	doc := wmsCapabilities{
		Version: "1.3.0",
		Service: wmsServiceInfo{Name: "WMS", Title: s.serverTitle()},
		Cap: wmsCapabilityEl{
			Request: wmsRequestEl{GetMap: wmsOperationEl{Format: []string{"image/png", "image/jpeg", "image/tiff"}}},
		},
	}
	for _, name := range s.sortedLayerNames() {
		layer := s.Layers[name]
		box := layer.WGS84BBox
		el := wmsLayerEl{
			Name:  layer.Identifier,
			Title: firstOr(layer.Title, layer.Identifier),
			CRS:   []string{layer.TileMatrixSet.CRS},
			BBox:  wmsBBoxEl{CRS: "CRS:84", Xmin: box.XMin, Ymin: box.YMin, Xmax: box.XMax, Ymax: box.YMax},
		}
		for styleName := range layer.Styles {
			el.Style = append(el.Style, wmsStyleEl{Name: styleName, Title: styleName})
		}
		doc.Cap.Layer = append(doc.Cap.Layer, el)
	}
	writeXML(w, http.StatusOK, doc)
	return http.StatusOK
}

// Minimal WMTS 1.0.0 Capabilities document (OGC OWS common + WMTS
// extension), enough to advertise layers/tile matrix sets/tile URL
// templates per spec.md §6.
type wmtsCapabilities struct {
	XMLName  xml.Name              `xml:"Capabilities"`
	XMLNS    string                `xml:"xmlns,attr"`
	Version  string                `xml:"version,attr"`
	Contents wmtsContentsEl        `xml:"Contents"`
}

type wmtsContentsEl struct {
	Layer         []wmtsLayerEl         `xml:"Layer"`
	TileMatrixSet []wmtsTileMatrixSetEl `xml:"TileMatrixSet"`
}

type wmtsLayerEl struct {
	Identifier string                 `xml:"ows:Identifier"`
	Title      string                 `xml:"ows:Title"`
	Format     []string               `xml:"Format"`
	Style      []wmtsStyleEl          `xml:"Style"`
	TMSLink    []wmtsTMSLinkEl        `xml:"TileMatrixSetLink"`
}

type wmtsStyleEl struct {
	Identifier string `xml:"ows:Identifier"`
	IsDefault  bool   `xml:"isDefault,attr"`
}

type wmtsTMSLinkEl struct {
	TileMatrixSet string `xml:"TileMatrixSet"`
}

type wmtsTileMatrixSetEl struct {
	Identifier string             `xml:"ows:Identifier"`
	CRS        string             `xml:"ows:SupportedCRS"`
	TileMatrix []wmtsTileMatrixEl `xml:"TileMatrix"`
}

type wmtsTileMatrixEl struct {
	Identifier    string  `xml:"ows:Identifier"`
	ScaleDenom    float64 `xml:"ScaleDenominator"`
	TopLeftCorner string  `xml:"TopLeftCorner"`
	TileWidth     int     `xml:"TileWidth"`
	TileHeight    int     `xml:"TileHeight"`
	MatrixWidth   int     `xml:"MatrixWidth"`
	MatrixHeight  int     `xml:"MatrixHeight"`
}

func (s *Service) wmtsGetCapabilities(w http.ResponseWriter) int {
	doc := wmtsCapabilities{XMLNS: "http://www.opengis.net/wmts/1.0", Version: "1.0.0"}
	seen := map[string]bool{}
	for _, name := range s.sortedLayerNames() {
		layer := s.Layers[name]
		le := wmtsLayerEl{
			Identifier: layer.Identifier,
			Title:      firstOr(layer.Title, layer.Identifier),
			Format:     []string{"image/png", "image/jpeg"},
			TMSLink:    []wmtsTMSLinkEl{{TileMatrixSet: layer.TileMatrixSet.Name}},
		}
		for styleName := range layer.Styles {
			le.Style = append(le.Style, wmtsStyleEl{Identifier: styleName, IsDefault: styleName == layer.DefaultStyle})
		}
		doc.Contents.Layer = append(doc.Contents.Layer, le)

		if !seen[layer.TileMatrixSet.Name] {
			seen[layer.TileMatrixSet.Name] = true
			tmsEl := wmtsTileMatrixSetEl{Identifier: layer.TileMatrixSet.Name, CRS: layer.TileMatrixSet.CRS}
			for _, m := range layer.TileMatrixSet.Levels {
				tmsEl.TileMatrix = append(tmsEl.TileMatrix, wmtsTileMatrixEl{
					Identifier:   m.ID,
					ScaleDenom:   m.Resolution / 0.00028,
					TileWidth:    m.TileWidth,
					TileHeight:   m.TileHeight,
					MatrixWidth:  m.MatrixW,
					MatrixHeight: m.MatrixH,
				})
			}
			doc.Contents.TileMatrixSet = append(doc.Contents.TileMatrixSet, tmsEl)
		}
	}
	writeXML(w, http.StatusOK, doc)
	return http.StatusOK
}

func (s *Service) serverTitle() string {
	return "rok4d"
}

func (s *Service) sortedLayerNames() []string {
	names := make([]string, 0, len(s.Layers))
	for n := range s.Layers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func firstOr(ss []string, def string) string {
	if len(ss) > 0 {
		return ss[0]
	}
	return def
}
