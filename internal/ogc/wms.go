package ogc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rok4/rok4go/internal/codec"
	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/compose"
	"github.com/rok4/rok4go/internal/pipeline/kernel"
)

func (s *Service) serveWMS(w http.ResponseWriter, r *http.Request, p params, req string) int {
	switch req {
	case "GETCAPABILITIES":
		return s.wmsGetCapabilities(w)
	case "GETMAP":
		return s.wmsGetMap(w, r, p)
	case "GETFEATUREINFO":
		return s.wmsGetFeatureInfo(w, r, p)
	case "":
		exc := Except(MissingParameter, "REQUEST", "REQUEST is required")
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	default:
		exc := Except(OperationNotSupported, "REQUEST", "unsupported WMS request %q", req)
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}
}

// buildMapRequest extracts the parameters shared by GetMap/GetFeatureInfo.
func (s *Service) buildMapRequest(ctx context.Context, p params) (composeReq compose.Request, contentType string, exc *Exception) {
	layerName, exc := p.require("LAYERS")
	if exc != nil {
		return compose.Request{}, "", exc
	}
	layer, exc := s.resolveLayer(ctx, layerName)
	if exc != nil {
		return compose.Request{}, "", exc
	}
	style, exc := s.resolveStyle(layer, p.get("STYLES"))
	if exc != nil {
		return compose.Request{}, "", exc
	}

	crsStr := p.get("CRS")
	if crsStr == "" {
		crsStr = p.get("SRS")
	}
	if crsStr == "" {
		return compose.Request{}, "", Except(MissingParameter, "CRS", "CRS (or SRS) is required")
	}
	crs, perr := georef.ParseCRS(crsStr)
	if perr != nil {
		return compose.Request{}, "", Except(InvalidCRS, "CRS", "%s", perr)
	}
	if !crs.Proj4Compatible() {
		return compose.Request{}, "", Except(InvalidCRS, "CRS", "CRS %s is not supported", crs)
	}

	bboxVals, exc := p.requireFloats("BBOX", 4)
	if exc != nil {
		return compose.Request{}, "", exc
	}
	bbox := georef.BoundingBox{XMin: bboxVals[0], YMin: bboxVals[1], XMax: bboxVals[2], YMax: bboxVals[3], CRS: crs.String()}
	if !bbox.Valid() {
		return compose.Request{}, "", Except(InvalidParameter, "BBOX", "BBOX must have xmin<xmax and ymin<ymax")
	}

	width, exc := p.requireInt("WIDTH")
	if exc != nil {
		return compose.Request{}, "", exc
	}
	height, exc := p.requireInt("HEIGHT")
	if exc != nil {
		return compose.Request{}, "", exc
	}
	if width <= 0 || height <= 0 || width > 10000 || height > 10000 {
		return compose.Request{}, "", Except(InvalidParameter, "WIDTH/HEIGHT", "WIDTH and HEIGHT must be in (0, 10000]")
	}

	resampling := kernel.Linear
	if k, ok := kernel.ParseKind(layer.Resampling); ok {
		resampling = k
	}

	_, contentType, exc = outputFormat(formatOrDefault(p))
	if exc != nil {
		return compose.Request{}, "", exc
	}

	return compose.Request{
		Layer:      layer,
		Style:      style,
		BBox:       bbox,
		CRS:        crs,
		Width:      width,
		Height:     height,
		Resampling: resampling,
	}, contentType, nil
}

func formatOrDefault(p params) string {
	f := p.get("FORMAT")
	if f == "" {
		return "image/png"
	}
	return f
}

func (s *Service) wmsGetMap(w http.ResponseWriter, r *http.Request, p params) int {
	composeReq, _, exc := s.buildMapRequest(r.Context(), p)
	if exc != nil {
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}
	outFormat, contentType, exc := outputFormat(formatOrDefault(p))
	if exc != nil {
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}

	img, err := compose.Build(r.Context(), s.Transformer, composeReq)
	if err != nil {
		exc := asException(err)
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}

	data, err := codec.Export(img, outFormat, 85)
	if err != nil {
		exc := Except(NoApplicableCode, "", "encoding response: %s", err)
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return http.StatusOK
}

// wmsGetFeatureInfo answers a single-pixel probe of the rendered map,
// reading the sample directly from the composed image rather than a
// separate vector query path (spec.md §6's GetFeatureInfo is pixel-value
// introspection over the raster pipeline, not attribute lookup).
func (s *Service) wmsGetFeatureInfo(w http.ResponseWriter, r *http.Request, p params) int {
	composeReq, _, exc := s.buildMapRequest(r.Context(), p)
	if exc != nil {
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}

	i, exc := p.requireInt("I")
	if exc != nil {
		i, exc = p.requireInt("X")
		if exc != nil {
			WriteServiceExceptionReport(w, exc)
			return StatusFor(exc.Kind)
		}
	}
	j, exc := p.requireInt("J")
	if exc != nil {
		j, exc = p.requireInt("Y")
		if exc != nil {
			WriteServiceExceptionReport(w, exc)
			return StatusFor(exc.Kind)
		}
	}
	if i < 0 || i >= composeReq.Width || j < 0 || j >= composeReq.Height {
		exc := Except(InvalidPoint, "I,J", "point (%d,%d) is outside the requested raster", i, j)
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}

	built, err := compose.Build(r.Context(), s.Transformer, composeReq)
	if err != nil {
		exc := asException(err)
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}
	line, err := built.GetLineU8(j)
	if err != nil {
		exc := Except(NoApplicableCode, "", "reading pixel: %s", err)
		WriteServiceExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}
	c := built.Channels()
	values := line[i*c : (i+1)*c]

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for idx, v := range values {
		if idx > 0 {
			fmt.Fprint(w, ",")
		}
		fmt.Fprintf(w, "%d", v)
	}
	return http.StatusOK
}
