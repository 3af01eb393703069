package ogc

import (
	"net/http"
	"strconv"
	"strings"
)

// serveTMS answers the TMS shorthand path `/{layer}/{tms}/{z}/{x}/{y}.{ext}`
// (spec.md §6), a query-parameter-free alias for a WMTS GetTile against
// the layer's default style.
func (s *Service) serveTMS(w http.ResponseWriter, r *http.Request, segs []string) int {
	layerName, tmsName, zStr, xStr := segs[0], segs[1], segs[2], segs[3]
	yAndExt := segs[4]

	dot := strings.LastIndexByte(yAndExt, '.')
	if dot < 0 {
		exc := Except(InvalidParameter, "y", "tile path must end in .{ext}")
		WriteOWSExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}
	yStr, ext := yAndExt[:dot], yAndExt[dot+1:]

	layer, exc := s.resolveLayer(r.Context(), layerName)
	if exc != nil {
		WriteOWSExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}
	if tmsName != layer.TileMatrixSet.Name {
		exc := Except(InvalidParameter, "tms", "layer %q is not published under tile matrix set %q", layerName, tmsName)
		WriteOWSExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}

	z, zErr := strconv.Atoi(zStr)
	x, xErr := strconv.Atoi(xStr)
	y, yErr := strconv.Atoi(yStr)
	if zErr != nil || xErr != nil || yErr != nil {
		exc := Except(InvalidParameter, "z/x/y", "tile coordinates must be integers")
		WriteOWSExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}
	if z < 0 || z >= len(layer.TileMatrixSet.Levels) {
		exc := Except(TileOutOfRange, "z", "zoom level %d is out of range", z)
		WriteOWSExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}
	tileMatrixID := layer.TileMatrixSet.Levels[z].ID

	mime, ok := extToMime[strings.ToLower(ext)]
	if !ok {
		exc := Except(InvalidFormat, "ext", "unsupported extension %q", ext)
		WriteOWSExceptionReport(w, exc)
		return StatusFor(exc.Kind)
	}

	p := newParams(map[string][]string{
		"LAYER":         {layerName},
		"TILEMATRIXSET": {tmsName},
		"TILEMATRIX":    {tileMatrixID},
		"TILECOL":       {strconv.Itoa(x)},
		"TILEROW":       {strconv.Itoa(y)},
		"FORMAT":        {mime},
	})
	return s.wmtsGetTile(w, r, p)
}

var extToMime = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}
