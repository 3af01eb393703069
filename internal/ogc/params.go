package ogc

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rok4/rok4go/internal/codec"
)

// params wraps url.Values with case-insensitive lookup, since spec.md §6
// requires WMS/WMTS query keys to be matched regardless of case.
type params struct {
	values url.Values
	upper  map[string]string // uppercased key -> original key
}

func newParams(v url.Values) params {
	upper := make(map[string]string, len(v))
	for k := range v {
		upper[strings.ToUpper(k)] = k
	}
	return params{values: v, upper: upper}
}

func (p params) get(key string) string {
	orig, ok := p.upper[strings.ToUpper(key)]
	if !ok {
		return ""
	}
	return p.values.Get(orig)
}

func (p params) require(key string) (string, *Exception) {
	v := p.get(key)
	if v == "" {
		return "", Except(MissingParameter, key, "%s is required", key)
	}
	return v, nil
}

func (p params) requireInt(key string) (int, *Exception) {
	v, err := p.require(key)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(v)
	if convErr != nil {
		return 0, Except(InvalidParameter, key, "%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func (p params) requireFloats(key string, n int) ([]float64, *Exception) {
	v, err := p.require(key)
	if err != nil {
		return nil, err
	}
	fields := strings.Split(v, ",")
	if len(fields) != n {
		return nil, Except(InvalidParameter, key, "%s must have %d comma-separated values, got %d", key, n, len(fields))
	}
	out := make([]float64, n)
	for i, f := range fields {
		fv, convErr := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if convErr != nil {
			return nil, Except(InvalidParameter, key, "%s: value %q is not a number", key, f)
		}
		out[i] = fv
	}
	return out, nil
}

func (p params) boolDefault(key string, def bool) bool {
	v := p.get(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// outputFormat maps a WMS/WMTS FORMAT MIME type (spec.md §6, including
// the "image/x-bil;bits=32" DTM export form) to a codec.Format and the
// Content-Type to answer with.
func outputFormat(mime string) (codec.Format, string, *Exception) {
	base := mime
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		base = mime[:i]
	}
	base = strings.ToLower(strings.TrimSpace(base))
	switch base {
	case "image/png":
		return codec.FormatPNG, "image/png", nil
	case "image/jpeg", "image/jpg":
		return codec.FormatJPEG, "image/jpeg", nil
	case "image/tiff", "image/geotiff":
		return codec.FormatRaw, "image/tiff", nil
	case "image/x-bil", "image/bil":
		return codec.FormatBIL, "image/x-bil;bits=32", nil
	case "text/asciigrid", "image/x-aaigrid":
		return codec.FormatASCIIGrid, "text/plain", nil
	}
	return 0, "", Except(InvalidFormat, "FORMAT", "unsupported output format %q", mime)
}
