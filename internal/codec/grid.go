package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rok4/rok4go/internal/pipeline/img"
)

// NoDataValue is the sentinel written for missing samples in BIL/ASCII
// grid exports, matching the convention of common DTM tooling (e.g.
// ESRI ASCII grid's default NODATA_value).
const NoDataValue = -99999.00

// EncodeBIL writes a headerless little-endian float32 raster alongside a
// companion .hdr text (returned separately so callers can name the pair
// "name.bil"/"name.hdr" as the format requires).
func EncodeBIL(src img.Image) (data []byte, header string, err error) {
	w, h := src.Width(), src.Height()
	if src.Channels() != 1 {
		return nil, "", fmt.Errorf("codec: BIL export requires a single-channel elevation source, got %d channels", src.Channels())
	}
	var buf bytes.Buffer
	for y := 0; y < h; y++ {
		line, err := src.GetLineF32(y)
		if err != nil {
			return nil, "", err
		}
		for _, v := range line {
			if math.IsNaN(float64(v)) {
				v = NoDataValue
			}
			if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
				return nil, "", err
			}
		}
	}

	box := src.BBox()
	header = fmt.Sprintf(
		"ncols %d\nnrows %d\nxllcorner %.6f\nyllcorner %.6f\ncellsize %.6f\nnodata %.2f\nbyteorder LSBFIRST\nnbits 32\nlayout bil\n",
		w, h, box.XMin, box.YMin, src.ResolutionX(), NoDataValue,
	)
	return buf.Bytes(), header, nil
}

// EncodeASCIIGrid writes the ESRI ASCII grid format: a six-line header
// followed by nrows lines of nncols space-separated values, each
// formatted to two decimal places.
func EncodeASCIIGrid(src img.Image) ([]byte, error) {
	w, h := src.Width(), src.Height()
	if src.Channels() != 1 {
		return nil, fmt.Errorf("codec: ASCII grid export requires a single-channel elevation source, got %d channels", src.Channels())
	}
	box := src.BBox()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ncols %d\n", w)
	fmt.Fprintf(&buf, "nrows %d\n", h)
	fmt.Fprintf(&buf, "xllcorner %.6f\n", box.XMin)
	fmt.Fprintf(&buf, "yllcorner %.6f\n", box.YMin)
	fmt.Fprintf(&buf, "cellsize %.6f\n", src.ResolutionX())
	fmt.Fprintf(&buf, "NODATA_value %.2f\n", NoDataValue)

	for y := 0; y < h; y++ {
		line, err := src.GetLineF32(y)
		if err != nil {
			return nil, err
		}
		for x, v := range line {
			if x > 0 {
				buf.WriteByte(' ')
			}
			if math.IsNaN(float64(v)) {
				fmt.Fprintf(&buf, "%.2f", float64(NoDataValue))
			} else {
				fmt.Fprintf(&buf, "%.2f", v)
			}
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
