// Package compose wires the full TileSource -> MosaicImage -> ExtendedImage
// -> [Grid+ReprojectedImage] -> ResampledImage -> StyledImage chain of
// spec.md §2's pipeline diagram into one call, shared by internal/ogc's
// WMS/WMTS handlers and cmd/rok4ctl's tile inspection subcommands.
package compose

import (
	"context"
	"fmt"

	"github.com/rok4/rok4go/internal/config"
	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/pipeline/extend"
	"github.com/rok4/rok4go/internal/pipeline/grid"
	"github.com/rok4/rok4go/internal/pipeline/img"
	"github.com/rok4/rok4go/internal/pipeline/kernel"
	"github.com/rok4/rok4go/internal/pipeline/mosaic"
	"github.com/rok4/rok4go/internal/pipeline/reproject"
	"github.com/rok4/rok4go/internal/pipeline/resample"
	"github.com/rok4/rok4go/internal/pipeline/source"
	"github.com/rok4/rok4go/internal/pipeline/style"
	"github.com/rok4/rok4go/internal/tms"
)

// Request describes one rendering of a layer: the output raster shape, its
// georeferenced envelope and CRS, the resampling kernel, and the style to
// apply (nil for "no styling", i.e. raw pyramid samples passed through).
type Request struct {
	Layer      *config.Layer
	Style      *config.Style
	BBox       georef.BoundingBox
	CRS        georef.CRS
	Width      int
	Height     int
	Resampling kernel.Kind
}

// marginForKernel returns the extra border, in source pixels, a resampling
// or reprojection pass needs so its kernel never reads past the mosaic's
// edge (spec.md §4.3's reason ExtendedImage exists at all).
func marginForKernel(k kernel.Kind) int {
	r := int(kernel.For(k).Radius) + 1
	if r < 2 {
		return 2
	}
	return r
}

// Build renders req through the full pipeline and returns the final
// img.Image ready for internal/codec.Export.
func Build(ctx context.Context, transformer *georef.CoordinateTransformer, req Request) (img.Image, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("compose: invalid output size %dx%d", req.Width, req.Height)
	}

	nativeCRS, err := georef.ParseCRS(req.Layer.TileMatrixSet.CRS)
	if err != nil {
		return nil, fmt.Errorf("compose: layer tile matrix set has invalid CRS: %w", err)
	}

	needsReprojection := req.CRS != nativeCRS

	nativeBBox := req.BBox
	if needsReprojection {
		nativeBBox, err = transformer.TransformBBox(req.BBox, nativeCRS)
		if err != nil {
			return nil, fmt.Errorf("compose: reprojecting request bbox: %w", err)
		}
	}

	targetResolution := nativeBBox.Width() / float64(req.Width)
	level, tm, err := req.Layer.Pyramid.BestLevel(targetResolution)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	mosaicImg, err := buildMosaic(ctx, level, tm, nativeBBox, req.Layer.Pyramid)
	if err != nil {
		return nil, err
	}

	margin := marginForKernel(req.Resampling)
	extended := extend.New(mosaicImg, margin, level.NoDataUint8())

	var resampled img.Image = extended
	if needsReprojection {
		warp, err := grid.Build(transformer, req.BBox, req.Width, req.Height, nativeCRS, req.CRS)
		if err != nil {
			return nil, fmt.Errorf("compose: building warp grid: %w", err)
		}
		reproj, err := reproject.New(extended, warp, req.Resampling, req.BBox, req.Width, req.Height)
		if err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
		resampled = reproj
	} else {
		r, err := resample.New(extended, req.BBox, req.Width, req.Height, req.Resampling)
		if err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
		resampled = r
	}

	return applyStyle(resampled, req.Style), nil
}

// buildMosaic gathers every tile overlapping bbox (expressed in the
// pyramid's native CRS) into a MosaicImage, per spec.md §4.2.
func buildMosaic(ctx context.Context, level *tms.Level, tm tms.TileMatrix, bbox georef.BoundingBox, pyr *tms.Pyramid) (*mosaic.MosaicImage, error) {
	colMinF, rowMaxF := tm.CRSToPixel(bbox.XMin, bbox.YMin)
	colMaxF, rowMinF := tm.CRSToPixel(bbox.XMax, bbox.YMax)

	colMin := clampInt(int(colMinF)/tm.TileWidth, 0, tm.MatrixW-1)
	colMax := clampInt(int(colMaxF)/tm.TileWidth, 0, tm.MatrixW-1)
	rowMin := clampInt(int(rowMinF)/tm.TileHeight, 0, tm.MatrixH-1)
	rowMax := clampInt(int(rowMaxF)/tm.TileHeight, 0, tm.MatrixH-1)

	originX, originY := tm.PixelToCRS(float64(colMin*tm.TileWidth), float64(rowMin*tm.TileHeight))
	width := (colMax - colMin + 1) * tm.TileWidth
	height := (rowMax - rowMin + 1) * tm.TileHeight
	mosaicBox := georef.BoundingBox{
		XMin: originX,
		YMax: originY,
		XMax: originX + float64(width)*tm.Resolution,
		YMin: originY - float64(height)*tm.Resolution,
		CRS:  bbox.CRS,
	}

	var cells []mosaic.Cell
	for row := rowMin; row <= rowMax; row++ {
		for col := colMin; col <= colMax; col++ {
			object, localCol, localRow := level.SlabObject(col, row)
			tileX, tileY := tm.PixelToCRS(float64(col*tm.TileWidth), float64(row*tm.TileHeight))
			tileBox := georef.BoundingBox{
				XMin: tileX,
				YMax: tileY,
				XMax: tileX + float64(tm.TileWidth)*tm.Resolution,
				YMin: tileY - float64(tm.TileHeight)*tm.Resolution,
				CRS:  bbox.CRS,
			}
			ts, err := source.NewTileSource(level, object, localCol, localRow, tileBox)
			if err != nil {
				return nil, fmt.Errorf("compose: building tile source for (%d,%d): %w", col, row, err)
			}
			cells = append(cells, mosaic.Cell{
				Source: tileSourceOrNoData(ctx, ts),
				X:      (col - colMin) * tm.TileWidth,
				Y:      (row - rowMin) * tm.TileHeight,
			})
		}
	}

	base := img.Base{W: width, H: height, C: pyr.Channels, Box: mosaicBox}
	return mosaic.New(base, cells, level.NoDataUint8())
}

// tileSourceOrNoData returns ts unconditionally: ErrNoData (missing tile)
// surfaces lazily from GetLineU8/GetLineF32, at which point MosaicImage
// keeps its no-data fill for that cell's scanline rather than failing the
// whole image build up front.
// Probing eagerly here would mean reading every tile body twice.
func tileSourceOrNoData(_ context.Context, ts *source.TileSource) img.Image {
	return ts
}

func applyStyle(src img.Image, st *config.Style) img.Image {
	if st == nil {
		return src
	}
	if st.Hillshade != nil {
		mode := style.Hillshade
		altitude := 45.0
		azimuth := 315.0
		if st.Hillshade.Angle >= 0 {
			azimuth = float64(st.Hillshade.Angle)
		}
		return style.NewTerrain(src, mode, altitude, azimuth)
	}
	if st.Palette != nil {
		return style.New(src, st.Palette)
	}
	return src
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
