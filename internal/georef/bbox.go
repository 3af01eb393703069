// Package georef provides the bounding box and coordinate reference system
// primitives shared by the tile matrix and image pipeline packages.
package georef

import "fmt"

// BoundingBox is a georeferenced envelope in a named CRS.
type BoundingBox struct {
	XMin, YMin, XMax, YMax float64
	CRS                    string
}

// Valid reports whether the box satisfies xmin<xmax and ymin<ymax. A
// reprojected envelope may become rotated/sheared and is represented by a
// Grid rather than a BoundingBox, so this invariant only applies before
// resampling.
func (b BoundingBox) Valid() bool {
	return b.XMin < b.XMax && b.YMin < b.YMax
}

// Width returns the envelope's extent in the X axis.
func (b BoundingBox) Width() float64 { return b.XMax - b.XMin }

// Height returns the envelope's extent in the Y axis.
func (b BoundingBox) Height() float64 { return b.YMax - b.YMin }

// ResolutionX returns the ground resolution in the X axis for an image of
// the given pixel width over this bbox.
func (b BoundingBox) ResolutionX(widthPx int) float64 {
	if widthPx <= 0 {
		return 0
	}
	return b.Width() / float64(widthPx)
}

// ResolutionY returns the ground resolution in the Y axis for an image of
// the given pixel height over this bbox.
func (b BoundingBox) ResolutionY(heightPx int) float64 {
	if heightPx <= 0 {
		return 0
	}
	return b.Height() / float64(heightPx)
}

// Intersects reports whether two bounding boxes overlap (touching at an
// edge counts as no overlap, matching MosaicImage's tile-culling use).
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.XMin < o.XMax && b.XMax > o.XMin && b.YMin < o.YMax && b.YMax > o.YMin
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g (%s)", b.XMin, b.YMin, b.XMax, b.YMax, b.CRS)
}

// Corners returns the four corners of the envelope, used when reprojecting
// a bbox through a Grid's sampled envelope rather than a single transform
// call (the result may not be a proper rectangle in the target CRS).
func (b BoundingBox) Corners() [4][2]float64 {
	return [4][2]float64{
		{b.XMin, b.YMin},
		{b.XMax, b.YMin},
		{b.XMax, b.YMax},
		{b.XMin, b.YMax},
	}
}

// FromPoints builds the smallest bbox enclosing the given points, in the
// given CRS. Used to recompute a bbox after reprojecting an envelope's
// corners (the result is an axis-aligned approximation of a possibly
// rotated/sheared footprint).
func FromPoints(crs string, points [][2]float64) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{CRS: crs}
	}
	b := BoundingBox{
		XMin: points[0][0], XMax: points[0][0],
		YMin: points[0][1], YMax: points[0][1],
		CRS: crs,
	}
	for _, p := range points[1:] {
		if p[0] < b.XMin {
			b.XMin = p[0]
		}
		if p[0] > b.XMax {
			b.XMax = p[0]
		}
		if p[1] < b.YMin {
			b.YMin = p[1]
		}
		if p[1] > b.YMax {
			b.YMax = p[1]
		}
	}
	return b
}
