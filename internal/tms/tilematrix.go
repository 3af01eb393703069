// Package tms implements the TileMatrix/TileMatrixSet/Pyramid geometry
// layer that binds a tile pyramid's storage and pixel format to a named
// grid of resolutions, as described in spec.md §3.
package tms

import (
	"fmt"

	"github.com/rok4/rok4go/internal/georef"
)

// TileMatrix is one level of a pyramid: a fixed ground resolution, a
// top-left origin in CRS units, a tile pixel size, and the matrix extent
// expressed in tiles.
type TileMatrix struct {
	ID         string
	Resolution float64// CRS units per pixel
	TopLeftX   float64 // x0: upper-left corner of the matrix, in CRS units
	TopLeftY   float64 // y0
	TileWidth  int     // tw, in pixels
	TileHeight int     // th, in pixels
	MatrixW    int     // mw, in tiles
	MatrixH    int     // mh, in tiles
}

// Validate checks the TileMatrix invariants from spec.md §3.
func (m TileMatrix) Validate() error {
	if m.MatrixW < 1 || m.MatrixH < 1 {
		return fmt.Errorf("tile matrix %q: matrix extent must be >= 1 tile, got %dx%d", m.ID, m.MatrixW, m.MatrixH)
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return fmt.Errorf("tile matrix %q: tile size must be positive, got %dx%d", m.ID, m.TileWidth, m.TileHeight)
	}
	if m.Resolution <= 0 {
		return fmt.Errorf("tile matrix %q: resolution must be positive", m.ID)
	}
	return nil
}

// PixelSpanX returns the ground extent covered by the whole matrix on X.
func (m TileMatrix) PixelSpanX() float64 {
	return float64(m.MatrixW*m.TileWidth) * m.Resolution
}

// PixelSpanY returns the ground extent covered by the whole matrix on Y.
func (m TileMatrix) PixelSpanY() float64 {
	return float64(m.MatrixH*m.TileHeight) * m.Resolution
}

// BBox returns the matrix's full ground bounding box.
func (m TileMatrix) BBox(crs string) georef.BoundingBox {
	return georef.BoundingBox{
		XMin: m.TopLeftX,
		YMax: m.TopLeftY,
		XMax: m.TopLeftX + m.PixelSpanX(),
		YMin: m.TopLeftY - m.PixelSpanY(),
		CRS:  crs,
	}
}

// PixelToCRS converts a fractional pixel coordinate (origin top-left of the
// matrix) into CRS units.
func (m TileMatrix) PixelToCRS(px, py float64) (x, y float64) {
	x = m.TopLeftX + px*m.Resolution
	y = m.TopLeftY - py*m.Resolution
	return
}

// CRSToPixel is the inverse of PixelToCRS.
func (m TileMatrix) CRSToPixel(x, y float64) (px, py float64) {
	px = (x - m.TopLeftX) / m.Resolution
	py = (m.TopLeftY - y) / m.Resolution
	return
}

// TileOrigin returns the pixel coordinates of the top-left corner of tile
// (col, row) within the matrix.
func (m TileMatrix) TileOrigin(col, row int) (px, py int) {
	return col * m.TileWidth, row * m.TileHeight
}

// ContainsTile reports whether (col, row) is within the matrix extent.
func (m TileMatrix) ContainsTile(col, row int) bool {
	return col >= 0 && col < m.MatrixW && row >= 0 && row < m.MatrixH
}

// TileMatrixSet is an ordered collection of TileMatrix sharing one CRS.
type TileMatrixSet struct {
	Name    string
	CRS     string
	Levels  []TileMatrix // ordered by strictly decreasing Resolution
}

// ByID returns the TileMatrix with the given identifier.
func (s *TileMatrixSet) ByID(id string) (TileMatrix, bool) {
	for _, m := range s.Levels {
		if m.ID == id {
			return m, true
		}
	}
	return TileMatrix{}, false
}

// Validate checks that resolutions strictly decrease down the pyramid and
// that every level individually validates.
func (s *TileMatrixSet) Validate() error {
	if len(s.Levels) == 0 {
		return fmt.Errorf("tile matrix set %q: no levels", s.Name)
	}
	for i, m := range s.Levels {
		if err := m.Validate(); err != nil {
			return err
		}
		if i > 0 && m.Resolution >= s.Levels[i-1].Resolution {
			return fmt.Errorf("tile matrix set %q: resolution must strictly decrease (level %q)", s.Name, m.ID)
		}
	}
	return nil
}

// BestLevel returns the finest TileMatrix whose resolution is not finer
// than a requested ground resolution, or the first (coarsest) one when
// every level is finer than the request.
func (s *TileMatrixSet) BestLevel(targetResolution float64) TileMatrix {
	best := s.Levels[0]
	for _, m := range s.Levels {
		if m.Resolution >= targetResolution {
			best = m
		}
	}
	return best
}
