package pdf

import (
	"context"
	"image"

	"go.uber.org/zap"

	"storyexp/raster"
)

// Surface turns rendered XHTML into single bitmap of requested width.
type Surface interface {
	Rasterize(ctx context.Context, html string, width int) (image.Image, error)
	Close() error
}

// SurfaceFactory creates surface for single encoding call. Returned surface
// is always closed by the encoder.
type SurfaceFactory func(dpi float64, stylesheet []byte, log *zap.Logger) (Surface, error)

// NewRasterSurface is default SurfaceFactory.
func NewRasterSurface(dpi float64, stylesheet []byte, log *zap.Logger) (Surface, error) {
	s, err := raster.New(raster.Options{DPI: dpi, Stylesheet: stylesheet}, log)
	if err != nil {
		return nil, err
	}
	return s, nil
}
