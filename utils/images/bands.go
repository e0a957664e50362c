package images

import (
	"image"

	"github.com/disintegration/imaging"
)

// SplitBands cuts image into horizontal bands no taller than height pixels.
// Last band keeps whatever remains.
func SplitBands(img image.Image, height int) []image.Image {
	b := img.Bounds()
	if height <= 0 || b.Dy() <= height {
		return []image.Image{img}
	}

	bands := make([]image.Image, 0, (b.Dy()+height-1)/height)
	for y := b.Min.Y; y < b.Max.Y; y += height {
		bands = append(bands, imaging.Crop(img, image.Rect(b.Min.X, y, b.Max.X, min(y+height, b.Max.Y))))
	}
	return bands
}
