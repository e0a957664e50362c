package raster

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

func (s *Surface) paint(ctx context.Context, boxes []*box, width, height int) (image.Image, error) {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	for _, b := range boxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if b.background != nil {
			fillRect(dst, b.bgLeft, b.y, float64(width), b.y+b.height, *b.background)
		}

		switch b.kind {
		case boxBar:
			fillRect(dst, b.x, b.y, b.x+b.width, b.y+b.height, b.color)
		case boxRule:
			if b.divider != nil {
				db := b.divider.Bounds()
				at := image.Pt(int(math.Round(b.x+(b.width-float64(db.Dx()))/2)), int(math.Round(b.y)))
				draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(db.Size())}, b.divider, db.Min, draw.Src)
			} else {
				mid := b.y + b.height/2
				fillRect(dst, b.x+b.width/4, mid-0.5, b.x+b.width*3/4, mid+0.5, b.color)
			}
		default:
			for _, ln := range b.lines {
				for _, p := range ln.pieces {
					drawPiece(dst, p, b.x+ln.x+p.x, b.y+ln.baseline)
				}
			}
			if b.marker != nil && len(b.lines) > 0 {
				drawPiece(dst, *b.marker, b.x+b.marker.x, b.y+b.lines[0].baseline)
			}
		}
	}
	return dst, nil
}

func drawPiece(dst draw.Image, p piece, x, baseline float64) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(p.style.color),
		Face: p.face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(baseline)},
	}
	d.DrawString(p.text)

	thickness := max(1, p.style.size/16)
	if p.style.underline {
		y := baseline + thickness*1.5
		fillRect(dst, x, y, x+p.width, y+thickness, p.style.color)
	}
	if p.style.strike {
		y := baseline - fixedToFloat(p.face.Metrics().XHeight)/2
		fillRect(dst, x, y-thickness/2, x+p.width, y+thickness/2, p.style.color)
	}
}

func fillRect(dst draw.Image, x0, y0, x1, y1 float64, c color.RGBA) {
	r := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func measure(face font.Face, s string) float64 {
	return fixedToFloat(font.MeasureString(face, s))
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
