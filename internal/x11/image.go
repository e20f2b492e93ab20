package x11

import (
	"image"
	"image/color"

	"github.com/BurntSushi/xgbutil/ewmh"
)

// premultipliedBGRA lays out img the way a little-endian depth-32 TrueColor
// visual expects it: B, G, R, A per pixel with premultiplied color.
func premultipliedBGRA(img *image.RGBA) []byte {
	b := img.Rect
	width, height := b.Dx(), b.Dy()
	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out[y*width*4:]
		for x := 0; x < width; x++ {
			i := x * 4
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = src[i+3]
		}
	}
	return out
}

// IconFromImage converts img to _NET_WM_ICON data: one non-premultiplied
// 0xAARRGGBB value per pixel, rows top to bottom.
func IconFromImage(img image.Image) ewmh.WmIcon {
	b := img.Bounds()
	data := make([]uint, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			data = append(data, uint(c.A)<<24|uint(c.R)<<16|uint(c.G)<<8|uint(c.B))
		}
	}
	return ewmh.WmIcon{
		Width:  uint(b.Dx()),
		Height: uint(b.Dy()),
		Data:   data,
	}
}
