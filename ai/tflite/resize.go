package tflite

import (
	"image"

	"golang.org/x/image/draw"
)

// resizeRGB scales img to w x h with bilinear interpolation and returns
// interleaved 8-bit RGB samples in row-major order. Alpha is dropped.
func resizeRGB(img image.Image, w, h int) []uint8 {
	out := make([]uint8, w*h*3)
	if img.Bounds().Empty() || w <= 0 || h <= 0 {
		return out
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(out[(y*w+x)*3:], row[x*4:x*4+3])
		}
	}
	return out
}

// normalizeFloat maps 8-bit samples to [-1,1], the MobileNet input range.
func normalizeFloat(dst []float32, src []uint8) {
	for i, v := range src {
		dst[i] = float32(v)/127.5 - 1
	}
}
