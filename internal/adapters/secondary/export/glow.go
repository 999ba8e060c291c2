package export

import (
	"image"
	"math"
)

// gaussianKernel returns a normalized 1D kernel for a CSS blur radius.
// text-shadow blur radius r maps to a Gaussian with sigma r/2.
func gaussianKernel(radius float64) []float32 {
	sigma := radius / 2
	if sigma < 0.5 {
		return []float32{1}
	}
	half := int(math.Ceil(sigma * 3))
	kernel := make([]float32, 2*half+1)
	var sum float32
	for i := -half; i <= half; i++ {
		v := float32(math.Exp(-float64(i*i) / (2 * sigma * sigma)))
		kernel[i+half] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// blurAlpha blurs a premultiplied RGBA image in place with a separable
// Gaussian. Only glow layers go through here, and they are a single color,
// so all four channels blur together.
func blurAlpha(img *image.RGBA, radius float64) {
	kernel := gaussianKernel(radius)
	if len(kernel) == 1 {
		return
	}
	half := len(kernel) / 2
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := make([]float32, w*h*4)

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			var acc [4]float32
			for k, kv := range kernel {
				sx := clampIndex(x+k-half, w)
				for c := 0; c < 4; c++ {
					acc[c] += float32(row[sx*4+c]) * kv
				}
			}
			copy(tmp[(y*w+x)*4:], acc[:])
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			var acc [4]float32
			for k, kv := range kernel {
				sy := clampIndex(y+k-half, h)
				for c := 0; c < 4; c++ {
					acc[c] += tmp[(sy*w+x)*4+c] * kv
				}
			}
			o := y*img.Stride + x*4
			for c := 0; c < 4; c++ {
				img.Pix[o+c] = uint8(math.Min(255, float64(acc[c])+0.5))
			}
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
