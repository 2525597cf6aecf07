// Package transform provides geometric array rearrangements: isometric
// padding and regular grid tiling.
package transform

import (
	"imgal/pkg/array"
)

// PadConstant2D pads an image isometrically with a constant value: every
// side of every axis grows by pad samples, so each dimension increases by
// 2*pad, and the input lands centered in the output. A pad of zero or less
// returns a plain copy.
func PadConstant2D(img *array.Image2D, value float64, pad int) *array.Image2D {
	if pad <= 0 {
		out := &array.Image2D{
			Data:   make([]float64, len(img.Data)),
			Width:  img.Width,
			Height: img.Height,
		}
		copy(out.Data, img.Data)
		return out
	}

	out := &array.Image2D{
		Data:   make([]float64, (img.Width+2*pad)*(img.Height+2*pad)),
		Width:  img.Width + 2*pad,
		Height: img.Height + 2*pad,
	}
	if value != 0 {
		for i := range out.Data {
			out.Data[i] = value
		}
	}
	for y := 0; y < img.Height; y++ {
		src := img.Data[y*img.Width : (y+1)*img.Width]
		dst := out.Data[(y+pad)*out.Width+pad:]
		copy(dst[:img.Width], src)
	}
	return out
}

// PadZero2D pads an image isometrically with zeros. See PadConstant2D.
func PadZero2D(img *array.Image2D, pad int) *array.Image2D {
	return PadConstant2D(img, 0, pad)
}

// PadConstant3D is the volumetric form of PadConstant2D.
func PadConstant3D(img *array.Image3D, value float64, pad int) *array.Image3D {
	if pad <= 0 {
		out := &array.Image3D{
			Data:   make([]float64, len(img.Data)),
			Width:  img.Width,
			Height: img.Height,
			Depth:  img.Depth,
		}
		copy(out.Data, img.Data)
		return out
	}

	out := &array.Image3D{
		Data:   make([]float64, (img.Width+2*pad)*(img.Height+2*pad)*(img.Depth+2*pad)),
		Width:  img.Width + 2*pad,
		Height: img.Height + 2*pad,
		Depth:  img.Depth + 2*pad,
	}
	if value != 0 {
		for i := range out.Data {
			out.Data[i] = value
		}
	}
	for z := 0; z < img.Depth; z++ {
		for y := 0; y < img.Height; y++ {
			src := img.Data[(z*img.Height+y)*img.Width : (z*img.Height+y+1)*img.Width]
			dst := out.Data[((z+pad)*out.Height+y+pad)*out.Width+pad:]
			copy(dst[:img.Width], src)
		}
	}
	return out
}

// PadZero3D pads a volume isometrically with zeros. See PadConstant3D.
func PadZero3D(img *array.Image3D, pad int) *array.Image3D {
	return PadConstant3D(img, 0, pad)
}
