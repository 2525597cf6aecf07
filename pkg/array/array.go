// Package array provides the dense image containers used throughout imgal.
//
// Pixel data of any supported element type is converted to float64 once, at
// construction, so every downstream algorithm works on a single computation
// type. The supported element types form a closed set expressed by the Real
// constraint; there is deliberately no open-ended numeric abstraction.
package array

import (
	"errors"
	"fmt"
)

// Real is the closed set of pixel element types accepted at the API
// boundary. All arithmetic happens in float64 after conversion.
type Real interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int64 | ~float32 | ~float64
}

// ErrShapeMismatch indicates that two arrays expected to correspond
// element-wise have different shapes or lengths.
var ErrShapeMismatch = errors.New("mismatched array shapes")

// ErrInvalidShape indicates non-positive dimensions or a data slice whose
// length does not match the product of the dimensions.
var ErrInvalidShape = errors.New("invalid array shape")

// Image2D is a dense 2D image stored as a flat float64 slice in row-major
// order: the sample at (x, y) lives at Data[y*Width+x].
type Image2D struct {
	// Data is the image data as a 1D array in row-major order.
	Data []float64

	// Width and Height are the image dimensions in pixels.
	Width  int
	Height int
}

// Image3D is a dense 3D image stored as a flat float64 slice in row-major
// order: the sample at (x, y, z) lives at Data[z*Width*Height+y*Width+x].
type Image3D struct {
	// Data is the volume data as a 1D array in row-major order.
	Data []float64

	// Width, Height and Depth are the volume dimensions in voxels.
	Width  int
	Height int
	Depth  int
}

// Mask2D is a boolean image with the same addressing scheme as Image2D.
type Mask2D struct {
	Data   []bool
	Width  int
	Height int
}

// Mask3D is a boolean volume with the same addressing scheme as Image3D.
type Mask3D struct {
	Data   []bool
	Width  int
	Height int
	Depth  int
}

// NewImage2D allocates a zero-filled width x height image.
func NewImage2D(width, height int) (*Image2D, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, width, height)
	}
	return &Image2D{
		Data:   make([]float64, width*height),
		Width:  width,
		Height: height,
	}, nil
}

// NewImage3D allocates a zero-filled width x height x depth volume.
func NewImage3D(width, height, depth int) (*Image3D, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidShape, width, height, depth)
	}
	return &Image3D{
		Data:   make([]float64, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}, nil
}

// Image2DOf builds a 2D image from raw pixel data of any supported element
// type. The data is converted to float64; the source slice is not retained.
//
// Parameters:
//   - data: Pixel samples in row-major order, length width*height
//   - width, height: Image dimensions in pixels
//
// Returns:
//   - The converted image, or an error if the dimensions are non-positive
//     or do not match len(data)
func Image2DOf[T Real](data []T, width, height int) (*Image2D, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrInvalidShape, len(data), width, height)
	}
	return &Image2D{
		Data:   Float64Slice(data),
		Width:  width,
		Height: height,
	}, nil
}

// Image3DOf builds a 3D volume from raw voxel data of any supported element
// type. The data is converted to float64; the source slice is not retained.
func Image3DOf[T Real](data []T, width, height, depth int) (*Image3D, error) {
	if width <= 0 || height <= 0 || depth <= 0 || len(data) != width*height*depth {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx%d", ErrInvalidShape, len(data), width, height, depth)
	}
	return &Image3D{
		Data:   Float64Slice(data),
		Width:  width,
		Height: height,
		Depth:  depth,
	}, nil
}

// NewMask2D allocates an all-false width x height mask.
func NewMask2D(width, height int) *Mask2D {
	return &Mask2D{
		Data:   make([]bool, width*height),
		Width:  width,
		Height: height,
	}
}

// NewMask3D allocates an all-false width x height x depth mask.
func NewMask3D(width, height, depth int) *Mask3D {
	return &Mask3D{
		Data:   make([]bool, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}
}

// Idx returns the flat index of pixel (x, y).
func (im *Image2D) Idx(x, y int) int { return y*im.Width + x }

// At returns the sample at pixel (x, y).
func (im *Image2D) At(x, y int) float64 { return im.Data[y*im.Width+x] }

// Set writes the sample at pixel (x, y).
func (im *Image2D) Set(x, y int, v float64) { im.Data[y*im.Width+x] = v }

// SameShape reports whether both images have identical dimensions.
func (im *Image2D) SameShape(other *Image2D) bool {
	return im.Width == other.Width && im.Height == other.Height
}

// Idx returns the flat index of voxel (x, y, z).
func (im *Image3D) Idx(x, y, z int) int {
	return (z*im.Height+y)*im.Width + x
}

// At returns the sample at voxel (x, y, z).
func (im *Image3D) At(x, y, z int) float64 { return im.Data[(z*im.Height+y)*im.Width+x] }

// Set writes the sample at voxel (x, y, z).
func (im *Image3D) Set(x, y, z int, v float64) { im.Data[(z*im.Height+y)*im.Width+x] = v }

// SameShape reports whether both volumes have identical dimensions.
func (im *Image3D) SameShape(other *Image3D) bool {
	return im.Width == other.Width && im.Height == other.Height && im.Depth == other.Depth
}

// Float64Slice converts a slice of any supported element type to a freshly
// allocated []float64. This is the single conversion point from the closed
// element-type set to the computation type.
func Float64Slice[T Real](data []T) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}
