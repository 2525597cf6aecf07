package transform

import (
	"errors"
	"fmt"

	"imgal/pkg/array"
)

// ErrBadTiling indicates a division count or shape the grid tiler cannot
// satisfy.
var ErrBadTiling = errors.New("invalid tiling")

// DivTile2D divides an image into a regular div x div grid of equally sized
// tiles, returned in row-major order. This is naive division tiling: the
// tiles are plain rectangular copies with no overlap or fusing margin.
//
// Parameters:
//   - img: The image to tile
//   - div: The number of divisions per axis, at least 1; both dimensions
//     must be multiples of it
//
// Returns:
//   - The div*div tiles in row-major order
//   - An error if div < 1 or a dimension is not a multiple of div
func DivTile2D(img *array.Image2D, div int) ([]*array.Image2D, error) {
	if div < 1 {
		return nil, fmt.Errorf("%w: div must be at least 1, got %d", ErrBadTiling, div)
	}
	if img.Width%div != 0 || img.Height%div != 0 {
		return nil, fmt.Errorf("%w: shape %dx%d is not divisible by %d", ErrBadTiling, img.Width, img.Height, div)
	}

	tw, th := img.Width/div, img.Height/div
	tiles := make([]*array.Image2D, 0, div*div)
	for ty := 0; ty < div; ty++ {
		for tx := 0; tx < div; tx++ {
			tile := &array.Image2D{
				Data:   make([]float64, tw*th),
				Width:  tw,
				Height: th,
			}
			for y := 0; y < th; y++ {
				src := img.Data[(ty*th+y)*img.Width+tx*tw:]
				copy(tile.Data[y*tw:(y+1)*tw], src[:tw])
			}
			tiles = append(tiles, tile)
		}
	}
	return tiles, nil
}

// DivUntile2D reassembles tiles produced by DivTile2D, or an equivalent
// row-major grid tiling, into a single width x height image.
//
// Parameters:
//   - tiles: The div*div tiles in row-major order
//   - div: The number of divisions per axis used to produce the tiles
//   - width, height: The output dimensions; multiples of div
//
// Returns:
//   - The reassembled image
//   - An error if the tile count, tile shapes, or output shape disagree
func DivUntile2D(tiles []*array.Image2D, div, width, height int) (*array.Image2D, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: no tiles", ErrBadTiling)
	}
	if div < 1 {
		return nil, fmt.Errorf("%w: div must be at least 1, got %d", ErrBadTiling, div)
	}
	if width%div != 0 || height%div != 0 {
		return nil, fmt.Errorf("%w: shape %dx%d is not divisible by %d", ErrBadTiling, width, height, div)
	}
	if len(tiles) != div*div {
		return nil, fmt.Errorf("%w: got %d tiles, want %d", ErrBadTiling, len(tiles), div*div)
	}

	tw, th := width/div, height/div
	for i, tile := range tiles {
		if tile.Width != tw || tile.Height != th {
			return nil, fmt.Errorf("%w: tile %d is %dx%d, want %dx%d", ErrBadTiling, i, tile.Width, tile.Height, tw, th)
		}
	}

	out := &array.Image2D{
		Data:   make([]float64, width*height),
		Width:  width,
		Height: height,
	}
	for ty := 0; ty < div; ty++ {
		for tx := 0; tx < div; tx++ {
			tile := tiles[ty*div+tx]
			for y := 0; y < th; y++ {
				dst := out.Data[(ty*th+y)*width+tx*tw:]
				copy(dst[:tw], tile.Data[y*tw:(y+1)*tw])
			}
		}
	}
	return out, nil
}

// DivTile3D divides a volume into a regular div x div x div grid of equally
// sized tiles, returned in row-major order (z outermost).
func DivTile3D(img *array.Image3D, div int) ([]*array.Image3D, error) {
	if div < 1 {
		return nil, fmt.Errorf("%w: div must be at least 1, got %d", ErrBadTiling, div)
	}
	if img.Width%div != 0 || img.Height%div != 0 || img.Depth%div != 0 {
		return nil, fmt.Errorf("%w: shape %dx%dx%d is not divisible by %d", ErrBadTiling, img.Width, img.Height, img.Depth, div)
	}

	tw, th, td := img.Width/div, img.Height/div, img.Depth/div
	tiles := make([]*array.Image3D, 0, div*div*div)
	for tz := 0; tz < div; tz++ {
		for ty := 0; ty < div; ty++ {
			for tx := 0; tx < div; tx++ {
				tile := &array.Image3D{
					Data:   make([]float64, tw*th*td),
					Width:  tw,
					Height: th,
					Depth:  td,
				}
				for z := 0; z < td; z++ {
					for y := 0; y < th; y++ {
						src := img.Data[((tz*td+z)*img.Height+ty*th+y)*img.Width+tx*tw:]
						copy(tile.Data[(z*th+y)*tw:(z*th+y+1)*tw], src[:tw])
					}
				}
				tiles = append(tiles, tile)
			}
		}
	}
	return tiles, nil
}

// DivUntile3D reassembles tiles produced by DivTile3D into a single
// width x height x depth volume.
func DivUntile3D(tiles []*array.Image3D, div, width, height, depth int) (*array.Image3D, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: no tiles", ErrBadTiling)
	}
	if div < 1 {
		return nil, fmt.Errorf("%w: div must be at least 1, got %d", ErrBadTiling, div)
	}
	if width%div != 0 || height%div != 0 || depth%div != 0 {
		return nil, fmt.Errorf("%w: shape %dx%dx%d is not divisible by %d", ErrBadTiling, width, height, depth, div)
	}
	if len(tiles) != div*div*div {
		return nil, fmt.Errorf("%w: got %d tiles, want %d", ErrBadTiling, len(tiles), div*div*div)
	}

	tw, th, td := width/div, height/div, depth/div
	for i, tile := range tiles {
		if tile.Width != tw || tile.Height != th || tile.Depth != td {
			return nil, fmt.Errorf("%w: tile %d is %dx%dx%d, want %dx%dx%d",
				ErrBadTiling, i, tile.Width, tile.Height, tile.Depth, tw, th, td)
		}
	}

	out := &array.Image3D{
		Data:   make([]float64, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}
	for tz := 0; tz < div; tz++ {
		for ty := 0; ty < div; ty++ {
			for tx := 0; tx < div; tx++ {
				tile := tiles[(tz*div+ty)*div+tx]
				for z := 0; z < td; z++ {
					for y := 0; y < th; y++ {
						dst := out.Data[((tz*td+z)*height+ty*th+y)*width+tx*tw:]
						copy(dst[:tw], tile.Data[(z*th+y)*tw:(z*th+y+1)*tw])
					}
				}
			}
		}
	}
	return out, nil
}
