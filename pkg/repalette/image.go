package repalette

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/mat"
)

// Image is a height x width grid of RGB vectors stored row-major.
//
// Operations never modify their input image; they always return a new one.
// Image implements image.Image through a clamped, truncated 8-bit view so
// results can be handed straight to an encoder.
type Image struct {
	Pix    []Vector
	Width  int
	Height int
}

var _ image.Image = (*Image)(nil)

// NewImage returns a black image of the given size.
func NewImage(width, height int) *Image {
	return &Image{
		Pix:    make([]Vector, width*height),
		Width:  width,
		Height: height,
	}
}

// ImageFromRows builds an image from an H x W x 3 array.
func ImageFromRows(rows [][][]float64) (*Image, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrShape)
	}

	img := NewImage(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != img.Width {
			return nil, fmt.Errorf("%w: row %d has %d pixels, expected %d", ErrShape, y, len(row), img.Width)
		}
		for x, px := range row {
			if len(px) != 3 {
				return nil, fmt.Errorf("%w: pixel (%d, %d) has %d channels, expected 3", ErrShape, x, y, len(px))
			}
			img.Pix[y*img.Width+x] = Vector{px[0], px[1], px[2]}
		}
	}
	return img, nil
}

// FromImage converts any image to 8-bit channel vectors. Alpha is ignored.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	img := NewImage(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Pix[(y-b.Min.Y)*img.Width+(x-b.Min.X)] = VectorOf(src.At(x, y))
		}
	}
	return img
}

// Len returns the number of pixels.
func (img *Image) Len() int {
	return len(img.Pix)
}

// Pixel returns the colour at (x, y).
func (img *Image) Pixel(x, y int) Vector {
	return img.Pix[y*img.Width+x]
}

// SetPixel sets the colour at (x, y).
func (img *Image) SetPixel(x, y int, v Vector) {
	img.Pix[y*img.Width+x] = v
}

// Rows returns the image as an H x W x 3 array.
func (img *Image) Rows() [][][]float64 {
	rows := make([][][]float64, img.Height)
	for y := range rows {
		rows[y] = make([][]float64, img.Width)
		for x := range rows[y] {
			v := img.Pixel(x, y)
			rows[y][x] = []float64{v[0], v[1], v[2]}
		}
	}
	return rows
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	return &Image{
		Pix:    append([]Vector(nil), img.Pix...),
		Width:  img.Width,
		Height: img.Height,
	}
}

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// At implements image.Image.
func (img *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return color.RGBA{}
	}
	return img.Pixel(x, y).ToRGBA()
}

// validate checks the pixel buffer against the declared dimensions.
func (img *Image) validate() error {
	switch {
	case img == nil:
		return fmt.Errorf("%w: image cannot be nil", ErrShape)
	case img.Width <= 0 || img.Height <= 0:
		return fmt.Errorf("%w: image must have positive dimensions, got %dx%d", ErrShape, img.Width, img.Height)
	case len(img.Pix) != img.Width*img.Height:
		return fmt.Errorf("%w: image has %d pixels, expected %dx%d", ErrShape, len(img.Pix), img.Width, img.Height)
	}
	return nil
}

// matrix flattens the image into an n x 3 matrix, one row per pixel.
func (img *Image) matrix() *mat.Dense {
	data := make([]float64, 0, 3*len(img.Pix))
	for _, v := range img.Pix {
		data = append(data, v[0], v[1], v[2])
	}
	return mat.NewDense(len(img.Pix), 3, data)
}

// LabelMap holds one cluster index per pixel, row-major, in the same layout as
// the image it was computed from. Labels index the Palette produced alongside
// the map and mean nothing relative to any other palette.
type LabelMap struct {
	Labels []int
	Width  int
	Height int
}

// At returns the label at (x, y).
func (m *LabelMap) At(x, y int) int {
	return m.Labels[y*m.Width+x]
}

// Rows returns the labels as an H x W array.
func (m *LabelMap) Rows() [][]int {
	rows := make([][]int, m.Height)
	for y := range rows {
		rows[y] = append([]int(nil), m.Labels[y*m.Width:(y+1)*m.Width]...)
	}
	return rows
}

// Distinct returns the number of different labels in use.
func (m *LabelMap) Distinct() int {
	seen := make(map[int]struct{})
	for _, l := range m.Labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}
