package fidelity

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Pixmap represents a rectangular pixel buffer in RGBA format, 4 bytes per
// pixel. It is the raster type the statistical image engine operates on.
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a new zeroed pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// NewPixmapFrom wraps a raw RGBA buffer with declared dimensions. The
// buffer is not copied. A declared-vs-actual size mismatch is the one
// malformed-input case that escalates as an error rather than degrading
// to a defined value.
func NewPixmapFrom(data []uint8, width, height int) (*Pixmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("fidelity: invalid pixmap dimensions %dx%d", width, height)
	}
	if want := width * height * 4; len(data) != want {
		return nil, fmt.Errorf("fidelity: pixmap buffer is %d bytes, declared %dx%d needs %d",
			len(data), width, height, want)
	}
	return &Pixmap{width: width, height: height, data: data}, nil
}

// FromImage copies a standard image into a pixmap.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pm := NewPixmap(width, height)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < height; y++ {
			src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
			copy(pm.data[y*width*4:], src)
		}
		return pm
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*width + x) * 4
			pm.data[i+0] = uint8(r >> 8)
			pm.data[i+1] = uint8(g >> 8)
			pm.data[i+2] = uint8(b >> 8)
			pm.data[i+3] = uint8(a >> 8)
		}
	}
	return pm
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (RGBA format).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// SetPixel sets the color of a single pixel. Out-of-range coordinates are
// ignored.
func (p *Pixmap) SetPixel(x, y int, c Color) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i+0] = uint8(clamp255(c.R * 255))
	p.data[i+1] = uint8(clamp255(c.G * 255))
	p.data[i+2] = uint8(clamp255(c.B * 255))
	p.data[i+3] = uint8(clamp255(c.A * 255))
}

// GetPixel returns the color of a single pixel. Out-of-range coordinates
// return Transparent.
func (p *Pixmap) GetPixel(x, y int) Color {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	return Color{
		R: float64(p.data[i+0]) / 255,
		G: float64(p.data[i+1]) / 255,
		B: float64(p.data[i+2]) / 255,
		A: float64(p.data[i+3]) / 255,
	}
}

// Fill sets every pixel to the given color.
func (p *Pixmap) Fill(c Color) {
	r := uint8(clamp255(c.R * 255))
	g := uint8(clamp255(c.G * 255))
	b := uint8(clamp255(c.B * 255))
	a := uint8(clamp255(c.A * 255))
	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = r
		p.data[i+1] = g
		p.data[i+2] = b
		p.data[i+3] = a
	}
}

// Crop returns a copy limited to the top-left w×h region. Requests larger
// than the pixmap are clamped to its bounds.
func (p *Pixmap) Crop(w, h int) *Pixmap {
	if w > p.width {
		w = p.width
	}
	if h > p.height {
		h = p.height
	}
	out := NewPixmap(w, h)
	for y := 0; y < h; y++ {
		src := p.data[y*p.width*4 : y*p.width*4+w*4]
		copy(out.data[y*w*4:], src)
	}
	return out
}

// Scaled returns a bilinear downscale of the pixmap to the given
// dimensions. Used by the comparer's max-dimension speed option; metric
// math itself never rescales.
func (p *Pixmap) Scaled(w, h int) *Pixmap {
	if w <= 0 || h <= 0 || (w == p.width && h == p.height) {
		return p
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), p, p.Bounds(), xdraw.Src, nil)
	return FromImage(dst)
}

// Grayscale returns the BT.601 luma plane in [0, 255]:
// Y = 0.299R + 0.587G + 0.114B.
func (p *Pixmap) Grayscale() []float64 {
	out := make([]float64, p.width*p.height)
	for i := range out {
		j := i * 4
		out[i] = 0.299*float64(p.data[j+0]) +
			0.587*float64(p.data[j+1]) +
			0.114*float64(p.data[j+2])
	}
	return out
}

// ToImage converts the pixmap to an image.RGBA.
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.GetPixel(x, y).Color()
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}

// sharedCrop clips two pixmaps to their shared minimum dimensions,
// top-left aligned. Equal-sized inputs pass through uncopied.
func sharedCrop(a, b *Pixmap) (*Pixmap, *Pixmap) {
	if a.width == b.width && a.height == b.height {
		return a, b
	}
	w := min(a.width, b.width)
	h := min(a.height, b.height)
	return a.Crop(w, h), b.Crop(w, h)
}
