package material

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/Carmen-Shannon/pristine-go/common"
)

// ErrEmptyTexture is returned when a texture has neither an image nor a size.
var ErrEmptyTexture = errors.New("material: texture has no image and no size")

// TextureOptions describes a texture to create. When Image is set its bounds define the texture size and Width and
// Height are ignored; otherwise the texture is allocated blank at Width x Height.
type TextureOptions struct {
	Label  string
	Image  image.Image
	Width  uint32
	Height uint32
}

// texture is the implementation of the Texture interface.
type texture struct {
	handle common.Handle
	label  string
	width  uint32
	height uint32
	pixels []byte
	native any
}

// Texture is a two dimensional RGBA8 image sampled by a material.
type Texture interface {
	// Handle returns the identity of this texture.
	//
	// Returns:
	//   - common.Handle: the texture's handle
	Handle() common.Handle

	// Label returns the debug label of this texture.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Width returns the texture width in pixels.
	//
	// Returns:
	//   - uint32: the width
	Width() uint32

	// Height returns the texture height in pixels.
	//
	// Returns:
	//   - uint32: the height
	Height() uint32

	// Pixels returns the tightly packed RGBA8 pixel rows, bottom row first, or nil for a blank texture.
	//
	// Returns:
	//   - []byte: the upload data
	Pixels() []byte

	// Native returns the backend texture object.
	// Note: The caller is responsible for type asserting the returned value.
	//
	// Returns:
	//   - any: the backend texture, or nil before upload
	Native() any

	// SetNative stores the backend texture object.
	//
	// Parameters:
	//   - native: the backend texture
	SetNative(native any)
}

var _ Texture = &texture{}

// NewTexture creates a Texture from an image or a blank size. Image pixels are converted to RGBA8 and flipped
// vertically so the first row uploaded is the bottom row of the image.
//
// Parameters:
//   - handle: the identity to assign to the texture
//   - options: the texture description
//
// Returns:
//   - Texture: a new Texture
//   - error: ErrEmptyTexture if there is no image and the size is zero
func NewTexture(handle common.Handle, options TextureOptions) (Texture, error) {
	t := &texture{
		handle: handle,
		label:  options.Label,
		width:  options.Width,
		height: options.Height,
	}
	if options.Image != nil {
		b := options.Image.Bounds()
		t.width, t.height = uint32(b.Dx()), uint32(b.Dy())
		t.pixels = flipRGBA(options.Image)
	}
	if t.width == 0 || t.height == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyTexture, options.Label)
	}
	return t, nil
}

func flipRGBA(img image.Image) []byte {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	rowLen := b.Dx() * 4
	out := make([]byte, rowLen*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+rowLen]
		copy(out[(b.Dy()-1-y)*rowLen:], src)
	}
	return out
}

func (t *texture) Handle() common.Handle {
	return t.handle
}

func (t *texture) Label() string {
	return t.label
}

func (t *texture) Width() uint32 {
	return t.width
}

func (t *texture) Height() uint32 {
	return t.height
}

func (t *texture) Pixels() []byte {
	return t.pixels
}

func (t *texture) Native() any {
	return t.native
}

func (t *texture) SetNative(native any) {
	t.native = native
}
