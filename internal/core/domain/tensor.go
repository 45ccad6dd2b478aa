package domain

// Tensor values follow the host convention: float32 samples in [0,1],
// row-major layout. Images interleave channels per pixel, latents are
// planar (channel-major). All tensors are invocation-local.

type Image struct {
	Height   int
	Width    int
	Channels int
	Pix      []float32
}

func NewImage(height, width, channels int) *Image {
	return &Image{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]float32, height*width*channels),
	}
}

func (i *Image) At(y, x, c int) float32 {
	return i.Pix[(y*i.Width+x)*i.Channels+c]
}

func (i *Image) Set(y, x, c int, v float32) {
	i.Pix[(y*i.Width+x)*i.Channels+c] = v
}

type Mask struct {
	Height int
	Width  int
	Data   []float32
}

// NewMask allocates a mask of the given extent filled with a constant.
// A non-positive extent yields a degenerate mask with no backing data.
func NewMask(height, width int, fill float32) *Mask {
	if height <= 0 || width <= 0 {
		return &Mask{Height: height, Width: width}
	}

	m := &Mask{Height: height, Width: width, Data: make([]float32, height*width)}
	for i := range m.Data {
		m.Data[i] = fill
	}

	return m
}

// Usable reports whether the mask is present with a non-degenerate extent.
func (m *Mask) Usable() bool {
	return m != nil && m.Height > 0 && m.Width > 0
}

func (m *Mask) At(y, x int) float32 {
	return m.Data[y*m.Width+x]
}

func (m *Mask) Set(y, x int, v float32) {
	m.Data[y*m.Width+x] = v
}

// Clamped returns the mask with every sample limited to [0,1]. The receiver
// is returned untouched when all samples are already in range.
func (m *Mask) Clamped() *Mask {
	if !m.Usable() {
		return m
	}

	inRange := true
	for _, v := range m.Data {
		if v < 0 || v > 1 {
			inRange = false
			break
		}
	}

	if inRange {
		return m
	}

	out := &Mask{Height: m.Height, Width: m.Width, Data: make([]float32, len(m.Data))}
	for i, v := range m.Data {
		out.Data[i] = clamp01(v)
	}

	return out
}

// Latent is opaque to the resolver except for its spatial planes; samples
// are planar, one Height×Width plane per channel.
type Latent struct {
	Channels int
	Height   int
	Width    int
	Samples  []float32
}

func NewLatent(channels, height, width int) *Latent {
	return &Latent{
		Channels: channels,
		Height:   height,
		Width:    width,
		Samples:  make([]float32, channels*height*width),
	}
}

// MergeAlpha composes an RGBA preview: RGB carried over from the image,
// the mask written as the alpha plane. A four-channel input has its alpha
// replaced, a single-channel input is replicated to grey RGB. The mask
// extent must match the image extent.
func MergeAlpha(img *Image, mask *Mask) (*Image, error) {
	if mask.Height != img.Height || mask.Width != img.Width {
		return nil, ErrExtentMismatch
	}

	if img.Channels != 1 && img.Channels != 3 && img.Channels != 4 {
		return nil, ErrBadChannelCount
	}

	out := NewImage(img.Height, img.Width, 4)

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			switch img.Channels {
			case 1:
				v := img.At(y, x, 0)
				out.Set(y, x, 0, v)
				out.Set(y, x, 1, v)
				out.Set(y, x, 2, v)
			default:
				out.Set(y, x, 0, img.At(y, x, 0))
				out.Set(y, x, 1, img.At(y, x, 1))
				out.Set(y, x, 2, img.At(y, x, 2))
			}
			out.Set(y, x, 3, clamp01(mask.At(y, x)))
		}
	}

	return out, nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
