package resampler

import (
	"context"
	"errors"
	"fitmask/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Nearest resamples mask planes with nearest-exact index mapping: each
// output cell takes the value of the source cell whose center is closest,
// sampling at half-pixel offsets. No blending, so output cells only ever
// hold values present in the source.
type Nearest struct{}

func NewNearest() *Nearest {
	return &Nearest{}
}

func (n *Nearest) Resample(ctx context.Context, mask *domain.Mask, height, width int) (*domain.Mask, error) {
	if !mask.Usable() {
		return nil, errors.New("cannot resample a degenerate mask")
	}

	if height <= 0 || width <= 0 {
		return nil, errors.New("target extent must be positive")
	}

	log.Debug().
		Int("sourceHeight", mask.Height).
		Int("sourceWidth", mask.Width).
		Int("targetHeight", height).
		Int("targetWidth", width).
		Msg("resampling mask")

	out := domain.NewMask(height, width, 0)

	scaleY := float64(mask.Height) / float64(height)
	scaleX := float64(mask.Width) / float64(width)

	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		srcY := int((float64(y) + 0.5) * scaleY)
		if srcY >= mask.Height {
			srcY = mask.Height - 1
		}

		for x := 0; x < width; x++ {
			srcX := int((float64(x) + 0.5) * scaleX)
			if srcX >= mask.Width {
				srcX = mask.Width - 1
			}

			out.Set(y, x, mask.At(srcY, srcX))
		}
	}

	return out, nil
}
