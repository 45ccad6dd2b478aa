package preview

import (
	"bytes"
	"fitmask/internal/core/domain"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// PNGEncoder renders float tensors into 8-bit PNG bytes for the host UI.
type PNGEncoder struct{}

func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{}
}

func (e *PNGEncoder) Encode(img *domain.Image) ([]byte, error) {
	if img.Channels != 3 && img.Channels != 4 {
		return nil, domain.ErrBadChannelCount
	}

	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			a := uint8(255)
			if img.Channels == 4 {
				a = toByte(img.At(y, x, 3))
			}

			out.SetNRGBA(x, y, color.NRGBA{
				R: toByte(img.At(y, x, 0)),
				G: toByte(img.At(y, x, 1)),
				B: toByte(img.At(y, x, 2)),
				A: a,
			})
		}
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, out, imaging.PNG); err != nil {
		err = fmt.Errorf("error encoding preview %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}

	log.Debug().Int("bytes", buf.Len()).Msg("encoded preview")

	return buf.Bytes(), nil
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
