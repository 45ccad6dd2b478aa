package port

import (
	"context"
	"fitmask/internal/core/domain"
)

type Resampler interface {
	// Resample returns a copy of the mask scaled to the target extent using
	// nearest-exact sampling. Output cells carry source values unblended, so
	// discrete mask values survive the resize.
	Resample(ctx context.Context, mask *domain.Mask, height, width int) (*domain.Mask, error)
}
