package port

import (
	"fitmask/internal/core/domain"
)

type PreviewEncoder interface {
	// Encode renders an image tensor to encoded bytes for transport to the host UI.
	Encode(img *domain.Image) ([]byte, error)
}
