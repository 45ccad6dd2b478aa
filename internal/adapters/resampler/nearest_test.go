package resampler

import (
	"context"
	"fitmask/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerboard(height, width int) *domain.Mask {
	m := domain.NewMask(height, width, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Set(y, x, float32((y+x)%2))
		}
	}

	return m
}

func TestResampleUpscaleCheckerboard(t *testing.T) {
	n := NewNearest()

	src := checkerboard(512, 512)

	out, err := n.Resample(context.Background(), src, 1024, 1024)
	require.NoError(t, err)

	require.Equal(t, 1024, out.Height)
	require.Equal(t, 1024, out.Width)

	// every source cell becomes a 2x2 block of the identical value, nothing blended
	for y := 0; y < 1024; y++ {
		for x := 0; x < 1024; x++ {
			expected := src.At(y/2, x/2)
			if out.At(y, x) != expected {
				t.Fatalf("cell (%d,%d): got %f, want %f", y, x, out.At(y, x), expected)
			}
			if v := out.At(y, x); v != 0 && v != 1 {
				t.Fatalf("cell (%d,%d): fractional value %f", y, x, v)
			}
		}
	}
}

func TestResampleDownscale(t *testing.T) {
	n := NewNearest()

	src := domain.NewMask(4, 4, 0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(y, x, float32(y*4+x))
		}
	}

	out, err := n.Resample(context.Background(), src, 2, 2)
	assert.NoError(t, err)

	// nearest-exact samples cell centers: rows/cols 1 and 3
	assert.Equal(t, float32(5), out.At(0, 0))
	assert.Equal(t, float32(7), out.At(0, 1))
	assert.Equal(t, float32(13), out.At(1, 0))
	assert.Equal(t, float32(15), out.At(1, 1))
}

func TestResamplePreservesSourceValues(t *testing.T) {
	n := NewNearest()

	src := domain.NewMask(3, 3, 0)
	values := []float32{0, 0.25, 1}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			src.Set(y, x, values[(y+x)%3])
		}
	}

	out, err := n.Resample(context.Background(), src, 7, 5)
	assert.NoError(t, err)

	allowed := map[float32]bool{0: true, 0.25: true, 1: true}
	for _, v := range out.Data {
		assert.True(t, allowed[v], "unexpected value %f", v)
	}
}

func TestResampleDegenerateMask(t *testing.T) {
	n := NewNearest()

	_, err := n.Resample(context.Background(), domain.NewMask(0, 0, 0), 4, 4)
	assert.Errorf(t, err, "cannot resample a degenerate mask")

	_, err = n.Resample(context.Background(), nil, 4, 4)
	assert.Error(t, err)
}

func TestResampleBadTargetExtent(t *testing.T) {
	n := NewNearest()

	_, err := n.Resample(context.Background(), checkerboard(4, 4), 0, 4)
	assert.Errorf(t, err, "target extent must be positive")
}

func TestResampleContextCanceled(t *testing.T) {
	n := NewNearest()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Resample(ctx, checkerboard(4, 4), 8, 8)
	assert.ErrorIs(t, err, context.Canceled)
}
