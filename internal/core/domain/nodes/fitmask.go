package nodes

import (
	"context"
	"fitmask/internal/core/domain"
	"fitmask/internal/core/port"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const FitMaskType = "FitMaskToImage"

// FitMask resizes a mask to match the driving image's extent, derives an
// RGBA preview and a report string, and optionally applies the fitted mask
// to a latent. Replaces the 10-node scale/convert/merge workflow with a
// single node.
type FitMask struct {
	resampler port.Resampler
}

func NewFitMask(resampler port.Resampler) *FitMask {
	return &FitMask{resampler: resampler}
}

func (n *FitMask) GetType() string {
	return FitMaskType
}

func (n *FitMask) GetSchema() domain.NodeSchema {
	return domain.NodeSchema{
		Type:        FitMaskType,
		DisplayName: "Fit Mask to Image",
		Category:    "DazzleNodes",
		Description: "Fixes dimension mismatches between masks and images for inpainting workflows",
		Inputs: []domain.InputSocket{
			{Name: "image", Type: "IMAGE", Required: true},
			{Name: "mask", Type: "MASK"},
			{Name: "latent", Type: "LATENT"},
			{Name: "missing_mask", Type: "STRING",
				Default: string(domain.DefaultMissingMaskPolicy),
				Options: domain.MissingMaskPolicies()},
		},
		Outputs: []domain.OutputSocket{
			{Name: "fixed_mask", Type: "MASK"},
			{Name: "preview_image", Type: "IMAGE"},
			{Name: "info", Type: "STRING"},
			{Name: "masked_latent", Type: "LATENT"},
		},
	}
}

func (n *FitMask) Execute(ctx context.Context, in *domain.NodeInput) (*domain.NodeOutput, error) {
	if in.Image == nil {
		return nil, domain.ErrMissingImage
	}

	policy := in.MissingMask
	if policy == "" {
		policy = domain.DefaultMissingMaskPolicy
	}

	targetHeight, targetWidth := in.Image.Height, in.Image.Width

	l := log.With().
		Str("node", n.GetType()).
		Int("targetHeight", targetHeight).
		Int("targetWidth", targetWidth).
		Str("missingMask", string(policy)).
		Logger()

	l.Info().Msg("resolving mask fit")

	report := &fitReport{targetHeight: targetHeight, targetWidth: targetWidth}

	mask := in.Mask
	if mask.Usable() {
		mask = mask.Clamped()
		report.maskHeight = mask.Height
		report.maskWidth = mask.Width
		report.policy = "not applied, mask present"
	} else {
		report.maskAbsent = true

		switch policy {
		case domain.PolicyAllVisible:
			mask = domain.NewMask(targetHeight, targetWidth, 1)
			report.policy = "all_visible, synthesized fully visible mask"
		case domain.PolicyAllHidden:
			mask = domain.NewMask(targetHeight, targetWidth, 0)
			report.policy = "all_hidden, synthesized fully hidden mask"
		case domain.PolicyError:
			l.Warn().Msg("mask missing, aborting per policy")
			return nil, fmt.Errorf("%w: mask socket is empty and missing_mask is %q",
				domain.ErrMissingMask, domain.PolicyError)
		case domain.PolicyPassThrough:
			return n.passThrough(in, report)
		default:
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPolicy, policy)
		}
	}

	fitted := mask
	resampled := false

	if mask.Height != targetHeight || mask.Width != targetWidth {
		var err error
		fitted, err = n.resampler.Resample(ctx, mask, targetHeight, targetWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to resample mask: %w", err)
		}
		resampled = true
	}

	switch {
	case resampled:
		report.status = "resampled to fit (nearest-exact)"
	case report.maskAbsent:
		report.status = "no resample, mask synthesized at target extent"
	default:
		report.status = "no resample, extents already match"
	}

	preview, err := domain.MergeAlpha(in.Image, fitted)
	if err != nil {
		return nil, fmt.Errorf("failed to merge preview: %w", err)
	}

	out := &domain.NodeOutput{FixedMask: fitted, PreviewImage: preview}

	if in.Latent != nil {
		maskedLatent, err := n.maskLatent(ctx, in.Latent, fitted)
		if err != nil {
			return nil, fmt.Errorf("failed to apply mask to latent: %w", err)
		}

		out.MaskedLatent = maskedLatent
		report.latent = "Mask applied"
	}

	out.Info = report.String()

	l.Debug().Bool("resampled", resampled).Msg("mask fit resolved")

	return out, nil
}

// passThrough propagates a degenerate mask unchanged and leaves any latent
// unmodified. Callers selecting this policy opt out of the extent guarantee.
func (n *FitMask) passThrough(in *domain.NodeInput, report *fitReport) (*domain.NodeOutput, error) {
	mask := in.Mask
	if mask == nil {
		mask = domain.NewMask(0, 0, 0)
	}

	report.policy = "pass_through, dimension fit skipped"
	report.status = "mask left as-is"

	// Nothing to visualize without coverage, so the preview falls back to an
	// opaque composite.
	preview, err := domain.MergeAlpha(in.Image, domain.NewMask(in.Image.Height, in.Image.Width, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to merge preview: %w", err)
	}

	out := &domain.NodeOutput{FixedMask: mask, PreviewImage: preview}

	if in.Latent != nil {
		out.MaskedLatent = in.Latent
		report.latent = "passed through unmodified"
	}

	out.Info = report.String()

	return out, nil
}

// maskLatent multiplies every channel plane of the latent by the mask,
// resampling the mask down to the latent's own extent first when needed.
func (n *FitMask) maskLatent(ctx context.Context, latent *domain.Latent, mask *domain.Mask) (*domain.Latent, error) {
	fitted := mask
	if mask.Height != latent.Height || mask.Width != latent.Width {
		var err error
		fitted, err = n.resampler.Resample(ctx, mask, latent.Height, latent.Width)
		if err != nil {
			return nil, err
		}
	}

	out := domain.NewLatent(latent.Channels, latent.Height, latent.Width)
	plane := latent.Height * latent.Width

	for c := 0; c < latent.Channels; c++ {
		base := c * plane
		for y := 0; y < latent.Height; y++ {
			for x := 0; x < latent.Width; x++ {
				i := base + y*latent.Width + x
				out.Samples[i] = latent.Samples[i] * fitted.At(y, x)
			}
		}
	}

	return out, nil
}

type fitReport struct {
	maskAbsent   bool
	maskHeight   int
	maskWidth    int
	targetHeight int
	targetWidth  int
	policy       string
	status       string
	latent       string
}

func (r *fitReport) String() string {
	lines := []string{"== Fit Mask to Image =="}

	if r.maskAbsent {
		lines = append(lines, "Mask:  absent")
	} else {
		lines = append(lines, fmt.Sprintf("Mask:  %dx%d", r.maskWidth, r.maskHeight))
	}

	lines = append(lines, fmt.Sprintf("Image: %dx%d", r.targetWidth, r.targetHeight))

	if !r.maskAbsent {
		lines = append(lines, fmt.Sprintf("Scale: %.2fx x %.2fx",
			float64(r.targetWidth)/float64(r.maskWidth),
			float64(r.targetHeight)/float64(r.maskHeight)))
	}

	lines = append(lines, "Policy: "+r.policy)
	lines = append(lines, "Status: "+r.status)

	if r.latent != "" {
		lines = append(lines, "Latent: "+r.latent)
	}

	return strings.Join(lines, "\n")
}
