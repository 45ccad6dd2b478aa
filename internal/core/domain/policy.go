package domain

import "fmt"

// MissingMaskPolicy selects the behavior when the mask socket is empty or
// carries a degenerate (zero-extent) mask.
type MissingMaskPolicy string

const (
	// PolicyAllVisible synthesizes a fully visible mask at the image extent.
	PolicyAllVisible MissingMaskPolicy = "all_visible"
	// PolicyAllHidden synthesizes a fully hidden mask at the image extent.
	PolicyAllHidden MissingMaskPolicy = "all_hidden"
	// PolicyError aborts the invocation with ErrMissingMask.
	PolicyError MissingMaskPolicy = "error"
	// PolicyPassThrough propagates the degenerate mask unchanged, skipping
	// dimension fitting entirely. Kept for workflows that tolerate empty
	// masks downstream; the extent invariant does not hold on this branch.
	PolicyPassThrough MissingMaskPolicy = "pass_through"
)

const DefaultMissingMaskPolicy = PolicyAllVisible

func ParseMissingMaskPolicy(s string) (MissingMaskPolicy, error) {
	switch MissingMaskPolicy(s) {
	case PolicyAllVisible, PolicyAllHidden, PolicyError, PolicyPassThrough:
		return MissingMaskPolicy(s), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// MissingMaskPolicies lists the socket option values in declaration order.
func MissingMaskPolicies() []string {
	return []string{
		string(PolicyAllVisible),
		string(PolicyAllHidden),
		string(PolicyError),
		string(PolicyPassThrough),
	}
}
