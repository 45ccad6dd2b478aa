package domain

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

type InputSocket struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Default  string   `json:"default,omitempty"`
	Options  []string `json:"options,omitempty"`
}

type OutputSocket struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NodeSchema is the typed socket declaration the host reads during node
// discovery.
type NodeSchema struct {
	Type        string         `json:"type"`
	DisplayName string         `json:"display_name"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Inputs      []InputSocket  `json:"inputs"`
	Outputs     []OutputSocket `json:"outputs"`
}

type NodeInput struct {
	Image       *Image
	Mask        *Mask
	Latent      *Latent
	MissingMask MissingMaskPolicy
}

type NodeOutput struct {
	FixedMask    *Mask
	PreviewImage *Image
	Info         string
	MaskedLatent *Latent
}

type Node interface {
	// Execute runs the node once against invocation-local inputs.
	Execute(ctx context.Context, in *NodeInput) (*NodeOutput, error)
	// GetType returns the node type identifier used by the host graph.
	GetType() string
	// GetSchema returns the socket declaration for node discovery.
	GetSchema() NodeSchema
}

type NodeRegistry struct {
	nodes map[string]Node
}

func (r *NodeRegistry) Register(node Node) {
	if r.nodes == nil {
		r.nodes = make(map[string]Node)
	}

	log.Info().Str("node", node.GetType()).Msg("adding node to registry")
	r.nodes[node.GetType()] = node
}

func (r *NodeRegistry) Get(nodeType string) (Node, error) {
	log.Debug().Str("node", nodeType).Msg("fetching node from registry")

	if r.nodes == nil {
		err := errors.New("can't fetch node, registry not initialized")
		return nil, err
	}

	node, ok := r.nodes[nodeType]
	if !ok {
		return nil, errors.New("node not found")
	}

	return node, nil
}

func (r *NodeRegistry) ListTypes() []string {
	keys := make([]string, len(r.nodes))

	i := 0
	for k := range r.nodes {
		keys[i] = k
		i++
	}

	return keys
}
