package port

import (
	"fitmask/internal/core/domain"
)

type NodeRegistry interface {
	// Register adds a node to the registry under its type identifier.
	Register(node domain.Node)
	// Get retrieves a registered node by its type identifier or returns an error if not found.
	Get(nodeType string) (domain.Node, error)
	// ListTypes returns the type identifiers of all registered nodes.
	ListTypes() []string
}
