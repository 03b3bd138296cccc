package archive

import "context"

// Storer persists archive nodes. Put is idempotent: storing a node whose hash
// already exists is a no-op.
type Storer interface {
	// Put stores a node. If the node already exists (by hash), this is a no-op.
	Put(ctx context.Context, node *Node) error

	// Get retrieves a node by its hash. Returns ErrNotFound if the node doesn't exist.
	Get(ctx context.Context, hash string) (*Node, error)

	// Has checks if a node exists by its hash.
	Has(ctx context.Context, hash string) (bool, error)

	// List returns all nodes in insertion order.
	List(ctx context.Context) ([]*Node, error)

	// Roots returns all nodes with no parent.
	Roots(ctx context.Context) ([]*Node, error)

	// Leaves returns all nodes with no children.
	Leaves(ctx context.Context) ([]*Node, error)

	// Close releases any resources.
	Close() error
}

// ErrNotFound is returned when a node doesn't exist in the store.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	if e.Hash == "" {
		return "node not found"
	}

	return "node not found: " + e.Hash
}

// Ancestry walks from hash back to its root (node first, root last).
func Ancestry(ctx context.Context, s Storer, hash string) ([]*Node, error) {
	var path []*Node
	for {
		node, err := s.Get(ctx, hash)
		if err != nil {
			return nil, err
		}
		path = append(path, node)
		if node.ParentHash == nil {
			return path, nil
		}
		hash = *node.ParentHash
	}
}
