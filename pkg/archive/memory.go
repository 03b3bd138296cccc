package archive

import (
	"context"
	"sync"
)

// MemoryStorer keeps nodes in process memory.
type MemoryStorer struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string
}

// NewMemoryStorer returns an empty in-memory store.
func NewMemoryStorer() *MemoryStorer {
	return &MemoryStorer{nodes: make(map[string]*Node)}
}

func (s *MemoryStorer) Put(_ context.Context, node *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[node.Hash]; ok {
		return nil
	}
	s.nodes[node.Hash] = node
	s.order = append(s.order, node.Hash)
	return nil
}

func (s *MemoryStorer) Get(_ context.Context, hash string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[hash]
	if !ok {
		return nil, ErrNotFound{Hash: hash}
	}
	return node, nil
}

func (s *MemoryStorer) Has(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[hash]
	return ok, nil
}

func (s *MemoryStorer) List(_ context.Context) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*Node, 0, len(s.order))
	for _, h := range s.order {
		nodes = append(nodes, s.nodes[h])
	}
	return nodes, nil
}

func (s *MemoryStorer) Roots(ctx context.Context) ([]*Node, error) {
	all, _ := s.List(ctx)
	var roots []*Node
	for _, n := range all {
		if n.ParentHash == nil {
			roots = append(roots, n)
		}
	}
	return roots, nil
}

func (s *MemoryStorer) Leaves(ctx context.Context) ([]*Node, error) {
	all, _ := s.List(ctx)
	parents := make(map[string]bool, len(all))
	for _, n := range all {
		if n.ParentHash != nil {
			parents[*n.ParentHash] = true
		}
	}

	var leaves []*Node
	for _, n := range all {
		if !parents[n.Hash] {
			leaves = append(leaves, n)
		}
	}
	return leaves, nil
}

func (s *MemoryStorer) Close() error {
	return nil
}
