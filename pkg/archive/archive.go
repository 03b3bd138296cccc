package archive

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/conversation"
)

// Archiver writes finished conversations into a Storer and reads them back.
type Archiver struct {
	storer Storer
	logger *zap.Logger
}

// New creates an Archiver over storer.
func New(storer Storer, logger *zap.Logger) *Archiver {
	return &Archiver{storer: storer, logger: logger}
}

// Open picks the SQLite storer when path is set and memory otherwise.
func Open(path string, logger *zap.Logger) (*Archiver, error) {
	if path == "" {
		logger.Info("using in-memory transcript archive")
		return New(NewMemoryStorer(), logger), nil
	}

	storer, err := NewSQLiteStorer(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
	}
	logger.Info("using SQLite transcript archive", zap.String("path", path))
	return New(storer, logger), nil
}

// Close releases the underlying store.
func (a *Archiver) Close() error {
	return a.storer.Close()
}

// Archive stores turns as a chain and returns the head hash ("" for no turns).
func (a *Archiver) Archive(ctx context.Context, turns []conversation.Turn) (string, error) {
	var parent *Node
	for _, t := range turns {
		node := NewNode(EntryFromTurn(t), parent)
		if err := a.storer.Put(ctx, node); err != nil {
			return "", fmt.Errorf("storing turn node: %w", err)
		}
		parent = node
	}

	if parent == nil {
		return "", nil
	}

	a.logger.Debug("conversation archived",
		zap.String("head_hash", parent.Hash),
		zap.Int("turns", len(turns)),
	)
	return parent.Hash, nil
}

// Stats summarizes the archive.
type Stats struct {
	TotalNodes int `json:"total_nodes"`
	RootCount  int `json:"root_count"`
	LeafCount  int `json:"leaf_count"`
}

// Stats counts nodes, roots and leaves.
func (a *Archiver) Stats(ctx context.Context) (Stats, error) {
	nodes, err := a.storer.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	roots, err := a.storer.Roots(ctx)
	if err != nil {
		return Stats{}, err
	}
	leaves, err := a.storer.Leaves(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalNodes: len(nodes),
		RootCount:  len(roots),
		LeafCount:  len(leaves),
	}, nil
}

// History is one archived conversation, oldest turn first.
type History struct {
	Turns    []HistoryTurn `json:"turns"`
	HeadHash string        `json:"head_hash"`
	Depth    int           `json:"depth"`
}

// HistoryTurn is one archived turn with its chain links.
type HistoryTurn struct {
	Hash       string  `json:"hash"`
	ParentHash *string `json:"parent_hash,omitempty"`
	Entry
}

// History returns the conversation ending at hash.
func (a *Archiver) History(ctx context.Context, hash string) (*History, error) {
	ancestry, err := Ancestry(ctx, a.storer, hash)
	if err != nil {
		return nil, err
	}

	turns := make([]HistoryTurn, len(ancestry))
	for i, node := range ancestry {
		turns[len(ancestry)-1-i] = HistoryTurn{
			Hash:       node.Hash,
			ParentHash: node.ParentHash,
			Entry:      node.Entry,
		}
	}

	return &History{
		Turns:    turns,
		HeadHash: hash,
		Depth:    len(turns),
	}, nil
}

// Histories returns one history per leaf.
func (a *Archiver) Histories(ctx context.Context) ([]History, error) {
	leaves, err := a.storer.Leaves(ctx)
	if err != nil {
		return nil, err
	}

	histories := make([]History, 0, len(leaves))
	for _, leaf := range leaves {
		h, err := a.History(ctx, leaf.Hash)
		if err != nil {
			a.logger.Warn("failed to build history for leaf", zap.String("hash", leaf.Hash), zap.Error(err))
			continue
		}
		histories = append(histories, *h)
	}
	return histories, nil
}
