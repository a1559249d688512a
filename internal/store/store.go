// Package store provides the graph storage contract and its SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/famgraph/internal/model"
)

var (
	// ErrNotFound is returned when a node or edge id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrHasEdges is returned when deleting a node that still has edges without detaching them.
	ErrHasEdges = errors.New("node still has edges")
)

// Direction selects edges relative to a node.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Both
)

// Pattern is a named graph-pattern query. Query is a SELECT returning a
// single column of node ids; it may reference named parameters (:name).
// Matched nodes are further filtered by Label and by Props, a set of
// top-level property equalities.
type Pattern struct {
	ID    string
	Label string
	Query string
	Props map[string]string
}

// Params binds the named parameters of a pattern.
type Params map[string]any

// Graph is the set of storage operations the engine consumes.
type Graph interface {
	// CreateNode stores a node; props is encoded as JSON. The id is assigned by the store.
	CreateNode(ctx context.Context, label string, props any) (model.Node, error)

	// ReadNode returns the node with the given id or ErrNotFound.
	ReadNode(ctx context.Context, id string) (model.Node, error)

	// UpdateNode replaces the properties of a node.
	UpdateNode(ctx context.Context, id string, props any) error

	// DeleteNode removes a node. Without detach it fails with ErrHasEdges
	// while edges still touch the node.
	DeleteNode(ctx context.Context, id string, detach bool) error

	// CreateEdge links two existing nodes.
	CreateEdge(ctx context.Context, from, to string, kind model.EdgeKind) (model.Edge, error)

	// DeleteEdge removes an edge by id.
	DeleteEdge(ctx context.Context, id string) error

	// Edges lists the edges of a node. An empty kind matches every kind.
	Edges(ctx context.Context, nodeID string, dir Direction, kind model.EdgeKind) ([]model.Edge, error)

	// QueryPattern runs a pattern and returns the matched nodes ordered by id.
	QueryPattern(ctx context.Context, p Pattern, params Params) ([]model.Node, error)

	// ListNodes lists nodes with the given label ordered by id. limit <= 0 means no limit.
	ListNodes(ctx context.Context, label string, limit int) ([]model.Node, error)

	// ListEdges lists all edges of a kind ordered by id.
	ListEdges(ctx context.Context, kind model.EdgeKind) ([]model.Edge, error)

	// SearchNodes finds nodes with the given label whose text properties
	// contain query. A non-empty keys restricts the match to those properties.
	SearchNodes(ctx context.Context, label, query string, keys []string, limit int) ([]model.Node, error)
}

// Store is a Graph that can run several operations as one unit.
type Store interface {
	Graph

	// Atomic runs fn against a transactional view of the graph. Every write
	// made through that view is committed when fn returns nil and discarded
	// otherwise.
	Atomic(ctx context.Context, fn func(g Graph) error) error

	// Stats returns database statistics.
	Stats(ctx context.Context) (*Stats, error)

	// Close closes the store.
	Close() error
}
