package store

import (
	"context"

	"github.com/rcliao/famgraph/internal/model"
)

func (g *sqlGraph) ListNodes(ctx context.Context, label string, limit int) ([]model.Node, error) {
	query := `SELECT id, label, props, created_at FROM nodes WHERE label = ? ORDER BY id`
	args := []any{label}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := g.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectNodes(rows)
}

func (g *sqlGraph) ListEdges(ctx context.Context, kind model.EdgeKind) ([]model.Edge, error) {
	rows, err := g.q.QueryContext(ctx,
		`SELECT id, from_id, to_id, kind, created_at FROM edges WHERE kind = ? ORDER BY id`, string(kind))
	if err != nil {
		return nil, err
	}
	return collectEdges(rows)
}
