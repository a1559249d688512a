package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rcliao/famgraph/internal/model"
)

func (g *sqlGraph) CreateEdge(ctx context.Context, from, to string, kind model.EdgeKind) (model.Edge, error) {
	now := time.Now().UTC()
	e := model.Edge{ID: newID(), From: from, To: to, Kind: kind, CreatedAt: now}

	_, err := g.q.ExecContext(ctx,
		`INSERT INTO edges (id, from_id, to_id, kind, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, from, to, string(kind), now.Format(time.RFC3339Nano))
	if err != nil {
		return model.Edge{}, fmt.Errorf("insert edge %s -%s-> %s: %w", from, kind, to, err)
	}
	return e, nil
}

func (g *sqlGraph) DeleteEdge(ctx context.Context, id string) error {
	res, err := g.q.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	return expectAffected(res, "edge", id)
}

func (g *sqlGraph) Edges(ctx context.Context, nodeID string, dir Direction, kind model.EdgeKind) ([]model.Edge, error) {
	var where string
	switch dir {
	case Outgoing:
		where = `from_id = :node`
	case Incoming:
		where = `to_id = :node`
	default:
		where = `(from_id = :node OR to_id = :node)`
	}
	args := []any{sql.Named("node", nodeID)}
	if kind != "" {
		where += ` AND kind = :kind`
		args = append(args, sql.Named("kind", string(kind)))
	}

	rows, err := g.q.QueryContext(ctx,
		`SELECT id, from_id, to_id, kind, created_at FROM edges WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	return collectEdges(rows)
}

func scanEdge(row scanner) (model.Edge, error) {
	var e model.Edge
	var kind, createdAt string
	if err := row.Scan(&e.ID, &e.From, &e.To, &kind, &createdAt); err != nil {
		return e, err
	}
	e.Kind = model.EdgeKind(kind)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return e, nil
}

func collectEdges(rows *sql.Rows) ([]model.Edge, error) {
	defer rows.Close()

	var edges []model.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
