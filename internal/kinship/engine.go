package kinship

import (
	"context"

	"github.com/rcliao/famgraph/internal/apperr"
	"github.com/rcliao/famgraph/internal/model"
	"github.com/rcliao/famgraph/internal/store"
)

// Querier runs graph patterns. Both store.Store and the transactional
// store.Graph handed out by Atomic satisfy it.
type Querier interface {
	QueryPattern(ctx context.Context, p store.Pattern, params store.Params) ([]model.Node, error)
}

// Find returns the persons related to personID by category c, ordered by id.
// The queried person is never part of the result.
func Find(ctx context.Context, q Querier, c Category, personID string) ([]model.Node, error) {
	p, ok := c.pattern()
	if !ok {
		return nil, apperr.Newf(apperr.KindUnknownCategory, "find relation", "unknown relation %d", c)
	}

	nodes, err := q.QueryPattern(ctx, p, store.Params{"id": personID})
	if err != nil {
		return nil, apperr.Storage("find "+c.String(), err)
	}

	seen := make(map[string]bool, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		if n.ID == personID || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out, nil
}

// Related reports whether target is in the category c result of personID.
func Related(ctx context.Context, q Querier, c Category, personID, target string) (bool, error) {
	nodes, err := Find(ctx, q, c, personID)
	if err != nil {
		return false, err
	}
	for _, n := range nodes {
		if n.ID == target {
			return true, nil
		}
	}
	return false, nil
}
