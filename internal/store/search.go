package store

import (
	"context"
	"strings"

	"github.com/rcliao/famgraph/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchNodes matches the query as a case-insensitive substring of the
// top-level text properties named by keys, or of any of them when keys is
// empty. The query is matched literally.
func (g *sqlGraph) SearchNodes(ctx context.Context, label, query string, keys []string, limit int) ([]model.Node, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []any{label, "%" + likeEscaper.Replace(query) + "%"}
	keyFilter := ""
	if len(keys) > 0 {
		keyFilter = ` AND p.key IN (?` + strings.Repeat(`, ?`, len(keys)-1) + `)`
		for _, k := range keys {
			args = append(args, k)
		}
	}
	args = append(args, limit)

	rows, err := g.q.QueryContext(ctx, `
		SELECT n.id, n.label, n.props, n.created_at
		FROM nodes n
		WHERE n.label = ?
		  AND EXISTS (
			SELECT 1 FROM json_each(n.props) p
			WHERE p.type = 'text' AND p.value LIKE ? ESCAPE '\'`+keyFilter+`
		  )
		ORDER BY n.id
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	return collectNodes(rows)
}
