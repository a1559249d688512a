package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string       `json:"db_path"`
	DBSizeBytes int64        `json:"db_size_bytes"`
	TotalNodes  int          `json:"total_nodes"`
	TotalEdges  int          `json:"total_edges"`
	Labels      []LabelCount `json:"labels"`
	EdgeKinds   []LabelCount `json:"edge_kinds"`
}

// LabelCount is a per-label or per-kind count.
type LabelCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	st := &Stats{DBPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&st.TotalNodes); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&st.TotalEdges); err != nil {
		return nil, err
	}

	var err error
	st.Labels, err = s.countBy(ctx, `SELECT label, COUNT(*) AS cnt FROM nodes GROUP BY label ORDER BY cnt DESC, label`)
	if err != nil {
		return st, err
	}
	st.EdgeKinds, err = s.countBy(ctx, `SELECT kind, COUNT(*) AS cnt FROM edges GROUP BY kind ORDER BY cnt DESC, kind`)
	return st, err
}

func (s *SQLiteStore) countBy(ctx context.Context, query string) ([]LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []LabelCount
	for rows.Next() {
		var c LabelCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
