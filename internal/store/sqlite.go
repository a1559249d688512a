package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/famgraph/internal/model"
)

// DefaultTimeout bounds every storage call that has no explicit timeout.
const DefaultTimeout = 5 * time.Second

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithTimeout sets the per-operation timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) { s.timeout = d }
}

// SQLiteStore implements Store using SQLite.
//
// All access goes through a single connection, so transactions opened by
// Atomic are serialized: a check made inside one cannot be invalidated by a
// concurrent writer before it commits.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	timeout time.Duration
	root    *sqlGraph
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		timeout: DefaultTimeout,
		root:    &sqlGraph{q: db},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id          TEXT PRIMARY KEY,
		label       TEXT NOT NULL,
		props       TEXT NOT NULL DEFAULT '{}',
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(label);

	CREATE TABLE IF NOT EXISTS edges (
		id          TEXT PRIMARY KEY,
		from_id     TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		to_id       TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		kind        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		UNIQUE (from_id, to_id, kind)
	);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id, kind);
	CREATE INDEX IF NOT EXISTS idx_edges_kind ON edges(kind);

	CREATE VIEW IF NOT EXISTS child_of AS
		SELECT from_id AS child, to_id AS parent FROM edges WHERE kind = 'child_of';
	CREATE VIEW IF NOT EXISTS partner_of AS
		SELECT from_id AS person, to_id AS partner FROM edges WHERE kind = 'partner_of';
	`
	_, err := s.db.Exec(schema)
	return err
}

// bound applies the store timeout to ctx.
func (s *SQLiteStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Atomic runs fn inside a transaction.
func (s *SQLiteStore) Atomic(ctx context.Context, fn func(g Graph) error) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlGraph{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateNode(ctx context.Context, label string, props any) (model.Node, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.CreateNode(ctx, label, props)
}

func (s *SQLiteStore) ReadNode(ctx context.Context, id string) (model.Node, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.ReadNode(ctx, id)
}

func (s *SQLiteStore) UpdateNode(ctx context.Context, id string, props any) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.UpdateNode(ctx, id, props)
}

func (s *SQLiteStore) DeleteNode(ctx context.Context, id string, detach bool) error {
	return s.Atomic(ctx, func(g Graph) error {
		return g.DeleteNode(ctx, id, detach)
	})
}

func (s *SQLiteStore) CreateEdge(ctx context.Context, from, to string, kind model.EdgeKind) (model.Edge, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.CreateEdge(ctx, from, to, kind)
}

func (s *SQLiteStore) DeleteEdge(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.DeleteEdge(ctx, id)
}

func (s *SQLiteStore) Edges(ctx context.Context, nodeID string, dir Direction, kind model.EdgeKind) ([]model.Edge, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.Edges(ctx, nodeID, dir, kind)
}

func (s *SQLiteStore) QueryPattern(ctx context.Context, p Pattern, params Params) ([]model.Node, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.QueryPattern(ctx, p, params)
}

func (s *SQLiteStore) ListNodes(ctx context.Context, label string, limit int) ([]model.Node, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.ListNodes(ctx, label, limit)
}

func (s *SQLiteStore) ListEdges(ctx context.Context, kind model.EdgeKind) ([]model.Edge, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.ListEdges(ctx, kind)
}

func (s *SQLiteStore) SearchNodes(ctx context.Context, label, query string, keys []string, limit int) ([]model.Node, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.root.SearchNodes(ctx, label, query, keys, limit)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlGraph implements Graph on top of a connection or a transaction.
type sqlGraph struct {
	q queryer
}

func newID() string {
	return ulid.Make().String()
}

func (g *sqlGraph) CreateNode(ctx context.Context, label string, props any) (model.Node, error) {
	b, err := encodeProps(props)
	if err != nil {
		return model.Node{}, err
	}
	now := time.Now().UTC()
	n := model.Node{ID: newID(), Label: label, Props: b, CreatedAt: now}

	_, err = g.q.ExecContext(ctx,
		`INSERT INTO nodes (id, label, props, created_at) VALUES (?, ?, ?, ?)`,
		n.ID, n.Label, string(b), now.Format(time.RFC3339Nano))
	if err != nil {
		return model.Node{}, fmt.Errorf("insert node: %w", err)
	}
	return n, nil
}

func (g *sqlGraph) ReadNode(ctx context.Context, id string) (model.Node, error) {
	row := g.q.QueryRowContext(ctx,
		`SELECT id, label, props, created_at FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Node{}, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return n, err
}

func (g *sqlGraph) UpdateNode(ctx context.Context, id string, props any) error {
	b, err := encodeProps(props)
	if err != nil {
		return err
	}
	res, err := g.q.ExecContext(ctx, `UPDATE nodes SET props = ? WHERE id = ?`, string(b), id)
	if err != nil {
		return fmt.Errorf("update node: %w", err)
	}
	return expectAffected(res, "node", id)
}

func (g *sqlGraph) DeleteNode(ctx context.Context, id string, detach bool) error {
	if _, err := g.ReadNode(ctx, id); err != nil {
		return err
	}

	if !detach {
		var n int
		err := g.q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM edges WHERE from_id = ? OR to_id = ?`, id, id).Scan(&n)
		if err != nil {
			return fmt.Errorf("count edges: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("node %s: %w", id, ErrHasEdges)
		}
	}

	if _, err := g.q.ExecContext(ctx, `DELETE FROM edges WHERE from_id = ? OR to_id = ?`, id, id); err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	if _, err := g.q.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	return nil
}

func (g *sqlGraph) QueryPattern(ctx context.Context, p Pattern, params Params) ([]model.Node, error) {
	var b strings.Builder
	b.WriteString(`SELECT n.id, n.label, n.props, n.created_at FROM nodes n WHERE n.id IN (`)
	b.WriteString(p.Query)
	b.WriteString(`)`)

	args := make([]any, 0, len(params)+2*len(p.Props)+1)
	if p.Label != "" {
		b.WriteString(` AND n.label = :filter_label`)
		args = append(args, sql.Named("filter_label", p.Label))
	}
	for i, key := range sortedKeys(p.Props) {
		path, val := fmt.Sprintf("filter_path_%d", i), fmt.Sprintf("filter_value_%d", i)
		fmt.Fprintf(&b, ` AND json_extract(n.props, :%s) = :%s`, path, val)
		args = append(args, sql.Named(path, "$."+key), sql.Named(val, p.Props[key]))
	}
	b.WriteString(` ORDER BY n.id`)

	for _, key := range sortedKeys(params) {
		args = append(args, sql.Named(key, params[key]))
	}

	rows, err := g.q.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pattern %s: %w", p.ID, err)
	}
	return collectNodes(rows)
}

func encodeProps(props any) ([]byte, error) {
	if props == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("encode props: %w", err)
	}
	return b, nil
}

func expectAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (model.Node, error) {
	var n model.Node
	var props, createdAt string
	if err := row.Scan(&n.ID, &n.Label, &props, &createdAt); err != nil {
		return n, err
	}
	n.Props = json.RawMessage(props)
	n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return n, nil
}

func collectNodes(rows *sql.Rows) ([]model.Node, error) {
	defer rows.Close()

	var nodes []model.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
