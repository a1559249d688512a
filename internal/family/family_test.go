package family

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rcliao/famgraph/internal/model"
	"github.com/rcliao/famgraph/internal/store"
	"github.com/rcliao/famgraph/internal/validate"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestService(t *testing.T, rules Rules, opts ...Option) (*Service, *store.SQLiteStore) {
	t.Helper()
	st := newTestStore(t)
	v, err := validate.New(validate.Options{
		DateFormat: "2006-01-02",
		MinDate:    "1000-01-01",
		Now:        func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return New(st, v, rules, append([]Option{WithLogger(zap.NewNop())}, opts...)...), st
}

func person(first string, g model.Gender) model.PersonRecord {
	return model.PersonRecord{FirstName: first, LastName: "Test", Gender: g}
}

func mustPerson(t *testing.T, svc *Service, first string, g model.Gender) string {
	t.Helper()
	p, err := svc.CreatePerson(context.Background(), person(first, g))
	require.NoError(t, err)
	return p.ID
}

// buildFamily loads the reference tree without any constraints:
// A is the father of B and C, B and D are partners with child F, D also
// has H, C and E are partners with child G, E also has I, K is the mother
// of E and L, and L is the father of M and N.
func buildFamily(t *testing.T, svc *Service) map[string]string {
	t.Helper()
	ctx := context.Background()
	unconstrained := svc.rules
	svc.rules = Rules{}
	defer func() { svc.rules = unconstrained }()

	ids := map[string]string{}
	for _, p := range []struct {
		name string
		g    model.Gender
	}{
		{"A", model.Male}, {"B", model.Male}, {"C", model.Female}, {"D", model.Female},
		{"E", model.Male}, {"F", model.Female}, {"G", model.Male}, {"H", model.Male},
		{"I", model.Female}, {"K", model.Female}, {"L", model.Male}, {"M", model.Male},
		{"N", model.Female},
	} {
		ids[p.name] = mustPerson(t, svc, p.name, p.g)
	}

	for _, e := range [][2]string{
		{"B", "A"}, {"C", "A"},
		{"F", "B"}, {"F", "D"}, {"H", "D"},
		{"G", "C"}, {"G", "E"}, {"I", "E"},
		{"E", "K"}, {"L", "K"},
		{"M", "L"}, {"N", "L"},
	} {
		_, err := svc.CreateParent(ctx, ids[e[0]], ids[e[1]])
		require.NoError(t, err)
	}
	for _, pair := range [][2]string{{"B", "D"}, {"C", "E"}} {
		_, err := svc.CreatePartner(ctx, ids[pair[0]], ids[pair[1]])
		require.NoError(t, err)
	}
	return ids
}

func firstNames(ps []model.Person) []string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.FirstName)
	}
	return names
}

func intp(i int) *int { return &i }

func floatp(f float64) *float64 { return &f }
