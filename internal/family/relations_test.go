package family

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rcliao/famgraph/internal/apperr"
	"github.com/rcliao/famgraph/internal/config"
	"github.com/rcliao/famgraph/internal/kinship"
	"github.com/rcliao/famgraph/internal/metrics"
	"github.com/rcliao/famgraph/internal/model"
	"github.com/rcliao/famgraph/internal/store"
)

func detail(t *testing.T, err error, key string) any {
	t.Helper()
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae), "not an engine error: %v", err)
	return ae.Details[key]
}

func TestCreateParent(t *testing.T) {
	svc, _ := newTestService(t, Rules{MaxParents: 2})
	ctx := context.Background()

	child := mustPerson(t, svc, "Child", model.Female)
	mother := mustPerson(t, svc, "Mother", model.Female)
	father := mustPerson(t, svc, "Father", model.Male)

	id, err := svc.CreateParent(ctx, child, mother)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	_, err = svc.CreateParent(ctx, child, father)
	require.NoError(t, err)

	parents, err := svc.ReadParents(ctx, child)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Mother", "Father"}, firstNames(parents))

	third := mustPerson(t, svc, "Third", model.Male)
	_, err = svc.CreateParent(ctx, child, third)
	assert.ErrorIs(t, err, apperr.ErrCardinalityExceeded)
}

func TestCreateParentSelf(t *testing.T) {
	svc, _ := newTestService(t, Rules{MaxParents: 2})
	p := mustPerson(t, svc, "Solo", model.Male)

	_, err := svc.CreateParent(context.Background(), p, p)
	assert.ErrorIs(t, err, apperr.ErrSelfRelation)
}

func TestCreateParentMissingEndpoint(t *testing.T) {
	svc, _ := newTestService(t, Rules{MaxParents: 2})
	ctx := context.Background()
	p := mustPerson(t, svc, "Known", model.Male)

	_, err := svc.CreateParent(ctx, "ghost", p)
	require.ErrorIs(t, err, apperr.ErrEndpointNotFound)
	assert.Equal(t, "child", detail(t, err, "endpoint"))

	_, err = svc.CreateParent(ctx, p, "ghost")
	require.ErrorIs(t, err, apperr.ErrEndpointNotFound)
	assert.Equal(t, "parent", detail(t, err, "endpoint"))

	// Existence is checked before non-reflexivity.
	_, err = svc.CreateParent(ctx, "ghost", "ghost")
	assert.ErrorIs(t, err, apperr.ErrEndpointNotFound)
}

func TestCreateParentUnlimited(t *testing.T) {
	svc, _ := newTestService(t, Rules{MaxParents: 0})
	ctx := context.Background()
	child := mustPerson(t, svc, "Child", model.Male)

	for i := 0; i < 10; i++ {
		parent := mustPerson(t, svc, "Parent", model.Female)
		_, err := svc.CreateParent(ctx, child, parent)
		require.NoError(t, err, "parent %d", i)
	}
	parents, err := svc.ReadParents(ctx, child)
	require.NoError(t, err)
	assert.Len(t, parents, 10)
}

func TestCreateParentTwice(t *testing.T) {
	svc, _ := newTestService(t, Rules{MaxParents: 0})
	ctx := context.Background()
	child := mustPerson(t, svc, "Child", model.Male)
	parent := mustPerson(t, svc, "Parent", model.Female)

	_, err := svc.CreateParent(ctx, child, parent)
	require.NoError(t, err)
	_, err = svc.CreateParent(ctx, child, parent)
	assert.ErrorIs(t, err, apperr.ErrDuplicateRelation)

	parents, err := svc.ReadParents(ctx, child)
	require.NoError(t, err)
	assert.Len(t, parents, 1)
}

func TestCreateParentConcurrent(t *testing.T) {
	svc, _ := newTestService(t, Rules{MaxParents: 2})
	ctx := context.Background()
	child := mustPerson(t, svc, "Child", model.Male)

	const n = 8
	parents := make([]string, n)
	for i := range parents {
		parents[i] = mustPerson(t, svc, "Parent", model.Female)
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateParent(ctx, child, parents[i])
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrCardinalityExceeded)
	}
	assert.Equal(t, 2, ok)

	got, err := svc.ReadParents(ctx, child)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCreatePartnerBothDirections(t *testing.T) {
	svc, st := newTestService(t, Rules{MaxPartners: 1})
	ctx := context.Background()
	a := mustPerson(t, svc, "Alice", model.Female)
	b := mustPerson(t, svc, "Bob", model.Male)

	id, err := svc.CreatePartner(ctx, a, b)
	require.NoError(t, err)

	edges, err := st.Edges(ctx, a, store.Outgoing, model.EdgePartnerOf)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, id, edges[0].ID)

	pa, err := svc.ReadPartners(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, firstNames(pa))

	pb, err := svc.ReadPartners(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, firstNames(pb))

	c := mustPerson(t, svc, "Carol", model.Female)
	_, err = svc.CreatePartner(ctx, a, c)
	assert.ErrorIs(t, err, apperr.ErrCardinalityExceeded)
}

func TestCreatePartnerForbidden(t *testing.T) {
	rules := Rules{ForbiddenPartners: config.Default().Rules.Forbidden()}
	svc, _ := newTestService(t, rules)
	ids := buildFamily(t, svc)
	ctx := context.Background()

	tests := []struct {
		person, target string
		category       kinship.Category
	}{
		{"F", "A", kinship.GrandParents},
		{"A", "B", kinship.Childrens},
		{"A", "F", kinship.Grandchildrens},
		{"B", "D", kinship.Spouses},
		{"H", "F", kinship.Siblings},
		{"A", "D", kinship.DaughtersInLaw},
		{"A", "E", kinship.SonsInLaw},
		{"D", "A", kinship.FathersInLaw},
		{"C", "K", kinship.MothersInLaw},
		{"B", "A", kinship.Parents},
	}
	for _, tt := range tests {
		t.Run(tt.person+"-"+tt.target, func(t *testing.T) {
			_, err := svc.CreatePartner(ctx, ids[tt.person], ids[tt.target])
			require.ErrorIs(t, err, apperr.ErrForbiddenPair)
			assert.Equal(t, tt.category.String(), detail(t, err, "category"))
		})
	}

	_, err := svc.CreatePartner(ctx, ids["F"], ids["G"])
	assert.NoError(t, err, "cousins are not forbidden by default")
}

func TestCreatePartnerForbiddenSiblingsOnly(t *testing.T) {
	svc, _ := newTestService(t, Rules{MaxPartners: 1, ForbiddenPartners: []kinship.Category{kinship.Siblings}})
	ids := buildFamily(t, svc)

	_, err := svc.CreatePartner(context.Background(), ids["F"], ids["H"])
	assert.ErrorIs(t, err, apperr.ErrForbiddenPair)

	partners, err := svc.ReadPartners(context.Background(), ids["F"])
	require.NoError(t, err)
	assert.Empty(t, partners)
}

func TestCheckOrder(t *testing.T) {
	svc, _ := newTestService(t, Rules{MaxPartners: 1, ForbiddenPartners: []kinship.Category{kinship.Spouses}})
	ids := buildFamily(t, svc)
	ctx := context.Background()

	// B is at the partner limit and D is already his spouse: cardinality wins.
	_, err := svc.CreatePartner(ctx, ids["B"], ids["D"])
	assert.ErrorIs(t, err, apperr.ErrCardinalityExceeded)

	// Self relation is reported before cardinality.
	_, err = svc.CreatePartner(ctx, ids["B"], ids["B"])
	assert.ErrorIs(t, err, apperr.ErrSelfRelation)
}

func TestRejectionsObserved(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := metrics.Nop()
	svc, _ := newTestService(t, Rules{MaxParents: 1})
	svc.log = zap.New(core)
	svc.metrics = m
	ctx := context.Background()

	child := mustPerson(t, svc, "Child", model.Male)
	p1 := mustPerson(t, svc, "One", model.Female)
	p2 := mustPerson(t, svc, "Two", model.Male)
	_, err := svc.CreateParent(ctx, child, p1)
	require.NoError(t, err)
	_, err = svc.CreateParent(ctx, child, p2)
	require.ErrorIs(t, err, apperr.ErrCardinalityExceeded)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues(string(apperr.KindCardinalityExceeded))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("create_parent", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("create_parent", string(apperr.KindCardinalityExceeded))))

	warnings := logs.FilterMessage("relation rejected").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, child, warnings[0].ContextMap()["child"])
}

func TestRemoveRelations(t *testing.T) {
	svc, st := newTestService(t, Rules{MaxParents: 2, MaxPartners: 1})
	ids := buildFamily(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.RemovePartner(ctx, ids["D"], ids["B"]))
	for _, p := range []string{"B", "D"} {
		edges, err := st.Edges(ctx, ids[p], store.Both, model.EdgePartnerOf)
		require.NoError(t, err)
		assert.Empty(t, edges, p)
	}
	assert.ErrorIs(t, svc.RemovePartner(ctx, ids["D"], ids["B"]), apperr.ErrNotFound)

	require.NoError(t, svc.RemoveParent(ctx, ids["F"], ids["B"]))
	parents, err := svc.ReadParents(ctx, ids["F"])
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, firstNames(parents))
	assert.ErrorIs(t, svc.RemoveParent(ctx, ids["F"], ids["B"]), apperr.ErrNotFound)
}

func TestRelation(t *testing.T) {
	svc, _ := newTestService(t, Rules{})
	ids := buildFamily(t, svc)
	ctx := context.Background()

	cousins, err := svc.RelationByName(ctx, "cousins", ids["G"])
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"F", "M", "N"}, firstNames(cousins))

	spouses, err := svc.Relation(ctx, kinship.Spouses, ids["D"])
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, firstNames(spouses))

	_, err = svc.RelationByName(ctx, "exes", ids["D"])
	assert.ErrorIs(t, err, apperr.ErrUnknownCategory)
}
