package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/famgraph/internal/model"
)

func TestEdgeCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateNode(ctx, model.LabelPerson, nil)
	b, _ := s.CreateNode(ctx, model.LabelPerson, nil)

	e, err := s.CreateEdge(ctx, a.ID, b.ID, model.EdgeChildOf)
	require.NoError(t, err)
	assert.Equal(t, model.EdgeChildOf, e.Kind)

	out, err := s.Edges(ctx, a.ID, Outgoing, model.EdgeChildOf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].To)

	in, err := s.Edges(ctx, b.ID, Incoming, "")
	require.NoError(t, err)
	assert.Len(t, in, 1)

	none, err := s.Edges(ctx, a.ID, Outgoing, model.EdgePartnerOf)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEdgeDuplicateRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateNode(ctx, model.LabelPerson, nil)
	b, _ := s.CreateNode(ctx, model.LabelPerson, nil)

	_, err := s.CreateEdge(ctx, a.ID, b.ID, model.EdgeChildOf)
	require.NoError(t, err)
	_, err = s.CreateEdge(ctx, a.ID, b.ID, model.EdgeChildOf)
	assert.Error(t, err)
}

func TestEdgeToMissingNode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateNode(ctx, model.LabelPerson, nil)
	_, err := s.CreateEdge(ctx, a.ID, "missing", model.EdgeChildOf)
	assert.Error(t, err)
}

func TestEdgeDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateNode(ctx, model.LabelPerson, nil)
	b, _ := s.CreateNode(ctx, model.LabelPerson, nil)
	e, _ := s.CreateEdge(ctx, a.ID, b.ID, model.EdgePartnerOf)

	require.NoError(t, s.DeleteEdge(ctx, e.ID))
	edges, _ := s.Edges(ctx, a.ID, Both, "")
	assert.Empty(t, edges)

	assert.ErrorIs(t, s.DeleteEdge(ctx, e.ID), ErrNotFound)
}
