package family

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rcliao/famgraph/internal/apperr"
	"github.com/rcliao/famgraph/internal/kinship"
	"github.com/rcliao/famgraph/internal/model"
	"github.com/rcliao/famgraph/internal/store"
)

// relation describes one kind of relation write for the constraint checks.
type relation struct {
	op        string
	kind      model.EdgeKind
	from, to  string // endpoint roles, reported by EndpointNotFound
	max       int
	forbidden []kinship.Category
}

func (s *Service) parentRelation() relation {
	return relation{
		op:   "create parent",
		kind: model.EdgeChildOf,
		from: "child",
		to:   "parent",
		max:  s.rules.MaxParents,
	}
}

func (s *Service) partnerRelation() relation {
	return relation{
		op:        "create partner",
		kind:      model.EdgePartnerOf,
		from:      "person",
		to:        "partner",
		max:       s.rules.MaxPartners,
		forbidden: s.rules.ForbiddenPartners,
	}
}

// restored drops the limit and forbidden categories from rel, for replaying
// relations that already held in a stored graph.
func (rel relation) restored() relation {
	rel.op = "import"
	rel.max = 0
	rel.forbidden = nil
	return rel
}

// check runs the constraint pipeline for a relation from fromID to toID.
// Checks run in order and the first failure is returned:
//
//  1. both endpoints are persons
//  2. the endpoints differ
//  3. fromID is below the configured maximum of rel.kind edges
//  4. toID is not related to fromID by any forbidden category
//  5. the edge does not exist yet
//
// It must run on the same transactional graph as the write it guards.
func (s *Service) check(ctx context.Context, g store.Graph, rel relation, fromID, toID string) error {
	err := s.runChecks(ctx, g, rel, fromID, toID)
	if kind := apperr.KindOf(err); kind != "" && kind != apperr.KindStorage {
		s.metrics.Reject(kind)
		s.log.Warn("relation rejected",
			zap.String("op", rel.op),
			zap.String(rel.from, fromID),
			zap.String(rel.to, toID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
	return err
}

func (s *Service) runChecks(ctx context.Context, g store.Graph, rel relation, fromID, toID string) error {
	for _, ep := range []struct{ role, id string }{{rel.from, fromID}, {rel.to, toID}} {
		if _, _, err := readPerson(ctx, g, ep.id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Newf(apperr.KindEndpointNotFound, rel.op, "%s %s does not exist", ep.role, ep.id).
					WithDetail("endpoint", ep.role).
					WithDetail("id", ep.id)
			}
			return apperr.Storage(rel.op, err)
		}
	}

	if fromID == toID {
		return apperr.Newf(apperr.KindSelfRelation, rel.op, "%s cannot be related to itself", fromID)
	}

	existing, err := g.Edges(ctx, fromID, store.Outgoing, rel.kind)
	if err != nil {
		return apperr.Storage(rel.op, err)
	}
	if rel.max > 0 && len(existing) >= rel.max {
		return apperr.Newf(apperr.KindCardinalityExceeded, rel.op, "%s %s already has %d %s edges, limit %d", rel.from, fromID, len(existing), rel.kind, rel.max).
			WithDetail("max", rel.max)
	}

	for _, c := range rel.forbidden {
		related, err := kinship.Related(ctx, g, c, fromID, toID)
		if err != nil {
			return err
		}
		if related {
			return apperr.Newf(apperr.KindForbiddenPair, rel.op, "%s is one of the %s of %s", toID, c, fromID).
				WithDetail("category", c.String())
		}
	}

	for _, e := range existing {
		if e.To == toID {
			return apperr.Newf(apperr.KindDuplicateRelation, rel.op, "%s %s is already linked to %s %s", rel.from, fromID, rel.to, toID).
				WithDetail("edge", e.ID)
		}
	}
	return nil
}
