package family

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/famgraph/internal/apperr"
	"github.com/rcliao/famgraph/internal/kinship"
	"github.com/rcliao/famgraph/internal/model"
	"github.com/rcliao/famgraph/internal/store"
)

// CreateParent records parentID as a parent of childID and returns the new
// edge id.
func (s *Service) CreateParent(ctx context.Context, childID, parentID string) (edgeID string, err error) {
	defer s.observe("create_parent", time.Now(), &err)

	err = s.store.Atomic(ctx, func(g store.Graph) error {
		edgeID, err = s.createParent(ctx, g, s.parentRelation(), childID, parentID)
		return err
	})
	if err != nil {
		return "", storageErr("create parent", err)
	}

	s.log.Info("parent created", zap.String("child", childID), zap.String("parent", parentID), zap.String("edge", edgeID))
	return edgeID, nil
}

func (s *Service) createParent(ctx context.Context, g store.Graph, rel relation, childID, parentID string) (string, error) {
	if err := s.check(ctx, g, rel, childID, parentID); err != nil {
		return "", err
	}
	e, err := g.CreateEdge(ctx, childID, parentID, model.EdgeChildOf)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// CreatePartner links two persons as partners. Both directed edges are
// written in the same transaction; the returned id is the one leaving
// personID.
func (s *Service) CreatePartner(ctx context.Context, personID, partnerID string) (edgeID string, err error) {
	defer s.observe("create_partner", time.Now(), &err)

	err = s.store.Atomic(ctx, func(g store.Graph) error {
		edgeID, err = s.createPartner(ctx, g, s.partnerRelation(), personID, partnerID)
		return err
	})
	if err != nil {
		return "", storageErr("create partner", err)
	}

	s.log.Info("partner created", zap.String("person", personID), zap.String("partner", partnerID), zap.String("edge", edgeID))
	return edgeID, nil
}

func (s *Service) createPartner(ctx context.Context, g store.Graph, rel relation, personID, partnerID string) (string, error) {
	if err := s.check(ctx, g, rel, personID, partnerID); err != nil {
		return "", err
	}
	e, err := g.CreateEdge(ctx, personID, partnerID, model.EdgePartnerOf)
	if err != nil {
		return "", err
	}
	if _, err := g.CreateEdge(ctx, partnerID, personID, model.EdgePartnerOf); err != nil {
		return "", err
	}
	return e.ID, nil
}

// RemoveParent deletes the parent link between childID and parentID.
func (s *Service) RemoveParent(ctx context.Context, childID, parentID string) (err error) {
	defer s.observe("remove_parent", time.Now(), &err)

	err = s.store.Atomic(ctx, func(g store.Graph) error {
		return unlink(ctx, g, childID, parentID, model.EdgeChildOf)
	})
	if err != nil {
		return storageErr("remove parent", err)
	}
	s.log.Info("parent removed", zap.String("child", childID), zap.String("parent", parentID))
	return nil
}

// RemovePartner deletes both directions of a partnership.
func (s *Service) RemovePartner(ctx context.Context, personID, partnerID string) (err error) {
	defer s.observe("remove_partner", time.Now(), &err)

	err = s.store.Atomic(ctx, func(g store.Graph) error {
		if err := unlink(ctx, g, personID, partnerID, model.EdgePartnerOf); err != nil {
			return err
		}
		return unlink(ctx, g, partnerID, personID, model.EdgePartnerOf)
	})
	if err != nil {
		return storageErr("remove partner", err)
	}
	s.log.Info("partner removed", zap.String("person", personID), zap.String("partner", partnerID))
	return nil
}

func unlink(ctx context.Context, g store.Graph, from, to string, kind model.EdgeKind) error {
	edges, err := g.Edges(ctx, from, store.Outgoing, kind)
	if err != nil {
		return err
	}
	for _, e := range edges {
		if e.To == to {
			return g.DeleteEdge(ctx, e.ID)
		}
	}
	return apperr.Newf(apperr.KindNotFound, "unlink", "no %s edge from %s to %s", kind, from, to)
}

// ReadParents returns the parents of personID ordered by id.
func (s *Service) ReadParents(ctx context.Context, personID string) ([]model.Person, error) {
	return s.Relation(ctx, kinship.Parents, personID)
}

// ReadPartners returns the partners of personID ordered by id.
func (s *Service) ReadPartners(ctx context.Context, personID string) ([]model.Person, error) {
	return s.Relation(ctx, kinship.Spouses, personID)
}

// Relation returns the persons related to personID by category c, ordered
// by id. An unknown person has no relatives.
func (s *Service) Relation(ctx context.Context, c kinship.Category, personID string) (ps []model.Person, err error) {
	defer s.observe("read_relation", time.Now(), &err)

	nodes, err := kinship.Find(ctx, s.store, c, personID)
	if err != nil {
		return nil, err
	}
	s.log.Debug("relation read", zap.String("category", c.String()), zap.String("person", personID), zap.Int("count", len(nodes)))
	return s.resolve(ctx, "read "+c.String(), nodes)
}

// RelationByName is Relation with the category given by name.
func (s *Service) RelationByName(ctx context.Context, category, personID string) ([]model.Person, error) {
	c, err := kinship.Parse(category)
	if err != nil {
		return nil, err
	}
	return s.Relation(ctx, c, personID)
}
