package family

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/famgraph/internal/model"
	"github.com/rcliao/famgraph/internal/store"
)

// DeletePerson removes a person, every edge touching it and the value-nodes
// it owns. Everything happens in one transaction, so a failure leaves the
// person and its values in place.
func (s *Service) DeletePerson(ctx context.Context, id string) (err error) {
	defer s.observe("delete_person", time.Now(), &err)

	var removed []string
	err = s.store.Atomic(ctx, func(g store.Graph) error {
		if _, _, err := readPerson(ctx, g, id); err != nil {
			return err
		}
		removed, err = dependents(ctx, g, id)
		if err != nil {
			return err
		}
		if err := g.DeleteNode(ctx, id, true); err != nil {
			return err
		}
		for _, dep := range removed {
			if err := g.DeleteNode(ctx, dep, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("delete person", err)
	}

	s.log.Info("person deleted", zap.String("person", id), zap.Strings("dependents", removed))
	return nil
}

// dependents lists the non-person targets of id's outgoing edges that only
// id points at.
func dependents(ctx context.Context, g store.Graph, id string) ([]string, error) {
	out, err := g.Edges(ctx, id, store.Outgoing, "")
	if err != nil {
		return nil, err
	}

	var deps []string
	seen := make(map[string]bool)
	for _, e := range out {
		if seen[e.To] || e.Kind == model.EdgeChildOf || e.Kind == model.EdgePartnerOf {
			continue
		}
		seen[e.To] = true

		n, err := g.ReadNode(ctx, e.To)
		if err != nil {
			return nil, err
		}
		if n.Label == model.LabelPerson {
			continue
		}
		in, err := g.Edges(ctx, e.To, store.Incoming, "")
		if err != nil {
			return nil, err
		}
		if ownedBy(in, id) {
			deps = append(deps, e.To)
		}
	}
	return deps, nil
}

func ownedBy(in []model.Edge, id string) bool {
	for _, e := range in {
		if e.From != id {
			return false
		}
	}
	return true
}
