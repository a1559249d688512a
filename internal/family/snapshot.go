package family

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/famgraph/internal/model"
	"github.com/rcliao/famgraph/internal/store"
)

// Snapshot is a portable copy of the family graph. Ids are only meaningful
// inside the snapshot; Import assigns new ones.
type Snapshot struct {
	Persons  []model.Person `json:"persons"`
	Parents  []ParentLink   `json:"parents"`
	Partners []PartnerLink  `json:"partners"`
}

type ParentLink struct {
	Child  string `json:"child"`
	Parent string `json:"parent"`
}

// PartnerLink is one partnership, listed once.
type PartnerLink struct {
	Person  string `json:"person"`
	Partner string `json:"partner"`
}

// ImportResult reports what Import created.
type ImportResult struct {
	Persons  int               `json:"persons"`
	Parents  int               `json:"parents"`
	Partners int               `json:"partners"`
	IDs      map[string]string `json:"ids"`
}

// Export returns every person and relation in the graph.
func (s *Service) Export(ctx context.Context) (snap *Snapshot, err error) {
	defer s.observe("export", time.Now(), &err)

	nodes, err := s.store.ListNodes(ctx, model.LabelPerson, 0)
	if err != nil {
		return nil, storageErr("export", err)
	}
	persons, err := s.resolve(ctx, "export", nodes)
	if err != nil {
		return nil, err
	}
	snap = &Snapshot{
		Persons:  persons,
		Parents:  []ParentLink{},
		Partners: []PartnerLink{},
	}

	parents, err := s.store.ListEdges(ctx, model.EdgeChildOf)
	if err != nil {
		return nil, storageErr("export", err)
	}
	for _, e := range parents {
		snap.Parents = append(snap.Parents, ParentLink{Child: e.From, Parent: e.To})
	}

	partners, err := s.store.ListEdges(ctx, model.EdgePartnerOf)
	if err != nil {
		return nil, storageErr("export", err)
	}
	for _, e := range partners {
		if e.From < e.To {
			snap.Partners = append(snap.Partners, PartnerLink{Person: e.From, Partner: e.To})
		}
	}
	return snap, nil
}

// Import recreates the persons and relations of snap. Every person is
// validated before anything is written. Relations must join two distinct
// imported persons and may not repeat, but the parent and partner limits
// and the forbidden partner categories are not applied: an exported graph
// may legitimately hold states those checks would refuse on a live write.
// Either the whole snapshot is imported or nothing is.
func (s *Service) Import(ctx context.Context, snap *Snapshot) (res *ImportResult, err error) {
	defer s.observe("import", time.Now(), &err)

	for _, p := range snap.Persons {
		if err := s.validate.Person(p.PersonRecord); err != nil {
			return nil, err
		}
	}

	parentRel, partnerRel := s.parentRelation().restored(), s.partnerRelation().restored()
	res = &ImportResult{IDs: make(map[string]string, len(snap.Persons))}
	err = s.store.Atomic(ctx, func(g store.Graph) error {
		for _, p := range snap.Persons {
			created, err := createPerson(ctx, g, p.PersonRecord)
			if err != nil {
				return err
			}
			res.IDs[p.ID] = created.ID
		}
		for _, l := range snap.Parents {
			if _, err := s.createParent(ctx, g, parentRel, res.mapID(l.Child), res.mapID(l.Parent)); err != nil {
				return err
			}
		}
		for _, l := range snap.Partners {
			if _, err := s.createPartner(ctx, g, partnerRel, res.mapID(l.Person), res.mapID(l.Partner)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("import", err)
	}

	res.Persons = len(snap.Persons)
	res.Parents = len(snap.Parents)
	res.Partners = len(snap.Partners)
	s.log.Info("snapshot imported",
		zap.Int("persons", res.Persons),
		zap.Int("parents", res.Parents),
		zap.Int("partners", res.Partners))
	return res, nil
}

// mapID translates a snapshot id. Unknown ids are kept so the constraint
// checks report them as missing endpoints.
func (r *ImportResult) mapID(id string) string {
	if mapped, ok := r.IDs[id]; ok {
		return mapped
	}
	return id
}
