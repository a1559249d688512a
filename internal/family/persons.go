package family

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/famgraph/internal/apperr"
	"github.com/rcliao/famgraph/internal/model"
	"github.com/rcliao/famgraph/internal/store"
)

// personProps is the property set stored on a Person node. Optional
// sub-values live in their own nodes.
type personProps struct {
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Gender    model.Gender `json:"gender"`
}

// nameKeys are the personProps fields SearchPersons matches.
var nameKeys = []string{"firstName", "lastName"}

func propsOf(rec model.PersonRecord) personProps {
	return personProps{FirstName: rec.FirstName, LastName: rec.LastName, Gender: rec.Gender}
}

var valueKinds = []model.EdgeKind{model.EdgeBornOn, model.EdgeDeadOn, model.EdgeBornIn}

// valueNode is an optional sub-value of a person stored as its own node.
type valueNode struct {
	kind  model.EdgeKind
	label string
	props any
}

// valueOf returns the sub-value linked by kind, if set.
func valueOf(rec model.PersonRecord, kind model.EdgeKind) (valueNode, bool) {
	switch kind {
	case model.EdgeBornOn:
		if rec.DateOfBirth != nil {
			return valueNode{kind, model.LabelDate, rec.DateOfBirth}, true
		}
	case model.EdgeDeadOn:
		if rec.DateOfDeath != nil {
			return valueNode{kind, model.LabelDate, rec.DateOfDeath}, true
		}
	case model.EdgeBornIn:
		if rec.PlaceOfBirth != nil {
			return valueNode{kind, model.LabelPlace, rec.PlaceOfBirth}, true
		}
	}
	return valueNode{}, false
}

func sameValue(a, b model.PersonRecord, kind model.EdgeKind) bool {
	switch kind {
	case model.EdgeBornOn:
		return a.DateOfBirth.Equal(b.DateOfBirth)
	case model.EdgeDeadOn:
		return a.DateOfDeath.Equal(b.DateOfDeath)
	case model.EdgeBornIn:
		return a.PlaceOfBirth.Equal(b.PlaceOfBirth)
	}
	return true
}

// CreatePerson validates rec and stores it with its value-nodes in one
// atomic step. Invalid records never reach the store.
func (s *Service) CreatePerson(ctx context.Context, rec model.PersonRecord) (p *model.Person, err error) {
	defer s.observe("create_person", time.Now(), &err)

	if err := s.validate.Person(rec); err != nil {
		return nil, err
	}

	err = s.store.Atomic(ctx, func(g store.Graph) error {
		p, err = createPerson(ctx, g, rec)
		return err
	})
	if err != nil {
		return nil, storageErr("create person", err)
	}

	s.log.Info("person created", zap.String("person", p.ID), zap.String("name", rec.FirstName+" "+rec.LastName))
	return p, nil
}

func createPerson(ctx context.Context, g store.Graph, rec model.PersonRecord) (*model.Person, error) {
	n, err := g.CreateNode(ctx, model.LabelPerson, propsOf(rec))
	if err != nil {
		return nil, err
	}
	for _, kind := range valueKinds {
		if v, ok := valueOf(rec, kind); ok {
			if err := attachValue(ctx, g, n.ID, v); err != nil {
				return nil, err
			}
		}
	}
	return &model.Person{ID: n.ID, PersonRecord: rec, CreatedAt: n.CreatedAt}, nil
}

func attachValue(ctx context.Context, g store.Graph, personID string, v valueNode) error {
	n, err := g.CreateNode(ctx, v.label, v.props)
	if err != nil {
		return err
	}
	_, err = g.CreateEdge(ctx, personID, n.ID, v.kind)
	return err
}

// FindPerson returns the person with the given id, value-nodes resolved.
func (s *Service) FindPerson(ctx context.Context, id string) (p *model.Person, err error) {
	defer s.observe("find_person", time.Now(), &err)

	p, _, err = loadPerson(ctx, s.store, id)
	if err != nil {
		return nil, storageErr("find person", err)
	}
	s.log.Debug("person read", zap.String("person", id))
	return p, nil
}

// readPerson decodes a Person node. Nodes of other labels count as missing.
func readPerson(ctx context.Context, g store.Graph, id string) (model.Node, personProps, error) {
	var props personProps
	n, err := g.ReadNode(ctx, id)
	if err != nil {
		return n, props, err
	}
	if n.Label != model.LabelPerson {
		return n, props, fmt.Errorf("node %s is a %s: %w", id, n.Label, store.ErrNotFound)
	}
	if err := json.Unmarshal(n.Props, &props); err != nil {
		return n, props, fmt.Errorf("decode person %s: %w", id, err)
	}
	return n, props, nil
}

// loadPerson reads a person and its value-nodes. The second result maps each
// value edge kind to the id of the node it points at.
func loadPerson(ctx context.Context, g store.Graph, id string) (*model.Person, map[model.EdgeKind]string, error) {
	n, props, err := readPerson(ctx, g, id)
	if err != nil {
		return nil, nil, err
	}
	p := &model.Person{
		ID:        n.ID,
		CreatedAt: n.CreatedAt,
		PersonRecord: model.PersonRecord{
			FirstName: props.FirstName,
			LastName:  props.LastName,
			Gender:    props.Gender,
		},
	}

	edges, err := g.Edges(ctx, id, store.Outgoing, "")
	if err != nil {
		return nil, nil, err
	}
	owned := make(map[model.EdgeKind]string)
	for _, e := range edges {
		if !e.Kind.ValueEdge() {
			continue
		}
		v, err := g.ReadNode(ctx, e.To)
		if err != nil {
			return nil, nil, err
		}
		var target any
		switch e.Kind {
		case model.EdgeBornOn:
			p.DateOfBirth = &model.DateValue{}
			target = p.DateOfBirth
		case model.EdgeDeadOn:
			p.DateOfDeath = &model.DateValue{}
			target = p.DateOfDeath
		case model.EdgeBornIn:
			p.PlaceOfBirth = &model.PlaceValue{}
			target = p.PlaceOfBirth
		}
		if err := json.Unmarshal(v.Props, target); err != nil {
			return nil, nil, fmt.Errorf("decode %s of %s: %w", e.Kind, id, err)
		}
		owned[e.Kind] = e.To
	}
	return p, owned, nil
}

// UpdatePerson applies patch to the stored person. Changed sub-values get a
// fresh value-node and the old one is removed. When the patch leaves the
// person as it was nothing is written and changed is false.
func (s *Service) UpdatePerson(ctx context.Context, id string, patch model.PersonPatch) (p *model.Person, changed bool, err error) {
	defer s.observe("update_person", time.Now(), &err)

	for _, f := range patch.Clear {
		switch f {
		case model.FieldDateOfBirth, model.FieldDateOfDeath, model.FieldPlaceOfBirth:
		default:
			return nil, false, apperr.Newf(apperr.KindValidation, "update person", "cannot clear %q", f).
				WithDetail("fields", []string{f})
		}
	}

	err = s.store.Atomic(ctx, func(g store.Graph) error {
		cur, owned, err := loadPerson(ctx, g, id)
		if err != nil {
			return err
		}
		next := patch.Apply(cur.PersonRecord)
		if err := s.validate.Person(next); err != nil {
			return err
		}

		p = &model.Person{ID: cur.ID, PersonRecord: next, CreatedAt: cur.CreatedAt}
		if propsOf(next) != propsOf(cur.PersonRecord) {
			if err := g.UpdateNode(ctx, id, propsOf(next)); err != nil {
				return err
			}
			changed = true
		}
		for _, kind := range valueKinds {
			if sameValue(cur.PersonRecord, next, kind) {
				continue
			}
			changed = true
			if old, ok := owned[kind]; ok {
				if err := g.DeleteNode(ctx, old, true); err != nil {
					return err
				}
			}
			if v, ok := valueOf(next, kind); ok {
				if err := attachValue(ctx, g, id, v); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, storageErr("update person", err)
	}

	if changed {
		s.log.Info("person updated", zap.String("person", id))
	}
	return p, changed, nil
}

// SearchPersons finds persons whose first or last name contains query.
func (s *Service) SearchPersons(ctx context.Context, query string, limit int) (ps []model.Person, err error) {
	defer s.observe("search_persons", time.Now(), &err)

	nodes, err := s.store.SearchNodes(ctx, model.LabelPerson, query, nameKeys, limit)
	if err != nil {
		return nil, storageErr("search persons", err)
	}
	return s.resolve(ctx, "search persons", nodes)
}

// ListPersons lists persons ordered by id. limit <= 0 lists all of them.
func (s *Service) ListPersons(ctx context.Context, limit int) (ps []model.Person, err error) {
	defer s.observe("list_persons", time.Now(), &err)

	nodes, err := s.store.ListNodes(ctx, model.LabelPerson, limit)
	if err != nil {
		return nil, storageErr("list persons", err)
	}
	return s.resolve(ctx, "list persons", nodes)
}

// resolve loads the full person behind each node.
func (s *Service) resolve(ctx context.Context, op string, nodes []model.Node) ([]model.Person, error) {
	persons := make([]model.Person, 0, len(nodes))
	for _, n := range nodes {
		p, _, err := loadPerson(ctx, s.store, n.ID)
		if err != nil {
			return nil, storageErr(op, err)
		}
		persons = append(persons, *p)
	}
	return persons, nil
}
