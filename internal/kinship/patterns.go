package kinship

import (
	"strings"

	"github.com/rcliao/famgraph/internal/model"
	"github.com/rcliao/famgraph/internal/store"
)

// Traversal shapes over the child_of(child, parent) and
// partner_of(person, partner) views. Each selects node ids and binds :id to
// the queried person. partner_of holds both directions of every partnership.
const (
	parentsOf = `SELECT parent FROM child_of WHERE child = :id`

	grandParentsOf = `SELECT g.parent FROM child_of p
		JOIN child_of g ON g.child = p.parent
		WHERE p.child = :id`

	childrenOf = `SELECT child FROM child_of WHERE parent = :id`

	grandchildrenOf = `SELECT g.child FROM child_of c
		JOIN child_of g ON g.parent = c.child
		WHERE c.parent = :id`

	partnersOf = `SELECT partner FROM partner_of WHERE person = :id`

	siblingsOf = `SELECT s.child FROM child_of p
		JOIN child_of s ON s.parent = p.parent
		WHERE p.child = :id AND s.child <> :id`

	parentsSiblings = `SELECT s.child FROM child_of p
		JOIN child_of g ON g.child = p.parent
		JOIN child_of s ON s.parent = g.parent
		WHERE p.child = :id AND s.child <> p.parent`

	// A partner of a parent who is not a parent too (step-parent).
	parentsPartnersSiblings = `SELECT s.child FROM child_of p
		JOIN partner_of pp ON pp.person = p.parent
		JOIN child_of g ON g.child = pp.partner
		JOIN child_of s ON s.parent = g.parent
		WHERE p.child = :id AND s.child <> pp.partner
		  AND pp.partner NOT IN (SELECT parent FROM child_of WHERE child = :id)`

	// Both parents differ, so children of the queried person's own parents are excluded.
	cousinsOf = `SELECT c.child FROM child_of p
		JOIN child_of g ON g.child = p.parent
		JOIN child_of s ON s.parent = g.parent
		JOIN child_of c ON c.parent = s.child
		WHERE p.child = :id AND s.child <> p.parent AND c.child <> :id`

	siblingsChildren = `SELECT c.child FROM child_of p
		JOIN child_of s ON s.parent = p.parent
		JOIN child_of c ON c.parent = s.child
		WHERE p.child = :id AND s.child <> :id`

	// Children a sibling's partner had outside the sibling, unless the
	// queried person is directly linked to that partner.
	siblingsPartnersChildren = `SELECT c.child FROM child_of p
		JOIN child_of s ON s.parent = p.parent
		JOIN partner_of sp ON sp.person = s.child
		JOIN child_of c ON c.parent = sp.partner
		WHERE p.child = :id AND s.child <> :id AND sp.partner <> :id
		  AND NOT EXISTS (
			SELECT 1 FROM edges e
			WHERE (e.from_id = :id AND e.to_id = sp.partner)
			   OR (e.from_id = sp.partner AND e.to_id = :id)
		  )`

	partnersSiblingsChildren = `SELECT c.child FROM partner_of pp
		JOIN child_of p ON p.child = pp.partner
		JOIN child_of s ON s.parent = p.parent
		JOIN child_of c ON c.parent = s.child
		WHERE pp.person = :id AND s.child <> pp.partner`

	siblingsPartners = `SELECT sp.partner FROM child_of p
		JOIN child_of s ON s.parent = p.parent
		JOIN partner_of sp ON sp.person = s.child
		WHERE p.child = :id AND s.child <> :id AND sp.partner <> :id`

	partnersSiblings = `SELECT s.child FROM partner_of pp
		JOIN child_of p ON p.child = pp.partner
		JOIN child_of s ON s.parent = p.parent
		WHERE pp.person = :id AND s.child <> pp.partner`

	childrensPartners = `SELECT cp.partner FROM child_of c
		JOIN partner_of cp ON cp.person = c.child
		WHERE c.parent = :id AND cp.partner <> :id`

	partnersParents = `SELECT p.parent FROM partner_of pp
		JOIN child_of p ON p.child = pp.partner
		WHERE pp.person = :id`
)

// definition is the graph pattern behind a category: the union of its
// shapes, restricted to one gender when set.
type definition struct {
	shapes []string
	gender model.Gender
}

var catalogue = map[Category]definition{
	Parents:        {shapes: []string{parentsOf}},
	GrandParents:   {shapes: []string{grandParentsOf}},
	Childrens:      {shapes: []string{childrenOf}},
	Grandchildrens: {shapes: []string{grandchildrenOf}},
	Spouses:        {shapes: []string{partnersOf}},
	Siblings:       {shapes: []string{siblingsOf}},
	Uncles:         {shapes: []string{parentsSiblings, parentsPartnersSiblings}, gender: model.Male},
	Aunts:          {shapes: []string{parentsSiblings, parentsPartnersSiblings}, gender: model.Female},
	Cousins:        {shapes: []string{cousinsOf}},
	Nephews:        {shapes: []string{siblingsChildren, siblingsPartnersChildren, partnersSiblingsChildren}, gender: model.Male},
	Nieces:         {shapes: []string{siblingsChildren, siblingsPartnersChildren, partnersSiblingsChildren}, gender: model.Female},
	BrothersInLaw:  {shapes: []string{siblingsPartners, partnersSiblings}, gender: model.Male},
	SistersInLaw:   {shapes: []string{siblingsPartners, partnersSiblings}, gender: model.Female},
	SiblingsInLaw:  {shapes: []string{siblingsPartners, partnersSiblings}},
	DaughtersInLaw: {shapes: []string{childrensPartners}, gender: model.Female},
	SonsInLaw:      {shapes: []string{childrensPartners}, gender: model.Male},
	FathersInLaw:   {shapes: []string{partnersParents}, gender: model.Male},
	MothersInLaw:   {shapes: []string{partnersParents}, gender: model.Female},
}

// pattern builds the store pattern of a category.
func (c Category) pattern() (store.Pattern, bool) {
	def, ok := catalogue[c]
	if !ok {
		return store.Pattern{}, false
	}
	p := store.Pattern{
		ID:    c.String(),
		Label: model.LabelPerson,
		Query: strings.Join(def.shapes, "\n\t\tUNION\n\t\t"),
	}
	if def.gender != "" {
		p.Props = map[string]string{"gender": string(def.gender)}
	}
	return p, true
}
