// Package kinship answers named kinship queries over the family graph.
package kinship

import (
	"github.com/rcliao/famgraph/internal/apperr"
)

// Category is a named kinship relation.
type Category uint8

const (
	Parents Category = iota + 1
	GrandParents
	Childrens
	Grandchildrens
	Spouses
	Siblings
	Uncles
	Aunts
	Cousins
	Nephews
	Nieces
	BrothersInLaw
	SistersInLaw
	SiblingsInLaw
	DaughtersInLaw
	SonsInLaw
	FathersInLaw
	MothersInLaw
)

var names = map[Category]string{
	Parents:        "parents",
	GrandParents:   "grandParents",
	Childrens:      "childrens",
	Grandchildrens: "grandchildrens",
	Spouses:        "spouses",
	Siblings:       "siblings",
	Uncles:         "uncles",
	Aunts:          "aunts",
	Cousins:        "cousins",
	Nephews:        "nephews",
	Nieces:         "nieces",
	BrothersInLaw:  "brothersInLaw",
	SistersInLaw:   "sistersInLaw",
	SiblingsInLaw:  "siblingsInLaw",
	DaughtersInLaw: "daughtersInLaw",
	SonsInLaw:      "sonsInLaw",
	FathersInLaw:   "fathersInLaw",
	MothersInLaw:   "mothersInLaw",
}

var byName = func() map[string]Category {
	m := make(map[string]Category, len(names))
	for c, n := range names {
		m[n] = c
	}
	return m
}()

// All returns every category in declaration order.
func All() []Category {
	cats := make([]Category, 0, len(names))
	for c := Parents; c <= MothersInLaw; c++ {
		cats = append(cats, c)
	}
	return cats
}

// Parse resolves a category name. Unknown names fail with UnknownCategory.
func Parse(name string) (Category, error) {
	c, ok := byName[name]
	if !ok {
		return 0, apperr.Newf(apperr.KindUnknownCategory, "parse category", "unknown relation %q", name)
	}
	return c, nil
}

// ParseAll resolves a list of category names.
func ParseAll(list []string) ([]Category, error) {
	cats := make([]Category, 0, len(list))
	for _, n := range list {
		c, err := Parse(n)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}

func (c Category) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return "unknown"
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := names[c]
	return ok
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
