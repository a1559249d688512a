// Package model defines the family graph data types.
package model

import "time"

// Gender of a person.
type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

// RelativeType positions a relative date against its year.
type RelativeType string

const (
	Before RelativeType = "Before"
	After  RelativeType = "After"
)

// DateShape identifies which variant of a DateValue is set.
type DateShape int

const (
	ShapeNone DateShape = iota
	ShapeFixed
	ShapeRange
	ShapeRelative
	ShapeMixed
)

// DateValue is a fixed date, a year range or a relative year marker.
// Exactly one variant may be set.
type DateValue struct {
	Date     string       `json:"date,omitempty" yaml:"date,omitempty"`
	FromYear *int         `json:"fromYear,omitempty" yaml:"fromYear,omitempty"`
	ToYear   *int         `json:"toYear,omitempty" yaml:"toYear,omitempty"`
	Type     RelativeType `json:"type,omitempty" yaml:"type,omitempty"`
	Year     *int         `json:"year,omitempty" yaml:"year,omitempty"`
}

// Shape reports the variant in use. A variant counts as used as soon as one
// of its fields is set.
func (d DateValue) Shape() DateShape {
	var shapes []DateShape
	if d.Date != "" {
		shapes = append(shapes, ShapeFixed)
	}
	if d.FromYear != nil || d.ToYear != nil {
		shapes = append(shapes, ShapeRange)
	}
	if d.Type != "" || d.Year != nil {
		shapes = append(shapes, ShapeRelative)
	}
	switch len(shapes) {
	case 0:
		return ShapeNone
	case 1:
		return shapes[0]
	}
	return ShapeMixed
}

// Equal reports whether both values hold the same date.
func (d *DateValue) Equal(o *DateValue) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Date == o.Date && d.Type == o.Type &&
		intPtrEqual(d.FromYear, o.FromYear) &&
		intPtrEqual(d.ToYear, o.ToYear) &&
		intPtrEqual(d.Year, o.Year)
}

// PlaceValue is a birthplace. Latitude and longitude are paired.
type PlaceValue struct {
	Country   string   `json:"country,omitempty" yaml:"country,omitempty"`
	State     string   `json:"state,omitempty" yaml:"state,omitempty"`
	City      string   `json:"city,omitempty" yaml:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty" validate:"required_with=Longitude,omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty" validate:"required_with=Latitude,omitempty,min=-180,max=180"`
}

// Equal reports whether both values describe the same place.
func (p *PlaceValue) Equal(o *PlaceValue) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Country == o.Country && p.State == o.State && p.City == o.City &&
		floatPtrEqual(p.Latitude, o.Latitude) &&
		floatPtrEqual(p.Longitude, o.Longitude)
}

// PersonRecord is the input accepted when creating a person.
type PersonRecord struct {
	FirstName    string      `json:"firstName" validate:"required,max=16"`
	LastName     string      `json:"lastName" validate:"required,max=16"`
	Gender       Gender      `json:"gender" validate:"required,oneof=M F"`
	DateOfBirth  *DateValue  `json:"dateOfBirth,omitempty"`
	DateOfDeath  *DateValue  `json:"dateOfDeath,omitempty"`
	PlaceOfBirth *PlaceValue `json:"placeOfBirth,omitempty"`
}

// Person is a stored person with its value-nodes resolved.
type Person struct {
	ID string `json:"id"`
	PersonRecord
	CreatedAt time.Time `json:"created_at"`
}

// Optional sub-value names accepted by PersonPatch.Clear.
const (
	FieldDateOfBirth  = "dateOfBirth"
	FieldDateOfDeath  = "dateOfDeath"
	FieldPlaceOfBirth = "placeOfBirth"
)

// PersonPatch describes an update. Nil fields are left unchanged; Clear
// removes optional sub-values by name.
type PersonPatch struct {
	FirstName    *string     `json:"firstName,omitempty"`
	LastName     *string     `json:"lastName,omitempty"`
	Gender       *Gender     `json:"gender,omitempty"`
	DateOfBirth  *DateValue  `json:"dateOfBirth,omitempty"`
	DateOfDeath  *DateValue  `json:"dateOfDeath,omitempty"`
	PlaceOfBirth *PlaceValue `json:"placeOfBirth,omitempty"`
	Clear        []string    `json:"clear,omitempty"`
}

// Apply returns rec with the patch applied.
func (p PersonPatch) Apply(rec PersonRecord) PersonRecord {
	if p.FirstName != nil {
		rec.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		rec.LastName = *p.LastName
	}
	if p.Gender != nil {
		rec.Gender = *p.Gender
	}
	if p.DateOfBirth != nil {
		rec.DateOfBirth = p.DateOfBirth
	}
	if p.DateOfDeath != nil {
		rec.DateOfDeath = p.DateOfDeath
	}
	if p.PlaceOfBirth != nil {
		rec.PlaceOfBirth = p.PlaceOfBirth
	}
	for _, f := range p.Clear {
		switch f {
		case FieldDateOfBirth:
			rec.DateOfBirth = nil
		case FieldDateOfDeath:
			rec.DateOfDeath = nil
		case FieldPlaceOfBirth:
			rec.PlaceOfBirth = nil
		}
	}
	return rec
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
