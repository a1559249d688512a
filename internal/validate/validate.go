// Package validate checks person, date and place records against their schema.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rcliao/famgraph/internal/apperr"
	"github.com/rcliao/famgraph/internal/model"
)

// Options configures date bounds.
type Options struct {
	// DateFormat is the Go layout of fixed dates.
	DateFormat string
	// MinDate is the earliest accepted fixed date, in DateFormat.
	MinDate string
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Validator validates records. It is safe for concurrent use.
type Validator struct {
	v       *validator.Validate
	format  string
	minDate time.Time
	now     func() time.Time
}

// New builds a Validator. It fails when MinDate does not parse with DateFormat.
func New(opts Options) (*Validator, error) {
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	minDate, err := time.Parse(opts.DateFormat, opts.MinDate)
	if err != nil {
		return nil, fmt.Errorf("parse min date %q: %w", opts.MinDate, err)
	}

	val := &Validator{
		v:       validator.New(),
		format:  opts.DateFormat,
		minDate: minDate,
		now:     opts.Now,
	}
	val.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	val.v.RegisterStructValidation(val.dateLevel, model.DateValue{})
	return val, nil
}

// MinYear is the year of the earliest accepted fixed date.
func (val *Validator) MinYear() int {
	return val.minDate.Year()
}

// Person validates a full person record, including its sub-values.
func (val *Validator) Person(rec model.PersonRecord) error {
	return val.check("validate person", rec)
}

// Date validates a single date value.
func (val *Validator) Date(d model.DateValue) error {
	return val.check("validate date", d)
}

// Place validates a single place value.
func (val *Validator) Place(p model.PlaceValue) error {
	return val.check("validate place", p)
}

func (val *Validator) check(op string, s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.New(apperr.KindValidation, op, err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return apperr.New(apperr.KindValidation, op, strings.Join(msgs, "; ")).
		WithDetail("fields", msgs)
}

// dateLevel enforces the one-variant rule and the date bounds.
func (val *Validator) dateLevel(sl validator.StructLevel) {
	d := sl.Current().Interface().(model.DateValue)
	now := val.now()
	year := now.Year()

	switch d.Shape() {
	case model.ShapeNone:
		sl.ReportError(d.Date, "date", "Date", "shape", "empty")
	case model.ShapeMixed:
		sl.ReportError(d.Date, "date", "Date", "shape", "mixed")
	case model.ShapeFixed:
		t, err := time.Parse(val.format, d.Date)
		if err != nil {
			sl.ReportError(d.Date, "date", "Date", "datefmt", val.format)
			return
		}
		if t.Before(val.minDate) {
			sl.ReportError(d.Date, "date", "Date", "mindate", val.minDate.Format(val.format))
		}
		// Compare calendar days in the caller's local date.
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.Location())
		if t.After(today) {
			sl.ReportError(d.Date, "date", "Date", "maxdate", "today")
		}
	case model.ShapeRange:
		if d.FromYear == nil {
			sl.ReportError(d.FromYear, "fromYear", "FromYear", "required", "")
			return
		}
		if d.ToYear == nil {
			sl.ReportError(d.ToYear, "toYear", "ToYear", "required", "")
			return
		}
		if *d.FromYear < val.MinYear()-1 {
			sl.ReportError(*d.FromYear, "fromYear", "FromYear", "min", fmt.Sprint(val.MinYear()-1))
		}
		if *d.FromYear > *d.ToYear {
			sl.ReportError(*d.FromYear, "fromYear", "FromYear", "ltefield", "toYear")
		}
		if *d.ToYear > year {
			sl.ReportError(*d.ToYear, "toYear", "ToYear", "max", fmt.Sprint(year))
		}
	case model.ShapeRelative:
		if d.Type != model.Before && d.Type != model.After {
			sl.ReportError(d.Type, "type", "Type", "oneof", "Before After")
		}
		if d.Year == nil {
			sl.ReportError(d.Year, "year", "Year", "required", "")
			return
		}
		if *d.Year > year {
			sl.ReportError(*d.Year, "year", "Year", "max", fmt.Sprint(year))
		}
	}
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, lowerFirst(e.Param()))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not be after %s", field, e.Param())
	case "datefmt":
		return fmt.Sprintf("%s must use the layout %s", field, e.Param())
	case "mindate":
		return fmt.Sprintf("%s must not be before %s", field, e.Param())
	case "maxdate":
		return fmt.Sprintf("%s must not be after today", field)
	case "shape":
		if e.Param() == "empty" {
			return "date must set one of date, fromYear/toYear or type/year"
		}
		return "date must set only one of date, fromYear/toYear or type/year"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
