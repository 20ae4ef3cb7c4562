package engine

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
)

// Result is the normalized output of Parse.
type Result struct {
	Rows  []Row
	Index *IndexMap
}

// Parse extracts rows from pages in order. The index counter spans all
// pages, so row i across the whole session maps to Index entry i.
func Parse(pages []Page, site Site, proxy string) (Result, error) {
	res := Result{Index: &IndexMap{}}

	for _, p := range pages {
		if p.Doc == nil {
			continue
		}
		var perr error
		site.Listings(p.Doc).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			l, err := site.ParseListing(s, proxy)
			if err != nil {
				perr = parseError(site, p, err)
				return false
			}
			idx := res.Index.add(l.Detail)
			res.Rows = append(res.Rows, Row{Index: idx, Fields: l.Fields, Highlight: l.Highlight})
			return true
		})
		if perr != nil {
			return Result{}, perr
		}
	}

	if len(res.Rows) == 0 {
		return Result{}, &Error{Kind: ErrNoResults, Site: site.Key()}
	}
	return res, nil
}

func parseError(site Site, p Page, err error) error {
	e := &Error{Kind: ErrParse, Site: site.Key(), URL: p.URL, Page: p.Page + 1, Err: err}
	var fe *FieldError
	if errors.As(err, &fe) {
		e.Field = fe.Field
		e.Err = fe.Err
	}
	return e
}

// FieldError reports a required field that could not be extracted.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return "missing " + e.Field + ": " + e.Err.Error()
	}
	return "missing " + e.Field
}

func (e *FieldError) Unwrap() error { return e.Err }

// Required returns v, or a FieldError when v is empty.
func Required(field, v string) (string, error) {
	if v == "" {
		return "", &FieldError{Field: field}
	}
	return v, nil
}

// Optional returns v, or def when v is empty.
func Optional(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
