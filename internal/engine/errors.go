package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Resolver, fetch, and parse kinds end the session; selection
// and action kinds are reported and the prompt loop continues.
var (
	ErrNoProxyAvailable = errors.New("no proxy available")
	ErrFetch            = errors.New("fetch failed")
	ErrNoResults        = errors.New("no results found")
	ErrParse            = errors.New("parse failed")
	ErrBadSelection     = errors.New("bad input")
	ErrAction           = errors.New("action failed")
	ErrTopUnsupported   = errors.New("top torrents not supported by this site")
)

// Error carries the context needed to diagnose a markup or mirror problem.
// errors.Is matches both the kind and the wrapped cause.
type Error struct {
	Kind  error
	Site  string
	Proxy string
	URL   string
	Page  int // 0 when not tied to a result page
	Field string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())

	var ctx []string
	if e.Site != "" {
		ctx = append(ctx, "site="+e.Site)
	}
	if e.Proxy != "" {
		ctx = append(ctx, "proxy="+e.Proxy)
	}
	if e.Page > 0 {
		ctx = append(ctx, fmt.Sprintf("page=%d", e.Page))
	}
	if e.Field != "" {
		ctx = append(ctx, "field="+e.Field)
	}
	if e.URL != "" {
		ctx = append(ctx, "url="+e.URL)
	}
	if len(ctx) > 0 {
		b.WriteString(" (" + strings.Join(ctx, " ") + ")")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsFatal reports whether err must terminate the session.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) && e.Kind == ErrAction {
		return false
	}
	return errors.Is(err, ErrNoProxyAvailable) ||
		errors.Is(err, ErrFetch) ||
		errors.Is(err, ErrNoResults) ||
		errors.Is(err, ErrParse) ||
		errors.Is(err, ErrTopUnsupported)
}

// UserMessage returns the short text shown to the user for err. Details
// stay in the log.
func UserMessage(err error) string {
	var e *Error
	switch {
	case errors.As(err, &e) && e.Kind == ErrAction:
		if e.Err == nil {
			return "Action failed."
		}
		return "Action failed: " + e.Err.Error()
	case errors.Is(err, ErrNoProxyAvailable):
		return "No more proxies found! Exiting..."
	case errors.Is(err, ErrNoResults):
		return "No results found for given input!"
	case errors.Is(err, ErrParse):
		return "Something went wrong while reading results (site format changed?). See logs for details."
	case errors.Is(err, ErrFetch):
		return "Unable to fetch results. Site not reachable. See logs for details."
	case errors.Is(err, ErrTopUnsupported):
		return "Top torrents are not available for this site."
	default:
		return "Something went wrong! See logs for details."
	}
}
