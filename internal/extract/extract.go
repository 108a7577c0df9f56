// Package extract pulls display text out of a JSON response with a JSONPath
// query.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// ExtractionError reports a path that is invalid or matched nothing.
type ExtractionError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %q: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("extract %q: %s", e.Path, e.Msg)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsExtractionError reports whether err is (or wraps) an ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}

// compiled paths, keyed by source; descriptors reuse a handful of paths
var exprs sync.Map

func compile(path string) (jp.Expr, error) {
	if v, ok := exprs.Load(path); ok {
		return v.(jp.Expr), nil
	}
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Msg: "invalid path", Err: err}
	}
	exprs.Store(path, x)
	return x, nil
}

// Parse decodes a response body into generic JSON values.
func Parse(body []byte) (any, error) {
	return oj.Parse(body)
}

// Extract applies path to doc and returns the first match. Later matches are
// ignored. Zero matches is an ExtractionError.
func Extract(doc any, path string) (any, error) {
	x, err := compile(path)
	if err != nil {
		return nil, err
	}
	matches := x.Get(doc)
	if len(matches) == 0 {
		return nil, &ExtractionError{Path: path, Msg: "no match"}
	}
	return matches[0], nil
}

// ExtractBytes parses body and applies path. It returns the parsed document
// alongside the match so callers can keep it as response details.
func ExtractBytes(body []byte, path string) (value any, doc any, err error) {
	doc, err = Parse(body)
	if err != nil {
		return nil, nil, &ExtractionError{Path: path, Msg: "response is not JSON", Err: err}
	}
	value, err = Extract(doc, path)
	return value, doc, err
}

// Text formats an extracted value for display: strings verbatim, null as
// empty, anything else as compact JSON.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
