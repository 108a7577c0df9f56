package render

import (
	"errors"
	"fmt"
)

// TemplateError reports a template that could not be parsed or an identifier
// missing from the substitution context.
type TemplateError struct {
	Part       string
	Identifier string
	Msg        string
}

func (e *TemplateError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("%s template: missing value for ${%s}", e.Part, e.Identifier)
	}
	return fmt.Sprintf("%s template: %s", e.Part, e.Msg)
}

func invalidPlaceholder(line, col int) string {
	return fmt.Sprintf("invalid placeholder in string: line %d, col %d", line, col)
}

// MalformedJSONError reports a rendered header or body that is not valid JSON.
type MalformedJSONError struct {
	Part string
	Err  error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed %s JSON: %v", e.Part, e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// IsTemplateError reports whether err is (or wraps) a TemplateError.
func IsTemplateError(err error) bool {
	var te *TemplateError
	return errors.As(err, &te)
}

// IsMalformedHeaderJSON reports a header template that did not render to a
// JSON object of strings.
func IsMalformedHeaderJSON(err error) bool {
	var me *MalformedJSONError
	return errors.As(err, &me) && me.Part == PartHeader
}

// IsMalformedBodyJSON reports a data template that did not render to JSON.
func IsMalformedBodyJSON(err error) bool {
	var me *MalformedJSONError
	return errors.As(err, &me) && me.Part == PartBody
}
