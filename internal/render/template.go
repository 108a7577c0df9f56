package render

import (
	"regexp"
	"strings"
)

// Placeholders are $name, ${name} and $$ (a literal dollar). Any other '$'
// is an invalid placeholder.
var placeholderRe = regexp.MustCompile(`\$(?:(\$)|([_A-Za-z][_A-Za-z0-9]*)|\{([_A-Za-z][_A-Za-z0-9]*)\}|)`)

// Template is a parsed string template.
type Template struct {
	part string
	src  string
	ids  []string
}

// Parse validates src and records the identifiers it references. part names
// the template (endpoint, header, body) in errors.
func Parse(part, src string) (*Template, error) {
	t := &Template{part: part, src: src}
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(src, -1) {
		switch {
		case m[2] >= 0:
			// $$
		case m[4] >= 0:
			t.add(src[m[4]:m[5]], seen)
		case m[6] >= 0:
			t.add(src[m[6]:m[7]], seen)
		default:
			line, col := position(src, m[0])
			return nil, &TemplateError{Part: part, Msg: invalidPlaceholder(line, col)}
		}
	}
	return t, nil
}

func (t *Template) add(id string, seen map[string]bool) {
	if seen[id] {
		return
	}
	seen[id] = true
	t.ids = append(t.ids, id)
}

// Identifiers returns the referenced identifiers in order of first use.
func (t *Template) Identifiers() []string {
	return append([]string(nil), t.ids...)
}

// Substitute replaces every placeholder with vals[id], passed through
// escape when escape is non-nil. A referenced identifier missing from vals
// fails with a TemplateError.
func (t *Template) Substitute(vals map[string]string, escape func(string) string) (string, error) {
	for _, id := range t.ids {
		if _, ok := vals[id]; !ok {
			return "", &TemplateError{Part: t.part, Identifier: id}
		}
	}
	var b strings.Builder
	b.Grow(len(t.src))
	last := 0
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(t.src, -1) {
		b.WriteString(t.src[last:m[0]])
		last = m[1]
		var id string
		switch {
		case m[2] >= 0:
			b.WriteByte('$')
			continue
		case m[4] >= 0:
			id = t.src[m[4]:m[5]]
		default:
			id = t.src[m[6]:m[7]]
		}
		v := vals[id]
		if escape != nil {
			v = escape(v)
		}
		b.WriteString(v)
	}
	b.WriteString(t.src[last:])
	return b.String(), nil
}

func position(src string, off int) (line, col int) {
	line = 1 + strings.Count(src[:off], "\n")
	col = off - strings.LastIndexByte(src[:off], '\n')
	return line, col
}
