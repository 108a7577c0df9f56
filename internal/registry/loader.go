package registry

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"

	"llmlauncher/internal/common/fsutil"
)

// Registry is the read-only set of model families, ordered by name.
type Registry struct {
	names  []string
	byName map[string]Descriptor
}

// New builds a registry from already decoded descriptors. Descriptors are
// validated the same way LoadDir validates files.
func New(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, len(descs))}
	v := newValidator()
	for _, d := range descs {
		if err := validate(v, d); err != nil {
			return nil, &ConfigLoadError{File: d.Name(), Err: err}
		}
		if _, dup := r.byName[d.Name()]; dup {
			return nil, &ConfigLoadError{File: d.Name(), Err: fmt.Errorf("duplicate model_name %q", d.Name())}
		}
		r.byName[d.Name()] = d
		r.names = append(r.names, d.Name())
	}
	sort.Strings(r.names)
	return r, nil
}

// LoadDir scans a directory for *.toml family descriptors and builds a
// registry keyed by information.model_name. A malformed or incomplete file
// fails the whole load; nothing is partially registered.
func LoadDir(dir string) (*Registry, error) {
	abs, err := fsutil.ResolveDir(dir)
	if err != nil {
		return nil, &ConfigLoadError{Err: err}
	}
	if !fsutil.PathExists(abs) {
		return nil, &ConfigLoadError{Err: fmt.Errorf("families directory %s does not exist", abs)}
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, &ConfigLoadError{Err: fmt.Errorf("read dir: %w", err)}
	}
	r := &Registry{byName: make(map[string]Descriptor)}
	v := newValidator()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".toml") {
			continue
		}
		p := filepath.Join(abs, name)
		d, err := decodeFile(p)
		if err != nil {
			return nil, &ConfigLoadError{File: p, Err: err}
		}
		if err := validate(v, d); err != nil {
			return nil, &ConfigLoadError{File: p, Err: err}
		}
		if _, dup := r.byName[d.Name()]; dup {
			return nil, &ConfigLoadError{File: p, Err: fmt.Errorf("duplicate model_name %q", d.Name())}
		}
		r.byName[d.Name()] = d
		r.names = append(r.names, d.Name())
	}
	sort.Strings(r.names)
	return r, nil
}

func decodeFile(path string) (Descriptor, error) {
	var d Descriptor
	b, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	dec := toml.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&d); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return d, fmt.Errorf("decode at %d:%d: %w", row, col, err)
		}
		return d, fmt.Errorf("decode: %w", err)
	}
	return d, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their descriptor keys (templates.response_path) rather
	// than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validate(v *validator.Validate, d Descriptor) error {
	err := v.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is "Descriptor.templates.response_path"; drop the root.
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		missing = append(missing, ns)
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}

// Names returns family names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the descriptor for a family name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// List returns all descriptors sorted by family name.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[n])
	}
	return out
}

// Len returns the number of registered families.
func (r *Registry) Len() int { return len(r.names) }
