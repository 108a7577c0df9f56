package registry

import "errors"

// ConfigLoadError reports a descriptor file that could not be read, decoded
// or validated. Loading stops at the first bad file.
type ConfigLoadError struct {
	File string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	if e.File == "" {
		return "load descriptors: " + e.Err.Error()
	}
	return "load descriptor " + e.File + ": " + e.Err.Error()
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// IsConfigLoadError reports whether err is (or wraps) a ConfigLoadError.
func IsConfigLoadError(err error) bool {
	var ce *ConfigLoadError
	return errors.As(err, &ce)
}
