package launcher

import "errors"

// unknownFamilyError signals an instance bound to a family the registry does
// not know.
type unknownFamilyError struct{ family string }

func (e unknownFamilyError) Error() string { return "unknown model family: " + e.family }

// ErrUnknownFamily constructs an unknownFamilyError.
func ErrUnknownFamily(family string) error { return unknownFamilyError{family: family} }

// IsUnknownFamily reports whether err indicates an unregistered family.
func IsUnknownFamily(err error) bool {
	var e unknownFamilyError
	return errors.As(err, &e)
}

// invalidError signals instance input that does not satisfy its family.
type invalidError struct{ msg string }

func (e invalidError) Error() string { return e.msg }

// IsInvalid reports whether err indicates invalid instance input.
func IsInvalid(err error) bool {
	var e invalidError
	return errors.As(err, &e)
}
