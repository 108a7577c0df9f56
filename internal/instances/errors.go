package instances

import "errors"

// duplicateNameError signals an Add for a name that already exists.
type duplicateNameError struct{ name string }

func (e duplicateNameError) Error() string { return "instance already exists: " + e.name }

// ErrDuplicateName constructs a duplicateNameError.
func ErrDuplicateName(name string) error { return duplicateNameError{name: name} }

// IsDuplicateName reports whether err indicates a name collision.
func IsDuplicateName(err error) bool {
	var e duplicateNameError
	return errors.As(err, &e)
}

// notFoundError signals an Update or Get for a missing instance.
type notFoundError struct{ name string }

func (e notFoundError) Error() string { return "instance not found: " + e.name }

// ErrNotFound constructs a notFoundError.
func ErrNotFound(name string) error { return notFoundError{name: name} }

// IsNotFound reports whether err indicates a missing instance.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

// invalidInstanceError signals an instance that cannot be stored.
type invalidInstanceError struct{ msg string }

func (e invalidInstanceError) Error() string { return "invalid instance: " + e.msg }

// IsInvalid reports whether err indicates a malformed instance or snapshot.
func IsInvalid(err error) bool {
	var e invalidInstanceError
	return errors.As(err, &e)
}
