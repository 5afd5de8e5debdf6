// Package errs defines the structured error kinds raised by persisted
// succinct-index artefacts and the external-memory pipeline: version
// mismatches on load, internal consistency failures, tier-capacity
// overruns, read-file syntax errors, raw I/O failures, and builder
// invariant violations. None of these are recovered inside the core;
// they are expected to bubble up through pkg/errors' wrapping chain to
// an external command layer.
package errs

import "github.com/pkg/errors"

// VersionMismatch reports that a persisted artefact's header version tag
// does not match what the reader expected.
func VersionMismatch(what string, expected, found uint64) error {
	return errors.Errorf("%s: version mismatch: expected %d, found %d", what, expected, found)
}

// CorruptIndex reports an internal consistency check failure discovered
// during a lookup (rank/select/access).
func CorruptIndex(where string) error {
	return errors.Errorf("corrupt index: %s", where)
}

// RangeError reports that an index exceeded a tier's storage capacity.
func RangeError(where string, max, value uint64) error {
	return errors.Errorf("%s: value %d exceeds max %d", where, value, max)
}

// ParseError wraps a read-file syntax error with the offending file name.
func ParseError(file string, cause error) error {
	return errors.Wrapf(cause, "parse error in %s", file)
}

// IOError wraps a raw I/O failure with the file name it occurred on.
func IOError(file string, cause error) error {
	return errors.Wrapf(cause, "I/O error on %s", file)
}

// General wraps a builder invariant violation that doesn't fit the other
// kinds.
func General(message string) error {
	return errors.New(message)
}

// Is reports whether err (or any error it wraps) has the given message
// prefix; a small helper so callers can branch on error kind without
// exporting sentinel values that pkg/errors' wrapping would obscure.
func Is(err error, prefix string) bool {
	for err != nil {
		if msg := err.Error(); len(msg) >= len(prefix) && msg[:len(prefix)] == prefix {
			return true
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}
