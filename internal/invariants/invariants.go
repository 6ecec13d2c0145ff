// Package invariants gates the correctness checks that are too expensive for
// hot paths. They are compiled in with the "invariants" or "race" build tags.
package invariants

import (
	"runtime"

	"github.com/cockroachdb/errors"
)

// Check panics with an assertion failure if cond is false and invariants are
// enabled. It is a no-op otherwise.
func Check(cond bool, format string, args ...any) {
	if Enabled && !cond {
		panic(errors.AssertionFailedf(format, args...))
	}
}

// CheckBounds panics in invariant builds if [offset, offset+length) is not a
// valid range of a buffer of size capacity.
func CheckBounds(offset, length, capacity int) {
	if Enabled && (offset < 0 || length < 0 || offset+length > capacity) {
		panic(errors.AssertionFailedf("range [%d, %d) is out of bounds for capacity %d",
			offset, offset+length, capacity))
	}
}

// SetFinalizer wraps runtime.SetFinalizer and only installs the finalizer in
// invariant builds. Finalizers are used as leak detectors, never for cleanup.
func SetFinalizer(obj, finalizer any) {
	if Enabled {
		runtime.SetFinalizer(obj, finalizer)
	}
}
