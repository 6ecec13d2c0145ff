//go:build invariants || race

package invariants

// Enabled is true if we were built with the "invariants" or "race" build tags.
const Enabled = true

// CloseChecker is used to check that objects are disposed exactly once.
type CloseChecker struct {
	closed bool
}

// Close panics if called twice on the same object.
func (d *CloseChecker) Close() {
	if d.closed {
		panic("double dispose")
	}
	d.closed = true
}

// AssertNotClosed panics if Close was called.
func (d *CloseChecker) AssertNotClosed() {
	if d.closed {
		panic("use after dispose")
	}
}

// Reset clears the checker so a pooled object can be reused.
func (d *CloseChecker) Reset() {
	d.closed = false
}
