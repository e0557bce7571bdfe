package memory

import "unsafe"

// bytesToString aliases b as a string with zero allocation and zero
// copy. The caller must guarantee b is never written to again and
// outlives the returned string — both hold for an arena block that
// is written once at allocation and never passed to Arena.Free (a
// freed block is recycled and overwritten), since the string's
// lifetime is bounded by the same Release call that invalidates the
// rest of the arena. Modeled on bolt/core/unsafe.go's
// bytesToString.
func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
