package http1

import "unsafe"

// unsafeString aliases b as a string with no copy, mirroring
// memory.bytesToString. It is used for read-only views of
// arena-owned bytes (method, path, header names during lookups)
// whose lifetime is already bounded by the owning Arena.
func unsafeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
