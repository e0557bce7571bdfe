package memory

import "errors"

// ErrOutOfCapacity is returned when a backing region has no space left
// to satisfy an allocation. Callers are not expected to recover from
// this; the enclosing session aborts.
var ErrOutOfCapacity = errors.New("memory: backing region out of capacity")
