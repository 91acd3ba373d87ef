package registry

import (
	"strconv"
	"sync/atomic"
)

// Handle identifies a registered resource. Handles are opaque to callers:
// the only valid operations are passing one back to the API that issued it
// and comparing for equality.
type Handle uint64

// String returns the decimal form of the handle for log output.
func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

// Allocator issues strictly increasing handles. The zero value is ready to
// use; the first handle issued is 1, so zero never names a live resource.
type Allocator struct {
	last atomic.Uint64
}

// Next returns a handle that has never been issued by this allocator.
func (a *Allocator) Next() Handle {
	return Handle(a.last.Add(1))
}
