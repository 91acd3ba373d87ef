package registry

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Table maps handles to live resources. It is sharded internally, so lookups
// on different handles do not contend.
type Table[T any] struct {
	entries cmap.ConcurrentMap[Handle, T]
}

// NewTable returns an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		entries: cmap.NewWithCustomShardingFunction[Handle, T](shardHandle),
	}
}

// shardHandle spreads sequential handles across shards. A plain modulo would
// put consecutive handles on consecutive shards, which is fine, but mixing
// the bits keeps the distribution even if callers ever batch by range.
func shardHandle(h Handle) uint32 {
	x := uint64(h)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return uint32(x)
}

// Insert registers a resource under the given handle. It returns
// ErrDuplicateHandle if the handle is already live; with handles coming from
// an Allocator this cannot happen.
func (t *Table[T]) Insert(h Handle, value T) error {
	if !t.entries.SetIfAbsent(h, value) {
		return ErrDuplicateHandle
	}
	return nil
}

// Get resolves a handle. The second return is false when the handle was
// never registered or has been removed.
func (t *Table[T]) Get(h Handle) (T, bool) {
	return t.entries.Get(h)
}

// Remove deregisters a handle. Removing a handle that is not live is a no-op.
func (t *Table[T]) Remove(h Handle) {
	t.entries.Remove(h)
}

// Pop deregisters a handle and returns the resource it named, if any. Like
// Remove, popping a dead handle is harmless.
func (t *Table[T]) Pop(h Handle) (T, bool) {
	return t.entries.Pop(h)
}

// Len returns the number of live entries.
func (t *Table[T]) Len() int {
	return t.entries.Count()
}

// Range calls fn for each live entry. Entries inserted or removed during
// iteration may or may not be visited.
func (t *Table[T]) Range(fn func(h Handle, value T) bool) {
	for item := range t.entries.IterBuffered() {
		if !fn(item.Key, item.Val) {
			return
		}
	}
}
