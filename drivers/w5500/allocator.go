package w5500

// SocketAllocator is a bitmap over at most Sockets slots, with usable
// capacity constrained by the stack's configured SocketBufferSize.
type SocketAllocator struct {
	capacity int
	free     [Sockets]bool
}

// NewSocketAllocator returns an allocator with the given usable capacity
// (0..=Sockets). Sockets beyond capacity are never handed out.
func NewSocketAllocator(capacity int) *SocketAllocator {
	a := &SocketAllocator{capacity: capacity}
	for i := 0; i < capacity && i < Sockets; i++ {
		a.free[i] = true
	}
	return a
}

// SetCapacity re-derives usable capacity, used once by
// NetworkStack.Initialize after a (re-)reset. All slots must be free when
// called; it is a construction-time operation, not a runtime resize.
func (a *SocketAllocator) SetCapacity(capacity int) {
	a.capacity = capacity
	for i := 0; i < Sockets; i++ {
		a.free[i] = i < capacity
	}
}

// AllocateOne returns one free SocketID, or SocketsExhausted if none is
// free.
func (a *SocketAllocator) AllocateOne() (SocketID, error) {
	for i := 0; i < a.capacity && i < Sockets; i++ {
		if a.free[i] {
			a.free[i] = false
			return SocketID(i), nil
		}
	}
	return 0, SocketsExhausted
}

// AllocateMany returns n free SocketIDs, allocating all of them or none:
// atomic all-or-nothing.
func (a *SocketAllocator) AllocateMany(n int) ([]SocketID, error) {
	ids := make([]SocketID, 0, n)
	for i := 0; i < a.capacity && i < Sockets && len(ids) < n; i++ {
		if a.free[i] {
			ids = append(ids, SocketID(i))
		}
	}
	if len(ids) < n {
		return nil, SocketsExhausted
	}
	for _, id := range ids {
		a.free[id] = false
	}
	return ids, nil
}

// Deallocate frees id. Deallocating a slot not owned by the caller is a
// programming error; the allocator does not attempt to detect it beyond
// the bitmap it already maintains.
func (a *SocketAllocator) Deallocate(id SocketID) {
	a.free[id] = true
}

// Capacity returns the number of usable hardware sockets.
func (a *SocketAllocator) Capacity() int { return a.capacity }

// IsFree reports whether id is currently unallocated.
func (a *SocketAllocator) IsFree(id SocketID) bool { return a.free[id] }
