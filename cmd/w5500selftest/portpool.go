package main

import "w5500-go/drivers/w5500"

// fakePortPool is a minimal bump-allocator PortPool: Allocate hands out the
// next port in [low, high] (or honours a specific request that isn't
// already in use), Deallocate returns it to the free set.
type fakePortPool struct {
	low, high uint16
	next      uint16
	inUse     map[uint16]bool
}

func newFakePortPool(low, high uint16) *fakePortPool {
	return &fakePortPool{low: low, high: high, next: low, inUse: make(map[uint16]bool)}
}

func (p *fakePortPool) Allocate(desired uint16) (uint16, error) {
	if desired != w5500.PortAny {
		if p.inUse[desired] {
			return 0, w5500.ErrPortPoolExhausted
		}
		p.inUse[desired] = true
		return desired, nil
	}

	for i := uint16(0); i <= p.high-p.low; i++ {
		port := p.low + (p.next-p.low+i)%(p.high-p.low+1)
		if !p.inUse[port] {
			p.inUse[port] = true
			p.next = port + 1
			return port, nil
		}
	}
	return 0, w5500.ErrPortPoolExhausted
}

func (p *fakePortPool) Deallocate(port uint16) {
	delete(p.inUse, port)
}
