// Package ecs provides the dense entity/component storage primitive the
// simulation is built on: small-integer handles, versioned against reuse, with
// per-component parallel arrays of fixed capacity.
package ecs

import "fmt"

// Entity is a unique ID plus a version tag so recycled slots never alias a
// stale handle.
type Entity struct {
	ID      uint32
	Version uint32
}

// None is the "no entity" sentinel. Its version is zero, which no live entity
// ever carries.
var None = Entity{}

// Mask tracks which component families an entity currently holds.
type Mask uint64

func (m Mask) Has(bit uint8) bool { return m&(1<<bit) != 0 }
func (m *Mask) Set(bit uint8)     { *m |= 1 << bit }
func (m *Mask) Clear(bit uint8)   { *m &^= 1 << bit }

// Registry owns the handle space. Capacity is fixed at construction; Create
// fails once it is exhausted.
type Registry struct {
	capacity  int
	versions  []uint32
	masks     []Mask
	freeIDs   []uint32
	nextVer   uint32
	liveIDs   []uint32
	liveDirty bool
}

func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = 1
	}
	r := &Registry{
		capacity: capacity,
		versions: make([]uint32, capacity),
		masks:    make([]Mask, capacity),
		freeIDs:  make([]uint32, capacity),
		liveIDs:  make([]uint32, 0, capacity),
	}
	// Fill the free stack so the first Create pops ID 0.
	for i := 0; i < capacity; i++ {
		r.freeIDs[i] = uint32(capacity - 1 - i)
	}
	return r
}

func (r *Registry) Capacity() int { return r.capacity }

// Create allocates a fresh handle. The returned error is a configuration
// error: running a match past its entity budget is a content bug.
func (r *Registry) Create() (Entity, error) {
	if len(r.freeIDs) == 0 {
		return None, fmt.Errorf("ecs: entity capacity %d exhausted", r.capacity)
	}
	last := len(r.freeIDs) - 1
	id := r.freeIDs[last]
	r.freeIDs = r.freeIDs[:last]
	r.nextVer++
	if r.nextVer == 0 {
		r.nextVer = 1
	}
	r.versions[id] = r.nextVer
	r.masks[id] = 0
	r.liveDirty = true
	return Entity{ID: id, Version: r.nextVer}, nil
}

// Destroy releases the handle and clears its component mask. Destroying a
// stale or dead handle is a no-op.
func (r *Registry) Destroy(e Entity) {
	if !r.Alive(e) {
		return
	}
	r.versions[e.ID] = 0
	r.masks[e.ID] = 0
	r.freeIDs = append(r.freeIDs, e.ID)
	r.liveDirty = true
}

// Alive reports whether the handle refers to a live entity of the same
// generation.
func (r *Registry) Alive(e Entity) bool {
	if r == nil || int(e.ID) >= r.capacity || e.Version == 0 {
		return false
	}
	return r.versions[e.ID] == e.Version
}

// Handle reconstructs the current live handle for a slot, or None.
func (r *Registry) Handle(id uint32) Entity {
	if int(id) >= r.capacity || r.versions[id] == 0 {
		return None
	}
	return Entity{ID: id, Version: r.versions[id]}
}

func (r *Registry) Mask(e Entity) Mask {
	if !r.Alive(e) {
		return 0
	}
	return r.masks[e.ID]
}

func (r *Registry) AddComponent(e Entity, bit uint8) {
	if !r.Alive(e) {
		return
	}
	r.masks[e.ID].Set(bit)
}

func (r *Registry) RemoveComponent(e Entity, bit uint8) {
	if !r.Alive(e) {
		return
	}
	r.masks[e.ID].Clear(bit)
}

func (r *Registry) Has(e Entity, bit uint8) bool {
	if !r.Alive(e) {
		return false
	}
	return r.masks[e.ID].Has(bit)
}

func (r *Registry) refreshLive() {
	if !r.liveDirty {
		return
	}
	r.liveIDs = r.liveIDs[:0]
	for id := 0; id < r.capacity; id++ {
		if r.versions[id] != 0 {
			r.liveIDs = append(r.liveIDs, uint32(id))
		}
	}
	r.liveDirty = false
}

// AppendLive appends the live handles in ascending ID order to dst and returns
// it. Ascending order is stable within a tick, which the deterministic
// pipeline depends on; callers own dst so per-tick iteration stays
// allocation-free.
func (r *Registry) AppendLive(dst []Entity) []Entity {
	r.refreshLive()
	for _, id := range r.liveIDs {
		dst = append(dst, Entity{ID: id, Version: r.versions[id]})
	}
	return dst
}

// Count reports the number of live entities.
func (r *Registry) Count() int {
	r.refreshLive()
	return len(r.liveIDs)
}
