package ecs

// Table stores one component family as a dense array parallel to the handle
// space. Presence is tracked by the registry mask; a slot's contents are only
// meaningful while its owning entity holds the component.
type Table[T any] struct {
	data []T
	bit  uint8
	reg  *Registry
}

func NewTable[T any](reg *Registry, bit uint8) *Table[T] {
	return &Table[T]{
		data: make([]T, reg.Capacity()),
		bit:  bit,
		reg:  reg,
	}
}

// Bit returns the component's mask bit.
func (t *Table[T]) Bit() uint8 { return t.bit }

// Set installs the component on a live entity, overwriting any prior value.
func (t *Table[T]) Set(e Entity, v T) {
	if !t.reg.Alive(e) {
		return
	}
	t.data[e.ID] = v
	t.reg.AddComponent(e, t.bit)
}

// Get returns a pointer into the dense array, or nil when the entity does not
// hold the component. The pointer is valid until the entity loses the
// component; callers mutate through it.
func (t *Table[T]) Get(e Entity) *T {
	if !t.reg.Has(e, t.bit) {
		return nil
	}
	return &t.data[e.ID]
}

// Has reports component presence on a live entity.
func (t *Table[T]) Has(e Entity) bool {
	return t.reg.Has(e, t.bit)
}

// Remove detaches the component, zeroing the slot so released references do
// not linger.
func (t *Table[T]) Remove(e Entity) {
	if !t.reg.Has(e, t.bit) {
		return
	}
	var zero T
	t.data[e.ID] = zero
	t.reg.RemoveComponent(e, t.bit)
}
