package reactive

import "fmt"

// NodeID is a weak reference to a computation node: an index into the
// runtime's node arena plus the generation of the slot when the node was
// allocated. Disposing a node bumps the slot generation, so every NodeID
// still held by a signal's subscriber list stops resolving without the
// signal having to be told.
type NodeID struct {
	index uint32
	gen   uint32
}

// String returns a compact representation for logs.
func (id NodeID) String() string {
	return fmt.Sprintf("%d.%d", id.index, id.gen)
}

// slot is one entry of the node arena.
type slot struct {
	gen  uint32
	node *node
}

// alloc places n in a free arena slot and returns its id.
func (rt *Runtime) alloc(n *node) NodeID {
	if k := len(rt.free); k > 0 {
		idx := rt.free[k-1]
		rt.free = rt.free[:k-1]
		rt.slots[idx].node = n
		return NodeID{index: idx, gen: rt.slots[idx].gen}
	}
	rt.slots = append(rt.slots, slot{node: n})
	return NodeID{index: uint32(len(rt.slots) - 1)}
}

// release frees the slot of id. Outstanding ids stop resolving.
func (rt *Runtime) release(id NodeID) {
	if int(id.index) >= len(rt.slots) {
		return
	}
	s := &rt.slots[id.index]
	if s.gen != id.gen || s.node == nil {
		return
	}
	s.node = nil
	s.gen++
	rt.free = append(rt.free, id.index)
}

// lookup resolves id to a live node, or nil if the node was disposed.
func (rt *Runtime) lookup(id NodeID) *node {
	if int(id.index) >= len(rt.slots) {
		return nil
	}
	s := rt.slots[id.index]
	if s.gen != id.gen {
		return nil
	}
	return s.node
}

// nextSeq returns the next creation sequence number. Sequence numbers
// order nodes by creation and identify signals in logs.
func (rt *Runtime) nextSeq() uint64 {
	rt.seq++
	return rt.seq
}
