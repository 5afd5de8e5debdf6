// Package bitset provides layered dynamic-bitmap containers
// (BitVecSet, EntrySets) and RangeSet, an endpoint-indexed union of
// half-open integer ranges used to coalesce sparse deletion streams.
package bitset

import "github.com/grailbio/gossamer/dynbitvec"

// BitVecSet is a fixed number of independently mutable
// dynbitvec.Tree "layers" sharing a common index space, e.g. one
// layer per outgoing-edge base in a de Bruijn graph node.
type BitVecSet struct {
	layers []*dynbitvec.Tree
}

// NewBitVecSet returns a BitVecSet with nLayers empty layers.
func NewBitVecSet(nLayers int) *BitVecSet {
	s := &BitVecSet{layers: make([]*dynbitvec.Tree, nLayers)}
	for i := range s.layers {
		s.layers[i] = dynbitvec.New()
	}
	return s
}

// NumLayers returns the number of layers.
func (s *BitVecSet) NumLayers() int { return len(s.layers) }

// Layer returns the i-th layer's dynamic bit vector.
func (s *BitVecSet) Layer(i int) *dynbitvec.Tree { return s.layers[i] }

// EntrySets is a named, growable collection of BitVecSets, letting
// callers group several layered bitmaps (e.g. one per sample or one
// per contig) under string keys.
type EntrySets struct {
	order []string
	sets  map[string]*BitVecSet
}

// NewEntrySets returns an empty collection.
func NewEntrySets() *EntrySets {
	return &EntrySets{sets: make(map[string]*BitVecSet)}
}

// Add creates and registers a new BitVecSet under name, replacing any
// existing entry of that name.
func (e *EntrySets) Add(name string, nLayers int) *BitVecSet {
	if _, exists := e.sets[name]; !exists {
		e.order = append(e.order, name)
	}
	s := NewBitVecSet(nLayers)
	e.sets[name] = s
	return s
}

// Get returns the named BitVecSet, if any.
func (e *EntrySets) Get(name string) (*BitVecSet, bool) {
	s, ok := e.sets[name]
	return s, ok
}

// Names returns the registered names in insertion order.
func (e *EntrySets) Names() []string { return e.order }
