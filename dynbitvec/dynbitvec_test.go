package dynbitvec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// refModel mirrors Tree's semantics with a plain slice, for
// differential testing against random operation sequences.
type refModel struct {
	bits []bool
}

func (r *refModel) Insert(p uint64, b bool) {
	r.bits = append(r.bits[:p:p], append([]bool{b}, r.bits[p:]...)...)
}

func (r *refModel) Erase(p uint64) {
	r.bits = append(r.bits[:p:p], r.bits[p+1:]...)
}

func (r *refModel) Access(p uint64) bool { return r.bits[p] }

func (r *refModel) Rank(p uint64) uint64 {
	var n uint64
	for i := uint64(0); i < p; i++ {
		if r.bits[i] {
			n++
		}
	}
	return n
}

func (r *refModel) Select(rank uint64) uint64 {
	var seen uint64
	for i, b := range r.bits {
		if b {
			if seen == rank {
				return uint64(i)
			}
			seen++
		}
	}
	return uint64(len(r.bits))
}

func (r *refModel) Count() uint64 {
	var n uint64
	for _, b := range r.bits {
		if b {
			n++
		}
	}
	return n
}

func TestTreeInsertAccessRankSelectAgainstModel(t *testing.T) {
	rnd := rand.New(rand.NewSource(123))
	tree := New()
	model := &refModel{}

	for i := 0; i < 3000; i++ {
		p := uint64(rnd.Intn(int(modelSize(model) + 1)))
		b := rnd.Intn(2) == 0
		tree.Insert(p, b)
		model.Insert(p, b)
	}

	assert.Equal(t, model.Count(), tree.Count())
	assert.Equal(t, uint64(len(model.bits)), tree.Size())

	for i := 0; i < len(model.bits); i += 7 {
		p := uint64(i)
		assert.Equal(t, model.Access(p), tree.Access(p), "access p=%d", p)
		assert.Equal(t, model.Rank(p), tree.Rank(p), "rank p=%d", p)
	}
	for r := uint64(0); r < model.Count(); r += 5 {
		assert.Equal(t, model.Select(r), tree.Select(r), "select r=%d", r)
	}
}

func modelSize(m *refModel) uint64 { return uint64(len(m.bits)) }

func TestTreeEraseAgainstModel(t *testing.T) {
	rnd := rand.New(rand.NewSource(99))
	tree := New()
	model := &refModel{}

	for i := 0; i < 2000; i++ {
		p := uint64(rnd.Intn(int(modelSize(model) + 1)))
		b := rnd.Intn(2) == 0
		tree.Insert(p, b)
		model.Insert(p, b)
	}

	for i := 0; i < 1500; i++ {
		if len(model.bits) == 0 {
			break
		}
		p := uint64(rnd.Intn(len(model.bits)))
		tree.Erase(p)
		model.Erase(p)
	}

	assert.Equal(t, model.Count(), tree.Count())
	assert.Equal(t, uint64(len(model.bits)), tree.Size())
	for i := 0; i < len(model.bits); i++ {
		assert.Equal(t, model.Access(uint64(i)), tree.Access(uint64(i)), "i=%d", i)
	}
}

func TestTreeEmpty(t *testing.T) {
	tree := New()
	assert.Equal(t, uint64(0), tree.Size())
	assert.Equal(t, uint64(0), tree.Count())
	tree.Insert(0, true)
	assert.True(t, tree.Access(0))
	assert.Equal(t, uint64(1), tree.Size())
	tree.Erase(0)
	assert.Equal(t, uint64(0), tree.Size())
}
