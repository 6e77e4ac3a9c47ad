package tablegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceGraph(t *testing.T) {
	a := Address{X: 0, Y: 0}
	b := Address{X: 1, Y: 0}
	c := Address{X: 0, Y: 1}
	d := Address{X: 2, Y: 1}

	rg := NewReferenceGraph()
	rg.AddReference(b, a)
	rg.AddReference(c, b)
	rg.AddReference(d, a)
	rg.AddReference(d, b)

	assert.Equal(t, 4, rg.NodeCount())
	assert.Equal(t, []Address{a, b}, rg.GetDirectPrecedents(d))
	assert.Equal(t, []Address{b, d}, rg.GetDirectDependents(a))
	assert.Equal(t, []Address{b, c, d}, rg.GetAllDependents(a))
	assert.Empty(t, rg.GetDirectPrecedents(Address{X: 9, Y: 9}))

	rg.ClearReferences(d)
	assert.Equal(t, []Address{b}, rg.GetDirectDependents(a))
	assert.Equal(t, 3, rg.NodeCount())

	rg.ClearReferences(c)
	rg.ClearReferences(b)
	assert.Equal(t, 0, rg.NodeCount())

	rg.AddReference(a, a)
	assert.Equal(t, []Address{a}, rg.GetAllDependents(a))
	rg.Clear()
	assert.Equal(t, 0, rg.NodeCount())
}
