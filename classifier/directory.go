package classifier

import (
	"encoding/binary"

	iradix "github.com/hashicorp/go-immutable-radix"

	"rvh/rvht"
)

// entry pins a live rule to the table that owns it.
type entry struct {
	rule  rvht.Rule
	table *rvht.Table
}

// directory indexes live rules by priority so RemoveRule can route
// straight to the owning table and AddRule can reject a duplicate
// priority before touching the bank. Keys are big endian, so a radix
// walk visits priorities in ascending order.
type directory struct {
	tree *iradix.Tree
}

func newDirectory() *directory {
	return &directory{tree: iradix.New()}
}

func priorityKey(p rvht.Priority) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], uint32(p))
	return k[:]
}

func (d *directory) insert(r rvht.Rule, t *rvht.Table) {
	d.tree, _, _ = d.tree.Insert(priorityKey(r.Priority()), &entry{rule: r, table: t})
}

func (d *directory) remove(p rvht.Priority) {
	d.tree, _, _ = d.tree.Delete(priorityKey(p))
}

func (d *directory) lookup(p rvht.Priority) *entry {
	v, ok := d.tree.Get(priorityKey(p))
	if !ok {
		return nil
	}
	return v.(*entry)
}

func (d *directory) size() int {
	return d.tree.Len()
}

// walkAscending visits entries in ascending priority order. fn returns
// true to stop.
func (d *directory) walkAscending(fn func(rvht.Rule) bool) {
	d.tree.Root().Walk(func(_ []byte, v interface{}) bool {
		return fn(v.(*entry).rule)
	})
}
