package classifier

import (
	"sort"

	"rvh/errutil"
	"rvh/rvht"
	"rvh/utils"
)

// Classifier owns an ordered bank of range-vector hash tables, one per
// configured region of prefix-length space. Rules are routed to the
// table whose region contains their prefix-length vector; lookups scan
// the bank in descending order of per-table top priority and stop as
// soon as no later table can improve the best match.
//
// The regions should be chosen disjoint and, together, cover every
// prefix-length combination the deployment produces. Overlap routes a
// rule to whichever accepting table currently sorts first, which is
// order dependent; the classifier does not validate coverage.
//
// Operations are synchronous and unsynchronized. Concurrent use
// requires an external multiple-reader single-writer discipline.
type Classifier struct {
	tables []*rvht.Table
	dir    *directory
}

// New builds one table per region with the default digest.
func New(regions [][]rvht.Range) *Classifier {
	return NewWithDigest(regions, rvht.DigestAlternating)
}

// NewWithDigest builds one table per region. The bank never grows or
// shrinks afterwards.
func NewWithDigest(regions [][]rvht.Range, kind rvht.DigestKind) *Classifier {
	return &Classifier{
		tables: utils.Map(regions, func(rs []rvht.Range) *rvht.Table {
			return rvht.NewWithDigest(rs, kind)
		}),
		dir: newDirectory(),
	}
}

// AddRule routes the rule to the first table whose region admits it.
// It returns false if no region admits the rule or its priority is
// already live somewhere in the bank.
func (c *Classifier) AddRule(r rvht.Rule) bool {
	if c.dir.lookup(r.Priority()) != nil {
		// priorities are unique across the whole bank
		return false
	}

	for _, t := range c.tables {
		if !t.CanInsert(r) {
			continue
		}
		if !t.Insert(r) {
			// duplicate priority; regions partition prefix-length
			// space, so no later table could take the rule either
			return false
		}
		c.dir.insert(r, t)
		c.sortTables()
		return true
	}
	return false
}

// RemoveRule drops the live rule with the given rule's priority. It
// returns false if that priority is not live; removal is idempotent.
func (c *Classifier) RemoveRule(r rvht.Rule) bool {
	e := c.dir.lookup(r.Priority())
	if e == nil {
		return false
	}

	ok := e.table.Remove(e.rule)
	errutil.BugOn(!ok, "directory tracked priority %d but table removal failed", r.Priority())

	c.dir.remove(r.Priority())
	c.sortTables()
	return true
}

// Classify returns the highest-priority rule matching the packet, or
// nil. It never fails; no match is a normal outcome.
func (c *Classifier) Classify(p rvht.Packet) rvht.Rule {
	var best rvht.Rule
	var bestPrio rvht.Priority

	for _, t := range c.tables {
		if t.TopPriority() < bestPrio {
			// the bank is sorted by descending top, nothing after
			// this table can beat the current best
			break
		}
		if r := t.CheckMatch(p); r != nil && r.Priority() > bestPrio {
			best = r
			bestPrio = r.Priority()
		}
	}
	return best
}

// Len returns the number of live rules.
func (c *Classifier) Len() int {
	return c.dir.size()
}

// Lookup returns the live rule with the given priority, or nil. This
// is how callers distinguish the two AddRule failure cases: a false
// AddRule with Lookup(prio) non-nil was a duplicate priority, a false
// AddRule with Lookup(prio) nil was a region miss.
func (c *Classifier) Lookup(p rvht.Priority) rvht.Rule {
	if e := c.dir.lookup(p); e != nil {
		return e.rule
	}
	return nil
}

// WalkAscending visits the live rules in ascending priority order. fn
// returns true to stop the walk.
func (c *Classifier) WalkAscending(fn func(rvht.Rule) bool) {
	c.dir.walkAscending(fn)
}

// Tables returns the bank in its current descending-top order. The
// returned tables are live views; mutating them directly breaks the
// classifier's invariants.
func (c *Classifier) Tables() []*rvht.Table {
	return append([]*rvht.Table(nil), c.tables...)
}

// TopPriorities returns each table's top priority in bank order.
func (c *Classifier) TopPriorities() []rvht.Priority {
	return utils.Map(c.tables, func(t *rvht.Table) rvht.Priority { return t.TopPriority() })
}

func (c *Classifier) sortTables() {
	sort.SliceStable(c.tables, func(i, j int) bool {
		return c.tables[i].TopPriority() > c.tables[j].TopPriority()
	})
}
