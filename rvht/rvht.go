package rvht

import (
	"sort"

	"rvh/errutil"
	"rvh/utils"
)

// Table is a range-vector hash table: one hash table specialized to a
// rectangular region of prefix-length space. Dimension i accepts rules
// whose mask prefix length lies in [ranges[i].Low, ranges[i].High).
// Rules and packets are hashed by the masked low bits of each field,
// where the canonical mask of dimension i covers the Low_i low bits,
// the bits every admitted rule has significant.
//
// A table enforces unique priorities among its rules; that is how rule
// identity works on removal.
type Table struct {
	top        Priority
	priorities map[Priority]struct{}
	masks      []Mask
	ranges     []Range
	buckets    map[uint32][]Rule
	dig        Digester
}

// New creates an empty table over the given region with the default
// alternating-parity digest.
func New(ranges []Range) *Table {
	return NewWithDigest(ranges, DigestAlternating)
}

// NewWithDigest creates an empty table over the given region. The
// region is fixed for the table's lifetime.
func NewWithDigest(ranges []Range, kind DigestKind) *Table {
	rs := append([]Range(nil), ranges...)
	masks := utils.Map(rs, func(r Range) Mask { return MaskForPrefixLen(r.Low) })

	return &Table{
		priorities: make(map[Priority]struct{}),
		masks:      masks,
		ranges:     rs,
		buckets:    make(map[uint32][]Rule),
		dig:        newDigester(kind, masks),
	}
}

// TopPriority returns the highest stored priority, or 0 for an empty
// table.
func (t *Table) TopPriority() Priority {
	return t.top
}

// Dims returns the table's dimensionality.
func (t *Table) Dims() int {
	return len(t.ranges)
}

// Len returns the number of stored rules.
func (t *Table) Len() int {
	return len(t.priorities)
}

// Ranges returns a copy of the table's region.
func (t *Table) Ranges() []Range {
	return append([]Range(nil), t.ranges...)
}

// Digester returns the table's fingerprint function.
func (t *Table) Digester() Digester {
	return t.dig
}

// Fingerprint digests a field vector with the table's digester.
func (t *Table) Fingerprint(fields []Field) uint32 {
	return t.dig.Fingerprint(fields)
}

// CanInsert reports whether the rule's prefix-length vector lies in
// the table's region.
func (t *Table) CanInsert(r Rule) bool {
	masks := r.Masks()
	errutil.BugOn(len(masks) != len(t.ranges),
		"rule has %d dimensions, table has %d", len(masks), len(t.ranges))
	if len(masks) != len(t.ranges) {
		return false
	}

	for i, m := range masks {
		// masks must be contiguous low-order runs
		errutil.BugOn(!IsPrefixMask(m), "rule mask %#b is not a prefix mask", m)

		p := PrefixLen(m)
		if p < t.ranges[i].Low || p >= t.ranges[i].High {
			return false
		}
	}
	return true
}

// Insert stores the rule. It returns false and leaves the table
// untouched if the rule's priority is already present. The caller must
// have checked CanInsert.
func (t *Table) Insert(r Rule) bool {
	prio := r.Priority()
	errutil.BugOn(prio == 0, "priority 0 is reserved")

	if _, ok := t.priorities[prio]; ok {
		// priorities are unique
		return false
	}
	t.priorities[prio] = struct{}{}

	if prio > t.top {
		t.top = prio
	}

	fp := t.dig.Fingerprint(r.Fields())
	t.buckets[fp] = append(t.buckets[fp], r)

	return true
}

// Remove drops the rule with the given rule's priority. It returns
// false if that priority is not present. Order within a collision
// chain is not preserved.
func (t *Table) Remove(r Rule) bool {
	prio := r.Priority()
	if _, ok := t.priorities[prio]; !ok {
		return false
	}
	delete(t.priorities, prio)

	if prio == t.top {
		t.top = 0
		for p := range t.priorities {
			if p > t.top {
				t.top = p
			}
		}
	}

	// the priority was tracked, so the rule is in its chain
	fp := t.dig.Fingerprint(r.Fields())
	chain := t.buckets[fp]
	for i, cr := range chain {
		if cr.Priority() != prio {
			continue
		}
		last := len(chain) - 1
		chain[i] = chain[last]
		chain[last] = nil
		if last == 0 {
			delete(t.buckets, fp)
		} else {
			t.buckets[fp] = chain[:last]
		}
		return true
	}

	errutil.Bug("priority %d tracked but rule missing from bucket %08x", prio, fp)
	return true
}

// CheckMatch probes the bucket for the packet's fingerprint and
// returns the highest-priority rule in the chain whose masked fields
// equal the packet's, or nil.
func (t *Table) CheckMatch(p Packet) Rule {
	fields := p.Fields()
	errutil.BugOn(len(fields) != len(t.masks),
		"packet has %d dimensions, table has %d", len(fields), len(t.masks))

	chain, ok := t.buckets[t.dig.Fingerprint(fields)]
	if !ok {
		return nil
	}

	var best Rule
	var bestPrio Priority
	for _, r := range chain {
		if r.Priority() <= bestPrio {
			continue
		}
		if matchesAll(fields, r.Fields(), r.Masks()) {
			best = r
			bestPrio = r.Priority()
		}
	}
	return best
}

func matchesAll(pf, rf []Field, masks []Mask) bool {
	for i := range pf {
		if !Matches(pf[i], rf[i], masks[i]) {
			return false
		}
	}
	return true
}

// Rules returns the stored rules. The order is not meaningful.
func (t *Table) Rules() []Rule {
	rules := make([]Rule, 0, len(t.priorities))
	for _, chain := range t.buckets {
		rules = append(rules, chain...)
	}
	return rules
}

// Priorities returns the stored priorities in ascending order.
func (t *Table) Priorities() []Priority {
	ps := utils.Keys(t.priorities)
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	return ps
}

// ByteSize estimates the resident size of the table in bytes. Rule
// payloads are owned by the caller and not included.
func (t *Table) ByteSize() int {
	const (
		ifaceSize       = 16 // interface header per stored rule
		mapSlotEstimate = 16
	)

	size := 8 + len(t.masks)*4 + len(t.ranges)*8
	size += len(t.priorities) * (4 + mapSlotEstimate)
	for _, chain := range t.buckets {
		size += 4 + mapSlotEstimate + 24 + len(chain)*ifaceSize
	}
	return size
}
