// Package frozen compiles a live classifier into a read-only form for
// deployments whose rule set is static after provisioning. Each table's
// collision map is replaced by a minimal perfect hash over its distinct
// fingerprints plus one dense rule slice, with a rank/select bitvector
// marking chain boundaries. Lookup results are identical to the source
// classifier; mutation is not supported.
package frozen

import (
	"fmt"

	"github.com/dgryski/go-boomphf"
	"github.com/hillbig/rsdic"

	"rvh/rvht"
	"rvh/utils"
)

// Classifier is a compiled, immutable snapshot of a classifier bank.
// It is safe for concurrent readers without external locking.
type Classifier struct {
	tables []*table
	count  int
}

type table struct {
	dig rvht.Digester
	top rvht.Priority

	mph    *boomphf.H
	fps    []uint32     // distinct fingerprint per mph slot
	starts *rsdic.RSDic // bit i set iff rules[i] opens a new chain
	rules  []rvht.Rule  // grouped by fingerprint, in mph slot order
}

// Classify returns the highest-priority rule matching the packet, or
// nil, exactly as the source classifier would.
func (fz *Classifier) Classify(p rvht.Packet) rvht.Rule {
	fields := p.Fields()

	var best rvht.Rule
	var bestPrio rvht.Priority
	for _, ft := range fz.tables {
		if ft.top < bestPrio {
			break
		}
		if r := ft.checkMatch(fields); r != nil && r.Priority() > bestPrio {
			best = r
			bestPrio = r.Priority()
		}
	}
	return best
}

// Len returns the number of compiled rules.
func (fz *Classifier) Len() int {
	return fz.count
}

func (ft *table) checkMatch(fields []rvht.Field) rvht.Rule {
	if len(ft.rules) == 0 {
		return nil
	}

	fp := ft.dig.Fingerprint(fields)
	slot := ft.mph.Query(uint64(fp))
	if slot == 0 || slot > uint64(len(ft.fps)) {
		return nil
	}
	g := slot - 1
	if ft.fps[g] != fp {
		// the mph maps unknown keys to arbitrary slots
		return nil
	}

	start := ft.starts.Select(g, true)
	end := uint64(len(ft.rules))
	if g+1 < uint64(len(ft.fps)) {
		end = ft.starts.Select(g+1, true)
	}

	var best rvht.Rule
	var bestPrio rvht.Priority
	for _, r := range ft.rules[start:end] {
		if r.Priority() <= bestPrio {
			continue
		}
		if fieldsMatch(fields, r) {
			best = r
			bestPrio = r.Priority()
		}
	}
	return best
}

func fieldsMatch(fields []rvht.Field, r rvht.Rule) bool {
	rf := r.Fields()
	rm := r.Masks()
	for i := range fields {
		if !rvht.Matches(fields[i], rf[i], rm[i]) {
			return false
		}
	}
	return true
}

// ByteSize estimates the resident size in bytes. The mph levels are
// approximated at 4 bits per key (gamma 2.0); rule payloads are not
// included.
func (fz *Classifier) ByteSize() int {
	size := 24
	for _, ft := range fz.tables {
		size += ft.byteSize()
	}
	return size
}

func (ft *table) byteSize() int {
	const ifaceSize = 16

	size := 40 + len(ft.fps)*4 + len(ft.rules)*ifaceSize
	size += len(ft.fps) / 2 // mph, ~4 bits/key
	if ft.starts != nil {
		size += ft.starts.AllocSize()
	}
	return size
}

// MemReport returns a hierarchical memory report with one child per
// compiled table, in bank order.
func (fz *Classifier) MemReport() utils.MemReport {
	children := make([]utils.MemReport, len(fz.tables))
	for i, ft := range fz.tables {
		children[i] = utils.MemReport{
			Name:       fmt.Sprintf("frozen[%d]", i),
			TotalBytes: ft.byteSize(),
		}
	}
	return utils.MemReport{
		Name:       "frozen classifier",
		TotalBytes: fz.ByteSize(),
		Children:   children,
	}
}
