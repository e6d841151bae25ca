package frozen

import (
	"fmt"
	"sort"

	"github.com/dgryski/go-boomphf"
	"github.com/hillbig/rsdic"

	"rvh/classifier"
	"rvh/rvht"
)

const mphGamma = 2.0

// Compile snapshots a live classifier into its read-only form. The
// source classifier is not modified and may keep mutating afterwards;
// the compiled form keeps the rule values it saw at compile time.
// Compiling an empty classifier is valid.
func Compile(src *classifier.Classifier) (*Classifier, error) {
	fz := &Classifier{count: src.Len()}

	// Tables() is already in descending-top order
	for _, t := range src.Tables() {
		ft, err := compileTable(t)
		if err != nil {
			return nil, err
		}
		fz.tables = append(fz.tables, ft)
	}
	return fz, nil
}

func compileTable(t *rvht.Table) (*table, error) {
	ft := &table{dig: t.Digester(), top: t.TopPriority()}

	rules := t.Rules()
	if len(rules) == 0 {
		return ft, nil
	}

	groups := make(map[uint32][]rvht.Rule, len(rules))
	for _, r := range rules {
		fp := ft.dig.Fingerprint(r.Fields())
		groups[fp] = append(groups[fp], r)
	}

	keys := make([]uint64, 0, len(groups))
	for fp := range groups {
		keys = append(keys, uint64(fp))
	}
	// deterministic build for identical inputs
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	ft.mph = boomphf.New(mphGamma, keys)

	// the mph must place every fingerprint in a distinct slot in [1, n]
	slots := make([][]rvht.Rule, len(keys))
	ft.fps = make([]uint32, len(keys))
	for _, k := range keys {
		slot := ft.mph.Query(k)
		if slot == 0 || slot > uint64(len(keys)) {
			return nil, fmt.Errorf("frozen: mph lost fingerprint %08x", uint32(k))
		}
		if slots[slot-1] != nil {
			return nil, fmt.Errorf("frozen: mph mapped two fingerprints to slot %d", slot-1)
		}
		slots[slot-1] = groups[uint32(k)]
		ft.fps[slot-1] = uint32(k)
	}

	starts := rsdic.New()
	for _, chain := range slots {
		for i, r := range chain {
			starts.PushBack(i == 0)
			ft.rules = append(ft.rules, r)
		}
	}
	ft.starts = starts

	return ft, nil
}
