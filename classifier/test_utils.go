package classifier

import "rvh/rvht"

type testRule struct {
	fields   []rvht.Field
	masks    []rvht.Mask
	priority rvht.Priority
}

func newTestRule(fields []rvht.Field, masks []rvht.Mask, priority rvht.Priority) *testRule {
	return &testRule{fields: fields, masks: masks, priority: priority}
}

func (r *testRule) Priority() rvht.Priority { return r.priority }
func (r *testRule) Fields() []rvht.Field    { return r.fields }
func (r *testRule) Masks() []rvht.Mask      { return r.masks }

type testPacket struct {
	fields []rvht.Field
}

func newTestPacket(fields []rvht.Field) *testPacket {
	return &testPacket{fields: fields}
}

func (p *testPacket) Fields() []rvht.Field { return p.fields }

// referenceClassify is the brute-force model: linear scan over all
// rules, best priority among full masked matches.
func referenceClassify(rules []rvht.Rule, fields []rvht.Field) rvht.Rule {
	var best rvht.Rule
	var bestPrio rvht.Priority
	for _, r := range rules {
		if r.Priority() <= bestPrio {
			continue
		}
		rf := r.Fields()
		rm := r.Masks()
		ok := true
		for i := range fields {
			if !rvht.Matches(fields[i], rf[i], rm[i]) {
				ok = false
				break
			}
		}
		if ok {
			best = r
			bestPrio = r.Priority()
		}
	}
	return best
}
