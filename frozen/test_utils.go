package frozen

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
