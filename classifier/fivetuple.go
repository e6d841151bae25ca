package classifier

import "rvh/rvht"

// FiveTupleRanges returns a default region split for the classic
// 5-tuple, dimensions ordered as source address, destination address,
// source port, destination port, protocol.
//
// Addresses are split into four prefix-length bands ([0,9), [9,17),
// [17,25), [25,33)), ports into wildcard-ish ([0,16)) and exact
// ([16,17)), and the protocol dimension takes any prefix up to its
// full 8 bits. The cartesian product covers every prefix-length
// combination expressible in those bands with 64 disjoint regions.
//
// This is a starting point, not a policy: deployments with a known
// rule shape should pass their own regions to New.
func FiveTupleRanges() [][]rvht.Range {
	addr := []rvht.Range{{Low: 0, High: 9}, {Low: 9, High: 17}, {Low: 17, High: 25}, {Low: 25, High: 33}}
	port := []rvht.Range{{Low: 0, High: 16}, {Low: 16, High: 17}}
	proto := []rvht.Range{{Low: 0, High: 9}}

	regions := make([][]rvht.Range, 0, len(addr)*len(addr)*len(port)*len(port)*len(proto))
	for _, sa := range addr {
		for _, da := range addr {
			for _, sp := range port {
				for _, dp := range port {
					for _, pr := range proto {
						regions = append(regions, []rvht.Range{sa, da, sp, dp, pr})
					}
				}
			}
		}
	}
	return regions
}
