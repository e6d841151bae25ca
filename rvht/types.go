// Package rvht implements the range-vector hash table, the building
// block of the RVH packet classifier. A table covers one rectangular
// region of prefix-length space and hashes rules and packets by the
// masked low bits of each field.
package rvht

import "math/bits"

// Field is one classification dimension of a packet or rule, for
// example a source address word, a port or a zero-extended protocol
// byte.
type Field uint32

// Mask is a contiguous prefix mask: a run of 1-bits in the low
// positions, zeros above. Its popcount is the prefix length.
type Mask uint32

// Priority is a strictly positive ordinal, higher wins. 0 is reserved
// for "no priority". Priorities are unique across a classifier.
type Priority uint32

// Range is the half-open interval [Low, High) over prefix lengths on
// one dimension.
type Range struct {
	Low  uint32
	High uint32
}

// Rule is the capability contract for classification rules. All three
// accessors must be stable across the rule's lifetime. Rule identity
// is the priority, which the tables keep unique.
type Rule interface {
	Priority() Priority
	Fields() []Field
	Masks() []Mask
}

// Packet is the capability contract for lookups. The field vector
// length must match the rule dimensionality the table was built with.
type Packet interface {
	Fields() []Field
}

// PrefixLen returns the prefix length of m, i.e. its popcount.
func PrefixLen(m Mask) uint32 {
	return uint32(bits.OnesCount32(uint32(m)))
}

// IsPrefixMask reports whether m is a contiguous low-order run of
// 1-bits. m+1 must be a power of two (or zero).
func IsPrefixMask(m Mask) bool {
	return m&(m+1) == 0
}

// MaskForPrefixLen returns the mask with the n low bits set.
func MaskForPrefixLen(n uint32) Mask {
	if n >= 32 {
		return ^Mask(0)
	}
	return Mask(1)<<n - 1
}

// Matches reports whether two field values agree on every bit covered
// by the mask.
func Matches(pf, rf Field, m Mask) bool {
	return (pf^rf)&Field(m) == 0
}
