package rvht

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"rvh/errutil"
)

// DigestKind selects the fingerprint function of a table.
type DigestKind int

const (
	// DigestAlternating is the alternating-parity XOR digest. Fast and
	// exactly consistent between rules and packets, but not a strong
	// hash; field vectors that differ only above the canonical masks
	// always collide (as they must).
	DigestAlternating DigestKind = iota
	// DigestXXH3 runs the masked fields through xxh3 with a per-table
	// seed. Better bucket spread for workloads with many rules per
	// region at the cost of a slower probe.
	DigestXXH3
)

// Digester computes bucket fingerprints for field vectors under a
// fixed vector of canonical masks. Insert and lookup must agree on the
// fingerprint, so a digester is created once per table and shared by
// both paths. Only bits covered by the masks contribute, which
// guarantees a packet and any rule matching it land in the same
// bucket.
type Digester struct {
	kind  DigestKind
	seed  uint64
	masks []Mask
}

func newDigester(kind DigestKind, masks []Mask) Digester {
	d := Digester{kind: kind, masks: masks}
	if kind == DigestXXH3 {
		d.seed = seedFromMasks(masks)
	}
	return d
}

// The seed is derived from the mask vector so that two tables over the
// same region fingerprint identically across processes.
func seedFromMasks(masks []Mask) uint64 {
	buf := make([]byte, 4*len(masks))
	for i, m := range masks {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(m))
	}
	return xxh3.Hash(buf)
}

// Dims returns the dimensionality of the digester.
func (d Digester) Dims() int {
	return len(d.masks)
}

// Fingerprint digests the significant low bits of fields.
func (d Digester) Fingerprint(fields []Field) uint32 {
	errutil.BugOn(len(fields) != len(d.masks),
		"fingerprint over %d fields, digester has %d dimensions", len(fields), len(d.masks))

	if d.kind == DigestXXH3 {
		return d.fingerprintXXH3(fields)
	}
	return d.fingerprintAlternating(fields)
}

func (d Digester) fingerprintAlternating(fields []Field) uint32 {
	var h uint32
	p := uint32(1)
	for i, f := range fields {
		h ^= p | (uint32(f) & uint32(d.masks[i]))
		p ^= 1 // distinguishes even and odd dimensions
	}
	return h
}

func (d Digester) fingerprintXXH3(fields []Field) uint32 {
	h := xxh3.New()

	seedBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(seedBuf, d.seed)
	_, _ = h.Write(seedBuf)

	var buf [4]byte
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[:], uint32(f)&uint32(d.masks[i]))
		_, _ = h.Write(buf[:])
	}

	s := h.Sum64()
	return uint32(s ^ s>>32)
}
