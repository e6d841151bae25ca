// Fingerprint benchmarks across digest kinds and dimensionalities:
// 1. DigestAlternating - alternating-parity XOR over masked fields
// 2. DigestXXH3 - seeded xxh3 over masked fields

package rvht

import (
	"fmt"
	"math/rand"
	"testing"
)

var benchDims = []int{1, 2, 5, 8, 16}

func randomDigestInput(dims int, r *rand.Rand) ([]Range, []Field) {
	ranges := make([]Range, dims)
	fields := make([]Field, dims)
	for i := range ranges {
		low := r.Uint32() % 17
		ranges[i] = Range{low, low + 1 + r.Uint32()%16}
		fields[i] = Field(r.Uint32())
	}
	return ranges, fields
}

func BenchmarkFingerprint_Alternating(b *testing.B) {
	for _, dims := range benchDims {
		b.Run(fmt.Sprintf("Dims%d", dims), func(b *testing.B) {
			r := rand.New(rand.NewSource(42))
			ranges, fields := randomDigestInput(dims, r)
			tbl := NewWithDigest(ranges, DigestAlternating)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = tbl.Fingerprint(fields)
			}
		})
	}
}

func BenchmarkFingerprint_XXH3(b *testing.B) {
	for _, dims := range benchDims {
		b.Run(fmt.Sprintf("Dims%d", dims), func(b *testing.B) {
			r := rand.New(rand.NewSource(42))
			ranges, fields := randomDigestInput(dims, r)
			tbl := NewWithDigest(ranges, DigestXXH3)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = tbl.Fingerprint(fields)
			}
		})
	}
}

func BenchmarkCheckMatch(b *testing.B) {
	for _, n := range []int{16, 256, 4096} {
		b.Run(fmt.Sprintf("Rules%d", n), func(b *testing.B) {
			r := rand.New(rand.NewSource(42))
			tbl := New([]Range{{8, 17}, {8, 17}})

			for i := 0; i < n; i++ {
				fields := []Field{Field(r.Uint32()), Field(r.Uint32())}
				masks := []Mask{
					MaskForPrefixLen(8 + r.Uint32()%9),
					MaskForPrefixLen(8 + r.Uint32()%9),
				}
				tbl.Insert(newMockRule(fields, masks, Priority(i+1)))
			}

			pkt := newMockPacket([]Field{Field(r.Uint32()), Field(r.Uint32())})

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = tbl.CheckMatch(pkt)
			}
		})
	}
}
