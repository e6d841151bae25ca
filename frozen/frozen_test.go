package frozen

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rvh/classifier"
	"rvh/rvht"
)

func testRegions() [][]rvht.Range {
	bands := []rvht.Range{{Low: 0, High: 4}, {Low: 4, High: 9}, {Low: 9, High: 33}}
	var regions [][]rvht.Range
	for _, a := range bands {
		for _, b := range bands {
			regions = append(regions, []rvht.Range{a, b})
		}
	}
	return regions
}

func TestCompileEmptyClassifier(t *testing.T) {
	fz, err := Compile(classifier.New(testRegions()))
	require.NoError(t, err)

	require.Equal(t, 0, fz.Len())
	require.Nil(t, fz.Classify(newTestPacket([]rvht.Field{1, 2})))
}

func TestCompiledScenario(t *testing.T) {
	c := classifier.New([][]rvht.Range{
		{{Low: 0, High: 3}},
		{{Low: 3, High: 6}},
		{{Low: 6, High: 9}},
	})

	require.True(t, c.AddRule(newTestRule([]rvht.Field{0b11}, []rvht.Mask{0b11}, 1)))
	require.True(t, c.AddRule(newTestRule([]rvht.Field{0b1}, []rvht.Mask{0b1}, 3)))
	require.True(t, c.AddRule(newTestRule([]rvht.Field{0b100}, []rvht.Mask{0b111}, 4)))
	require.True(t, c.AddRule(newTestRule([]rvht.Field{0b101}, []rvht.Mask{0b1_1111}, 2)))
	require.True(t, c.AddRule(newTestRule([]rvht.Field{0b11_1001}, []rvht.Mask{0b11_1111}, 6)))
	require.True(t, c.AddRule(newTestRule([]rvht.Field{0b11_1100}, []rvht.Mask{0b1111_1111}, 5)))

	fz, err := Compile(c)
	require.NoError(t, err)
	require.Equal(t, 6, fz.Len())

	require.Equal(t, rvht.Priority(6), fz.Classify(newTestPacket([]rvht.Field{0b11_1001})).Priority())
	require.Equal(t, rvht.Priority(5), fz.Classify(newTestPacket([]rvht.Field{0b11_1100})).Priority())
	require.Equal(t, rvht.Priority(3), fz.Classify(newTestPacket([]rvht.Field{0b00_101})).Priority())
	require.Equal(t, rvht.Priority(4), fz.Classify(newTestPacket([]rvht.Field{0b00_100})).Priority())
	require.Nil(t, fz.Classify(newTestPacket([]rvht.Field{0b0})))
}

func TestCompiledSnapshotIgnoresLaterMutation(t *testing.T) {
	c := classifier.New(testRegions())

	r1 := newTestRule([]rvht.Field{0b101, 0b1}, []rvht.Mask{0b111, 0b1}, 2)
	require.True(t, c.AddRule(r1))

	fz, err := Compile(c)
	require.NoError(t, err)

	r2 := newTestRule([]rvht.Field{0b101, 0b1}, []rvht.Mask{0b1111, 0b1}, 9)
	require.True(t, c.AddRule(r2))
	require.True(t, c.RemoveRule(r1))

	pkt := newTestPacket([]rvht.Field{0b101, 0b1})
	require.Equal(t, rvht.Priority(2), fz.Classify(pkt).Priority())
	require.Equal(t, 1, fz.Len())
}

func TestCompiledEquivalence(t *testing.T) {
	t.Parallel()

	const (
		runs    = 50
		packets = 400
	)

	for run := 0; run < runs; run++ {
		seed := time.Now().UnixNano()
		r := rand.New(rand.NewSource(seed))

		kind := rvht.DigestAlternating
		if run%2 == 1 {
			kind = rvht.DigestXXH3
		}
		c := classifier.NewWithDigest(testRegions(), kind)

		var rules []rvht.Rule
		n := 1 + r.Intn(256)
		for prio := 1; prio <= n; prio++ {
			rule := newTestRule(
				[]rvht.Field{rvht.Field(r.Uint32()), rvht.Field(r.Uint32())},
				[]rvht.Mask{
					rvht.MaskForPrefixLen(r.Uint32() % 33),
					rvht.MaskForPrefixLen(r.Uint32() % 33),
				},
				rvht.Priority(prio),
			)
			require.True(t, c.AddRule(rule), "seed: %d", seed)
			rules = append(rules, rule)
		}

		fz, err := Compile(c)
		require.NoError(t, err, "seed: %d", seed)
		require.Equal(t, c.Len(), fz.Len())

		for i := 0; i < packets; i++ {
			var fields []rvht.Field
			if i%2 == 0 {
				fields = []rvht.Field{rvht.Field(r.Uint32()), rvht.Field(r.Uint32())}
			} else {
				rule := rules[r.Intn(len(rules))]
				rf := rule.Fields()
				rm := rule.Masks()
				fields = make([]rvht.Field, len(rf))
				for j := range fields {
					rnd := rvht.Field(r.Uint32())
					fields[j] = rf[j]&rvht.Field(rm[j]) | rnd&^rvht.Field(rm[j])
				}
			}

			pkt := newTestPacket(fields)
			want := c.Classify(pkt)
			got := fz.Classify(pkt)

			if want == nil {
				require.Nil(t, got, "frozen matched where live did not, fields %v (seed: %d)", fields, seed)
			} else {
				require.NotNil(t, got, "frozen missed priority %d, fields %v (seed: %d)", want.Priority(), fields, seed)
				require.Equal(t, want.Priority(), got.Priority(), "fields %v (seed: %d)", fields, seed)
			}
		}
	}
}

func TestMemReport(t *testing.T) {
	c := classifier.New(testRegions())
	require.True(t, c.AddRule(newTestRule([]rvht.Field{0b101, 0b1}, []rvht.Mask{0b111, 0b1}, 2)))

	fz, err := Compile(c)
	require.NoError(t, err)

	require.Greater(t, fz.ByteSize(), 0)
	report := fz.MemReport()
	require.Equal(t, "frozen classifier", report.Name)
	require.Len(t, report.Children, 9)
	t.Logf("\n%s", report.String())
}
