package content

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wiiutool/internal/util"
)

// TestChunkedOffsetTranslation covers the concrete scenario: L=0 -> 0x400,
// L=0xFC00-1 -> 0xFFFF, L=0xFC00 -> 0x10400, L=2*0xFC00 -> 0x20400.
func TestChunkedOffsetTranslation(t *testing.T) {
	cases := []struct {
		logical  int64
		physical int64
	}{
		{0, 0x400},
		{0xFC00 - 1, 0xFFFF},
		{0xFC00, 0x10400},
		{2 * 0xFC00, 0x20400},
	}
	for _, c := range cases {
		require.Equal(t, c.physical, PhysicalOffset(c.logical), "L=%d", c.logical)
	}
}

// TestChunkedOffsetRoundTrip covers invariant 7: for any L in
// [0, content_payload_total), logical_of(physical_of(L)) == L.
func TestChunkedOffsetRoundTrip(t *testing.T) {
	for i := int64(0); i < 5; i++ {
		for _, l := range []int64{0, 1, util.HashTreePayloadSize / 2, util.HashTreePayloadSize - 1} {
			logical := i*util.HashTreePayloadSize + l
			physical := PhysicalOffset(logical)
			require.Equal(t, logical, LogicalOffset(physical), "logical=%d physical=%d", logical, physical)
		}
	}
}
