package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLCSLength(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"AGGTAB", "GXTXAYB", 4}, // GTAB
		{"HRB259502", "HRB999999", 4},
		{"ABC", "ABC", 3},
		{"ABC", "XYZ", 0},
		{"", "ABC", 0},
		{"ABC", "", 0},
		{"", "", 0},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, lcsLength(tc.a, tc.b), "lcs(%q, %q)", tc.a, tc.b)
		require.Equal(t, tc.want, lcsLength(tc.b, tc.a), "lcs is symmetric")
	}
}

func TestLCSRatio(t *testing.T) {
	require.InDelta(t, 1.0, lcsRatio("ABC", "ABC"), 1e-9)
	require.InDelta(t, 0.5, lcsRatio("AB", "ABCD"), 1e-9)
	require.Zero(t, lcsRatio("", ""))
}
