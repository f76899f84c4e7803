package raffle

import "testing"

func TestSplitConservesTotal(t *testing.T) {
	for total := uint64(0); total <= 1000; total++ {
		creatorShare, feeShare := Split(total, 5)
		if creatorShare+feeShare != total {
			t.Fatalf("total %d split into %d+%d", total, creatorShare, feeShare)
		}
	}
}

func TestSplitShares(t *testing.T) {
	cases := []struct {
		name         string
		total        uint64
		feePercent   uint64
		creatorShare uint64
		feeShare     uint64
	}{
		{"five percent of twenty", 20, 5, 19, 1},
		{"truncation keeps dust with creator", 19, 5, 19, 0},
		{"zero total", 0, 5, 0, 0},
		{"zero fee", 100, 0, 100, 0},
		{"full fee", 100, 100, 0, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			creatorShare, feeShare := Split(tc.total, tc.feePercent)
			if creatorShare != tc.creatorShare || feeShare != tc.feeShare {
				t.Errorf("Split(%d, %d) = (%d, %d), want (%d, %d)",
					tc.total, tc.feePercent, creatorShare, feeShare, tc.creatorShare, tc.feeShare)
			}
		})
	}
}
