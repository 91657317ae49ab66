package commerce_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"feedgraph/internal/commerce"
)

func TestSplitDirect(t *testing.T) {
	t.Parallel()
	table := commerce.DefaultCommissionTable()

	seller, shares, platform := table.Split(1000, 0)
	require.EqualValues(t, 900, seller)
	require.Empty(t, shares)
	require.EqualValues(t, 100, platform)
}

func TestSplitByChainLength(t *testing.T) {
	t.Parallel()
	table := commerce.DefaultCommissionTable()

	cases := []struct {
		chainLen int
		seller   int64
		shares   []int64
		platform int64
	}{
		{1, 700, []int64{200}, 100},
		{2, 700, []int64{140, 60}, 100},
		{3, 700, []int64{140, 42, 18}, 100},
		// Longer chains collapse onto the three-intermediary schedule.
		{5, 700, []int64{140, 42, 18}, 100},
	}

	for _, tc := range cases {
		seller, shares, platform := table.Split(1000, tc.chainLen)
		require.EqualValues(t, tc.seller, seller, "chainLen=%d", tc.chainLen)
		require.Equal(t, tc.shares, shares, "chainLen=%d", tc.chainLen)
		require.EqualValues(t, tc.platform, platform, "chainLen=%d", tc.chainLen)
	}
}

// Every share floors; the remainder accrues to the platform so the split
// always sums to the price exactly.
func TestSplitRounding(t *testing.T) {
	t.Parallel()
	table := commerce.DefaultCommissionTable()

	for _, price := range []int64{1, 7, 99, 999, 12345} {
		for chainLen := 0; chainLen <= 4; chainLen++ {
			seller, shares, platform := table.Split(price, chainLen)

			sum := seller + platform
			for _, share := range shares {
				require.GreaterOrEqual(t, share, int64(0))
				sum += share
			}
			require.Equal(t, price, sum, "price=%d chainLen=%d", price, chainLen)
			require.GreaterOrEqual(t, platform, int64(0))
		}
	}
}

// A tiny price can floor a distant share to zero; that is a valid zero credit.
func TestSplitZeroShares(t *testing.T) {
	t.Parallel()
	table := commerce.DefaultCommissionTable()

	seller, shares, platform := table.Split(10, 3)
	require.EqualValues(t, 7, seller)
	require.Equal(t, []int64{1, 0, 0}, shares)
	require.EqualValues(t, 2, platform)
}
