package commerce

// CommissionTable is the immutable tiered commission schedule, injected at
// construction. Shares are expressed in basis points so splits floor exactly
// in integer arithmetic: amount = price * bp / 10000.
type CommissionTable struct {
	// DirectSellerBP applies when the buyer purchases the original directly.
	DirectSellerBP int64
	// ChainSellerBP applies when the purchase arrives through a repost chain.
	ChainSellerBP int64
	// SharesBP is keyed by the capped chain length, min(len, 3). Shares are
	// ordered from the reposter closest to the original outward.
	SharesBP map[int][]int64
}

func DefaultCommissionTable() CommissionTable {
	return CommissionTable{
		DirectSellerBP: 9000,
		ChainSellerBP:  7000,
		SharesBP: map[int][]int64{
			1: {2000},
			2: {1400, 600},
			3: {1400, 420, 180},
		},
	}
}

// maxChain caps how many reposting intermediaries are paid.
const maxChain = 3

// Split divides price across seller, up to three intermediaries and the
// platform. Every share is floor-rounded; the rounding remainder accrues to
// the platform, never to a participant. A distant share that floors to zero
// is a valid zero credit.
func (t CommissionTable) Split(price int64, chainLen int) (seller int64, shares []int64, platform int64) {
	if chainLen <= 0 {
		seller = price * t.DirectSellerBP / 10000
		return seller, nil, price - seller
	}

	if chainLen > maxChain {
		chainLen = maxChain
	}
	seller = price * t.ChainSellerBP / 10000

	credited := seller
	for _, bp := range t.SharesBP[chainLen] {
		share := price * bp / 10000
		shares = append(shares, share)
		credited += share
	}
	return seller, shares, price - credited
}
