package raffle

// Split divides a sale total between the raffle creator and the treasury.
// The fee is one truncating division; the creator takes the remainder, so
// creatorShare+feeShare == total always holds and no value leaks to rounding.
// Dust from the truncation stays on the creator side and is not tracked.
func Split(total, feePercent uint64) (creatorShare, feeShare uint64) {
	feeShare = total * feePercent / 100
	creatorShare = total - feeShare
	return creatorShare, feeShare
}
