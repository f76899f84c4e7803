package raffle

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/tonkeeper/tongo/ton"
)

// randomSeedLabel is the fixed label mixed into the draw derivation.
const randomSeedLabel = "random-seed"

// DeriveWinnerIndex picks the winning ticket index from an account address
// derived from the fixed label and the reveal timestamp: the character codes
// of the first seven characters of the raw address form are multiplied, the
// eighth is added, and the sum is reduced modulo the ticket count.
//
// The seed is observable and the timestamp is influenceable by whoever
// orders transactions, so the draw is NOT verifiably random. Treat any
// upgrade to a commit-reveal or VRF scheme as a separate, reviewed design
// change rather than a drop-in fix.
func DeriveWinnerIndex(timestamp int64, modulus uint64) uint64 {
	digest := sha256.Sum256([]byte(randomSeedLabel + strconv.FormatInt(timestamp, 10)))
	account := ton.MustParseAccountID(fmt.Sprintf("0:%x", digest))

	raw := account.ToRaw()
	combined := uint64(1)
	for i := 0; i < 7; i++ {
		combined *= uint64(raw[i])
	}
	combined += uint64(raw[7])

	return combined % modulus
}
