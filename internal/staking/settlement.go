package staking

import "math"

// SettlementCents converts a session's financial facts and one contract's
// terms into the signed amount owed between the parties.
//
// Negative means the staked player owes the staker (the staker is owed
// their share of a win); positive means the staker owes the player (the
// staker absorbs their share of a loss). The markup multiplier scales the
// staker's share in both directions.
func SettlementCents(buyInCents, cashoutCents int64, percentage, markup float64) int64 {
	profit := cashoutCents - buyInCents
	share := float64(profit) * percentage * markup
	return -int64(math.Round(share))
}
