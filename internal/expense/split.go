package expense

import "math"

// ShareFor returns partyID's share of the expense total, in cents.
//
// The allocator's only primitive is "party's share of the total"; whether
// that share is owed to or by someone is the caller's concern. Malformed
// split maps never error: unknown parties get a zero share, and a custom
// split with no maps at all degrades to the none method (payer bears the
// full amount).
func ShareFor(e *Expense, partyID string) int64 {
	switch e.SplitMethod {
	case SplitMethodFiftyFifty:
		half := e.AmountCents / 2
		if e.IsPayer(partyID) {
			// odd cent stays with the payer so the two shares
			// always sum to the total
			return e.AmountCents - half
		}
		return half

	case SplitMethodCustom:
		if len(e.SplitAmounts) > 0 {
			// amounts win over percentages; no check that they
			// sum to the total
			return e.SplitAmounts[partyID]
		}
		if len(e.SplitPercentages) > 0 {
			pct, ok := e.SplitPercentages[partyID]
			if !ok {
				return 0
			}
			return int64(math.Round(float64(e.AmountCents) * pct / 100))
		}
	}

	// none, or custom without any split map
	if e.IsPayer(partyID) {
		return e.AmountCents
	}
	return 0
}

// OwedToUser sums the co-parent's share over every expense the user paid
// for. Pure integer arithmetic; no filtering by status, matching the
// "owed to you" summary the clients render.
func OwedToUser(expenses []*Expense, userID, coParentID string) int64 {
	var total int64
	for _, e := range expenses {
		if !e.IsPayer(userID) {
			continue
		}
		total += ShareFor(e, coParentID)
	}
	return total
}
