// internal/rules/resolve.go
package rules

// IsBookable reports whether the slot is free of blackout blocks. Blocks are
// purely exclusionary: one active matching block is enough to make the slot
// unavailable, so no tie-break is needed.
func IsBookable(blocks []Rule, courtID int64, date Date, slot Slot) bool {
	for _, rule := range Evaluate(blocks, courtID, date, slot) {
		if rule.Kind == KindBlock {
			return false
		}
	}
	return true
}

// ResolvePrice picks the price for the slot. With no matching promotion it
// returns basePrice and a nil rule. With several matches the winner is chosen
// by date-pattern specificity (a specific date beats a range beats a weekly
// recurrence), then by lowest price, then by most recent creation. Rule id
// is the final fence so equal-timestamp rows stay deterministic.
func ResolvePrice(promotions []Rule, courtID int64, date Date, slot Slot, basePrice int64) (int64, *Rule) {
	var best *Rule
	matches := Evaluate(promotions, courtID, date, slot)
	for i := range matches {
		if matches[i].Kind != KindPromotion {
			continue
		}
		if best == nil || promotionOutranks(matches[i], *best) {
			best = &matches[i]
		}
	}
	if best == nil {
		return basePrice, nil
	}
	return best.Price, best
}

func promotionOutranks(candidate, current Rule) bool {
	cs, ws := candidate.Pattern.dateSpecificity(), current.Pattern.dateSpecificity()
	if cs != ws {
		return cs < ws
	}
	if candidate.Price != current.Price {
		return candidate.Price < current.Price
	}
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.After(current.CreatedAt)
	}
	return candidate.ID > current.ID
}
