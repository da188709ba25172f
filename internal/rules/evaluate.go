// internal/rules/evaluate.go
package rules

// Evaluate filters candidate rules down to the ones covering the target
// date and slot on the given court. It performs no reduction: turning the
// match set into a booking decision or a price is the resolvers' job.
//
// Only validated rules are ever persisted, so a malformed pattern here means
// the row was edited behind the application's back. The safe failure
// direction differs per variant: an unreadable block is treated as matching
// (fail toward unavailable), an unreadable promotion as non-matching (fail
// toward full price).
func Evaluate(candidates []Rule, courtID int64, date Date, slot Slot) []Rule {
	var matches []Rule
	for _, rule := range candidates {
		if rule.CourtID != courtID || !rule.Active {
			continue
		}
		if err := rule.Pattern.Validate(); err != nil {
			if rule.Kind == KindBlock {
				matches = append(matches, rule)
			}
			continue
		}
		if rule.Pattern.MatchesDate(date) && rule.Pattern.MatchesSlot(slot) {
			matches = append(matches, rule)
		}
	}
	return matches
}
