// internal/rules/validate.go
package rules

import (
	"fmt"
	"time"
)

// Clock interface for testing time-dependent validation.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// ErrorCode identifies a validation failure class. Codes are stable and
// surface on the wire so the dashboard can render a corrective message.
type ErrorCode string

const (
	ErrCodeMalformedPattern     ErrorCode = "malformed_pattern"
	ErrCodePriceNotBelowBase    ErrorCode = "price_not_below_base"
	ErrCodeInsufficientLeadTime ErrorCode = "insufficient_lead_time"
	ErrCodeForbidden            ErrorCode = "forbidden"
	ErrCodeNotFound             ErrorCode = "not_found"
)

// ValidationError is a structured rejection of a rule write. EarliestAllowed
// is set only for insufficient_lead_time so the caller can show the first
// permitted date.
type ValidationError struct {
	Code            ErrorCode
	Message         string
	EarliestAllowed *Date
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Advisory is informational metadata returned on a successful validation.
// For weekly recurring promotions it names the Monday the promotion takes
// effect; the pattern itself stores no start bound.
type Advisory struct {
	EffectiveFrom *Date
}

const DefaultMinLeadDays = 7

// Validator enforces the rule-write invariants. It holds no storage handle;
// the caller resolves the court and passes it in.
type Validator struct {
	clock       Clock
	minLeadDays int
}

func NewValidator(clock Clock, minLeadDays int) *Validator {
	if clock == nil {
		clock = realClock{}
	}
	if minLeadDays <= 0 {
		minLeadDays = DefaultMinLeadDays
	}
	return &Validator{clock: clock, minLeadDays: minLeadDays}
}

// ValidateForWrite checks a candidate rule for create or update, in order,
// short-circuiting on the first failure:
//
//  1. pattern field-group consistency,
//  2. promotions: price positive and strictly below the court's base price,
//  3. promotions with a dated pattern: earliest applicable date at least
//     minLeadDays calendar days from today in the facility's zone,
//  4. ownership: the court belongs to the actor's facility, unless the actor
//     is a super admin.
//
// Blocks skip 2 and 3: a maintenance blackout can be created for tomorrow.
func (v *Validator) ValidateForWrite(rule Rule, court Court, actor Actor) (Advisory, error) {
	if err := rule.Pattern.Validate(); err != nil {
		return Advisory{}, &ValidationError{
			Code:    ErrCodeMalformedPattern,
			Message: err.Error(),
		}
	}

	var advisory Advisory
	if rule.Kind == KindPromotion {
		// An absent precio_promocional decodes to 0; storing that would quote
		// the court for free, so a non-positive price is rejected, not kept.
		if rule.Price <= 0 {
			return Advisory{}, &ValidationError{
				Code: ErrCodePriceNotBelowBase,
				Message: fmt.Sprintf("precio_promocional %d must be a positive amount below the court base price %d",
					rule.Price, court.BasePrice),
			}
		}
		if rule.Price >= court.BasePrice {
			return Advisory{}, &ValidationError{
				Code: ErrCodePriceNotBelowBase,
				Message: fmt.Sprintf("precio_promocional %d must be below the court base price %d",
					rule.Price, court.BasePrice),
			}
		}

		today := v.today(court)
		if earliest, ok := rule.Pattern.EarliestDate(); ok {
			minimum := today.AddDays(v.minLeadDays)
			if earliest.Before(minimum) {
				return Advisory{}, &ValidationError{
					Code: ErrCodeInsufficientLeadTime,
					Message: fmt.Sprintf("promotion must start at least %d days out; earliest permitted date is %s",
						v.minLeadDays, minimum),
					EarliestAllowed: &minimum,
				}
			}
		} else {
			// Weekly recurrences are exempt from lead time but take effect
			// starting the next upcoming Monday.
			effective := NextWeekday(today, time.Monday)
			advisory.EffectiveFrom = &effective
		}
	}

	if !actor.SuperAdmin {
		if actor.FacilityID == nil || *actor.FacilityID != court.FacilityID {
			return Advisory{}, &ValidationError{
				Code:    ErrCodeForbidden,
				Message: fmt.Sprintf("court %d does not belong to the actor's facility", court.ID),
			}
		}
	}

	return advisory, nil
}

// today is the current calendar date in the court's facility zone. An
// unknown zone falls back to UTC rather than failing the write.
func (v *Validator) today(court Court) Date {
	loc, err := time.LoadLocation(court.Timezone)
	if err != nil || court.Timezone == "" {
		loc = time.UTC
	}
	return DateOf(v.clock.Now().In(loc))
}
