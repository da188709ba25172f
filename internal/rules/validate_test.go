package rules

import (
	"errors"
	"testing"
	"time"
)

// fakeClock pins "now" for lead-time checks.
type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

func testCourt() Court {
	return Court{ID: 7, FacilityID: 3, Name: "Cancha 1", BasePrice: 20000, Timezone: "UTC"}
}

func ownerActor() Actor {
	facilityID := int64(3)
	return Actor{UserID: 42, FacilityID: &facilityID}
}

// newValidatorAt fixes today at 2025-06-02 (a Monday) UTC.
func newValidatorAt(t *testing.T) *Validator {
	t.Helper()
	return NewValidator(fakeClock{now: time.Date(2025, time.June, 2, 15, 30, 0, 0, time.UTC)}, DefaultMinLeadDays)
}

func specificDatePromo(date Date, price int64) Rule {
	return Rule{
		CourtID: 7,
		Kind:    KindPromotion,
		Name:    "Promo apertura",
		Price:   price,
		Active:  true,
		Pattern: RulePattern{
			DateKind:     DateSpecific,
			SpecificDate: &date,
			TimeKind:     TimeAllDay,
		},
	}
}

func validationCode(t *testing.T, err error) ErrorCode {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr.Code
}

func TestValidateLeadTimeTooSoon(t *testing.T) {
	v := newValidatorAt(t)
	tomorrow := NewDate(2025, time.June, 3)

	_, err := v.ValidateForWrite(specificDatePromo(tomorrow, 15000), testCourt(), ownerActor())
	if validationCode(t, err) != ErrCodeInsufficientLeadTime {
		t.Fatalf("expected insufficient_lead_time, got %v", err)
	}

	var verr *ValidationError
	errors.As(err, &verr)
	if verr.EarliestAllowed == nil || *verr.EarliestAllowed != NewDate(2025, time.June, 9) {
		t.Fatalf("earliest permitted date should be today+7, got %v", verr.EarliestAllowed)
	}
}

func TestValidateLeadTimeBoundary(t *testing.T) {
	v := newValidatorAt(t)

	// Day 6 fails, day 7 succeeds.
	_, err := v.ValidateForWrite(specificDatePromo(NewDate(2025, time.June, 8), 15000), testCourt(), ownerActor())
	if validationCode(t, err) != ErrCodeInsufficientLeadTime {
		t.Fatalf("day 6 should be rejected, got %v", err)
	}

	advisory, err := v.ValidateForWrite(specificDatePromo(NewDate(2025, time.June, 9), 15000), testCourt(), ownerActor())
	if err != nil {
		t.Fatalf("day 7 should pass: %v", err)
	}
	if advisory.EffectiveFrom != nil {
		t.Fatalf("dated promotions carry no effective-from advisory, got %v", advisory.EffectiveFrom)
	}
}

func TestValidateRangePromoUsesRangeStart(t *testing.T) {
	v := newValidatorAt(t)
	promo := Rule{
		CourtID: 7,
		Kind:    KindPromotion,
		Name:    "Semana de invierno",
		Price:   15000,
		Pattern: RulePattern{
			DateKind:   DateRange,
			RangeStart: datePtr(2025, time.June, 5),
			RangeEnd:   datePtr(2025, time.June, 20),
			TimeKind:   TimeAllDay,
		},
	}

	_, err := v.ValidateForWrite(promo, testCourt(), ownerActor())
	if validationCode(t, err) != ErrCodeInsufficientLeadTime {
		t.Fatalf("range starting day 3 should be rejected, got %v", err)
	}
}

func TestValidateWeeklyPromoExemptWithAdvisory(t *testing.T) {
	v := newValidatorAt(t)
	promo := Rule{
		CourtID: 7,
		Kind:    KindPromotion,
		Name:    "Martes de descuento",
		Price:   15000,
		Pattern: RulePattern{
			DateKind: DateWeekly,
			Weekdays: []Weekday{Weekday(time.Tuesday)},
			TimeKind: TimeAllDay,
		},
	}

	advisory, err := v.ValidateForWrite(promo, testCourt(), ownerActor())
	if err != nil {
		t.Fatalf("weekly promotion should be exempt from lead time: %v", err)
	}
	// Today is Monday 2025-06-02; the next upcoming Monday is the 9th.
	if advisory.EffectiveFrom == nil || *advisory.EffectiveFrom != NewDate(2025, time.June, 9) {
		t.Fatalf("expected effective-from next Monday, got %v", advisory.EffectiveFrom)
	}
}

func TestValidatePriceNotBelowBase(t *testing.T) {
	v := newValidatorAt(t)
	date := NewDate(2025, time.July, 1)

	_, err := v.ValidateForWrite(specificDatePromo(date, 25000), testCourt(), ownerActor())
	if validationCode(t, err) != ErrCodePriceNotBelowBase {
		t.Fatalf("price above base should be rejected, got %v", err)
	}

	// Equal is not strictly below.
	_, err = v.ValidateForWrite(specificDatePromo(date, 20000), testCourt(), ownerActor())
	if validationCode(t, err) != ErrCodePriceNotBelowBase {
		t.Fatalf("price equal to base should be rejected, got %v", err)
	}
}

func TestValidatePriceMustBePositive(t *testing.T) {
	v := newValidatorAt(t)
	date := NewDate(2025, time.July, 1)

	// Zero is what an omitted precio_promocional decodes to; a free court is
	// never a valid promotion.
	_, err := v.ValidateForWrite(specificDatePromo(date, 0), testCourt(), ownerActor())
	if validationCode(t, err) != ErrCodePriceNotBelowBase {
		t.Fatalf("zero price should be rejected, got %v", err)
	}

	_, err = v.ValidateForWrite(specificDatePromo(date, -5000), testCourt(), ownerActor())
	if validationCode(t, err) != ErrCodePriceNotBelowBase {
		t.Fatalf("negative price should be rejected, got %v", err)
	}
}

func TestValidateBlockSkipsPriceAndLeadTime(t *testing.T) {
	v := newValidatorAt(t)
	tomorrow := NewDate(2025, time.June, 3)
	block := Rule{
		CourtID: 7,
		Kind:    KindBlock,
		Name:    "Mantencion",
		Pattern: RulePattern{
			DateKind:     DateSpecific,
			SpecificDate: &tomorrow,
			TimeKind:     TimeAllDay,
		},
	}

	if _, err := v.ValidateForWrite(block, testCourt(), ownerActor()); err != nil {
		t.Fatalf("a blackout for tomorrow must be allowed: %v", err)
	}
}

func TestValidateMalformedPatternShortCircuits(t *testing.T) {
	v := newValidatorAt(t)
	promo := Rule{
		CourtID: 7,
		Kind:    KindPromotion,
		Price:   99999, // would also fail the price check
		Pattern: RulePattern{DateKind: DateSpecific, TimeKind: TimeAllDay},
	}

	_, err := v.ValidateForWrite(promo, testCourt(), ownerActor())
	if validationCode(t, err) != ErrCodeMalformedPattern {
		t.Fatalf("pattern consistency is checked first, got %v", err)
	}
}

func TestValidateOwnership(t *testing.T) {
	v := newValidatorAt(t)
	date := NewDate(2025, time.July, 1)
	promo := specificDatePromo(date, 15000)

	otherFacility := int64(99)
	_, err := v.ValidateForWrite(promo, testCourt(), Actor{UserID: 1, FacilityID: &otherFacility})
	if validationCode(t, err) != ErrCodeForbidden {
		t.Fatalf("cross-facility write should be forbidden, got %v", err)
	}

	_, err = v.ValidateForWrite(promo, testCourt(), Actor{UserID: 1, FacilityID: nil})
	if validationCode(t, err) != ErrCodeForbidden {
		t.Fatalf("actor without facility should be forbidden, got %v", err)
	}

	if _, err := v.ValidateForWrite(promo, testCourt(), Actor{UserID: 1, SuperAdmin: true}); err != nil {
		t.Fatalf("super admin bypasses the ownership check: %v", err)
	}
}

func TestValidateUsesFacilityLocalDate(t *testing.T) {
	// 2025-06-03 01:00 UTC is still 2025-06-02 in Santiago; the lead-time
	// window must be computed off the facility-local calendar date.
	clock := fakeClock{now: time.Date(2025, time.June, 3, 1, 0, 0, 0, time.UTC)}
	v := NewValidator(clock, DefaultMinLeadDays)
	court := testCourt()
	court.Timezone = "America/Santiago"

	_, err := v.ValidateForWrite(specificDatePromo(NewDate(2025, time.June, 9), 15000), court, ownerActor())
	if err != nil {
		t.Fatalf("June 9 is 7 local days out from June 2 local: %v", err)
	}

	court.Timezone = "UTC"
	_, err = v.ValidateForWrite(specificDatePromo(NewDate(2025, time.June, 9), 15000), court, ownerActor())
	if validationCode(t, err) != ErrCodeInsufficientLeadTime {
		t.Fatalf("June 9 is only 6 UTC days out from June 3, got %v", err)
	}
}
