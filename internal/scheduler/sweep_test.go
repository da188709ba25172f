package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rulestore"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/testutil"
)

func TestSweepExpiredRules(t *testing.T) {
	database := testutil.NewTestDB(t)
	facilityID := testutil.SeedFacility(t, database, "Club Central", "club-central", "UTC")
	courtID := testutil.SeedCourt(t, database, facilityID, "Cancha 1", 20000)
	store := rulestore.New(database)

	mustDate := func(value string) *rules.Date {
		date, err := rules.ParseDate(value)
		if err != nil {
			t.Fatalf("parse date %q: %v", value, err)
		}
		return &date
	}

	expired, err := store.CreateRule(context.Background(), rules.Rule{
		CourtID: courtID,
		Kind:    rules.KindBlock,
		Name:    "Temporada pasada",
		Pattern: rules.RulePattern{
			DateKind:   rules.DateRange,
			RangeStart: mustDate("2025-05-01"),
			RangeEnd:   mustDate("2025-05-31"),
			TimeKind:   rules.TimeAllDay,
		},
		Active:    true,
		CreatedBy: 1,
	})
	if err != nil {
		t.Fatalf("seed expired rule: %v", err)
	}

	weekly, err := store.CreateRule(context.Background(), rules.Rule{
		CourtID: courtID,
		Kind:    rules.KindPromotion,
		Name:    "Lunes de descuento",
		Pattern: rules.RulePattern{
			DateKind: rules.DateWeekly,
			Weekdays: []rules.Weekday{rules.Weekday(time.Monday)},
			TimeKind: rules.TimeAllDay,
		},
		Price:     10000,
		Active:    true,
		CreatedBy: 1,
	})
	if err != nil {
		t.Fatalf("seed weekly rule: %v", err)
	}

	now := time.Date(2025, time.June, 15, 3, 0, 0, 0, time.UTC)
	if err := SweepExpiredRules(context.Background(), store, time.UTC, now); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	got, err := store.GetRule(context.Background(), expired.ID)
	if err != nil {
		t.Fatalf("get expired rule: %v", err)
	}
	if got.Active {
		t.Errorf("expected expired range rule to be deactivated")
	}

	got, err = store.GetRule(context.Background(), weekly.ID)
	if err != nil {
		t.Fatalf("get weekly rule: %v", err)
	}
	if !got.Active {
		t.Errorf("expected weekly rule to stay active")
	}

	// Idempotent: a second sweep finds nothing to do.
	if err := SweepExpiredRules(context.Background(), store, time.UTC, now); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
}
