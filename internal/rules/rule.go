// internal/rules/rule.go

// Package rules implements the temporal overlay rule engine for court
// bookings: blackout blocks and promotional prices expressed as date/time
// patterns, evaluated against a target date and reservation slot.
package rules

import (
	"context"
	"errors"
	"time"
)

// Kind discriminates the two rule variants.
type Kind string

const (
	KindBlock     Kind = "bloqueo"
	KindPromotion Kind = "promocion"
)

// ErrNotFound is returned by repositories when a rule or court id is unknown.
var ErrNotFound = errors.New("not found")

// Rule is a persisted overlay rule for a single court. Blocks make matching
// slots unavailable; promotions offer Price instead of the court's base price.
type Rule struct {
	ID          int64
	CourtID     int64
	FacilityID  int64
	Kind        Kind
	Name        string // motivo for blocks, nombre for promotions
	Description string
	Pattern     RulePattern
	Price       int64 // CLP, promotions only
	Active      bool
	CreatedBy   int64
	CreatedAt   time.Time
}

// Court is the bookable resource a rule attaches to. Timezone is the owning
// facility's IANA zone; all calendar matching happens in that zone.
type Court struct {
	ID         int64
	FacilityID int64
	Name       string
	BasePrice  int64 // CLP per hour
	Timezone   string
}

// Facility scopes courts and rule permissions.
type Facility struct {
	ID       int64
	Name     string
	Slug     string
	Timezone string
}

// Actor is the user attempting a rule mutation. SuperAdmin bypasses the
// facility ownership check.
type Actor struct {
	UserID     int64
	FacilityID *int64
	SuperAdmin bool
}

// Repository is the storage boundary for rules. Implementations normalize
// driver shapes internally and return these fixed types; callers never see
// raw rows. All mutations are single-row and atomic.
type Repository interface {
	ListByCourt(ctx context.Context, courtID int64, kind Kind) ([]Rule, error)
	ListByFacility(ctx context.Context, facilityID int64, kind Kind) ([]Rule, error)
	GetRule(ctx context.Context, id int64) (Rule, error)
	CreateRule(ctx context.Context, rule Rule) (Rule, error)
	// UpdateRule rewrites every pattern field of the stored row so no field
	// from a previously declared kind can survive a kind change.
	UpdateRule(ctx context.Context, rule Rule) (Rule, error)
	DeleteRule(ctx context.Context, id int64) error
	SetRuleActive(ctx context.Context, id int64, active bool) (Rule, error)
	// DeactivateExpired disables active date-range rules whose window ended
	// before the given date and reports how many rows changed.
	DeactivateExpired(ctx context.Context, before Date) (int64, error)
}

// CourtStore resolves courts (with their facility zone and base price) for
// validation and evaluation.
type CourtStore interface {
	GetCourt(ctx context.Context, id int64) (Court, error)
	GetFacility(ctx context.Context, id int64) (Facility, error)
}
