// internal/scheduler/sweep.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
)

const sweepTimeout = 30 * time.Second

// SweepExpiredRules deactivates date-range rules whose window ended before
// today. Specific-date rules simply stop matching on their own and weekly
// rules have no expiry, so only ranges need sweeping. Deactivation keeps the
// rows on file for the dashboard history.
func SweepExpiredRules(ctx context.Context, repo rules.Repository, loc *time.Location, now time.Time) error {
	if repo == nil {
		return fmt.Errorf("rule sweep requires a repository")
	}
	if loc == nil {
		loc = time.UTC
	}

	today := rules.DateOf(now.In(loc))
	count, err := repo.DeactivateExpired(ctx, today)
	if err != nil {
		return fmt.Errorf("deactivate expired rules: %w", err)
	}

	if count > 0 {
		log.Ctx(ctx).Info().
			Int64("deactivated", count).
			Str("before", today.String()).
			Msg("Expired rules swept")
	}
	return nil
}

// RegisterRuleSweep schedules the nightly sweep. The zone decides when the
// calendar day rolls over; cronExpr normally fires shortly after midnight.
func (s *Service) RegisterRuleSweep(repo rules.Repository, cronExpr string, loc *time.Location) error {
	_, err := s.AddJob("rule-sweep", cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if err := SweepExpiredRules(ctx, repo, loc, time.Now()); err != nil {
			log.Error().Err(err).Msg("Rule sweep failed")
		}
	})
	return err
}
