// internal/rulestore/store.go

// Package rulestore is the SQLite implementation of the rule engine's
// storage boundary. All driver-shape normalization (NULL columns, the
// dias_semana JSON codec) lives here; callers only see rules.Rule values.
package rulestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/db"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
)

type Store struct {
	db *db.DB
}

func New(database *db.DB) *Store {
	return &Store{db: database}
}

var _ rules.Repository = (*Store)(nil)
var _ rules.CourtStore = (*Store)(nil)

const ruleColumns = `
	r.id, r.court_id, c.facility_id, r.kind, r.nombre, r.descripcion,
	r.tipo_fecha, r.fecha_especifica, r.fecha_inicio, r.fecha_fin, r.dias_semana,
	r.tipo_horario, r.hora_especifica, r.hora_inicio, r.hora_fin,
	r.precio_promocional, r.activo, r.created_by, r.created_at`

const ruleFrom = ` FROM court_rules r JOIN courts c ON c.id = r.court_id`

func (s *Store) ListByCourt(ctx context.Context, courtID int64, kind rules.Kind) ([]rules.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+ruleColumns+ruleFrom+` WHERE r.court_id = ? AND r.kind = ? ORDER BY r.id`,
		courtID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list rules by court: %w", err)
	}
	defer rows.Close()
	return collectRules(rows)
}

func (s *Store) ListByFacility(ctx context.Context, facilityID int64, kind rules.Kind) ([]rules.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+ruleColumns+ruleFrom+` WHERE c.facility_id = ? AND r.kind = ? ORDER BY r.id`,
		facilityID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list rules by facility: %w", err)
	}
	defer rows.Close()
	return collectRules(rows)
}

func (s *Store) GetRule(ctx context.Context, id int64) (rules.Rule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+ruleColumns+ruleFrom+` WHERE r.id = ?`, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rules.Rule{}, rules.ErrNotFound
	}
	if err != nil {
		return rules.Rule{}, fmt.Errorf("get rule %d: %w", id, err)
	}
	return rule, nil
}

func (s *Store) CreateRule(ctx context.Context, rule rules.Rule) (rules.Rule, error) {
	cols, err := patternColumns(rule.Pattern)
	if err != nil {
		return rules.Rule{}, err
	}

	// Insert and read-back run in one transaction so the returned rule is
	// exactly the row that was written.
	createdAt := time.Now().UTC()
	var created rules.Rule
	err = s.db.RunInTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO court_rules (
				court_id, kind, nombre, descripcion,
				tipo_fecha, fecha_especifica, fecha_inicio, fecha_fin, dias_semana,
				tipo_horario, hora_especifica, hora_inicio, hora_fin,
				precio_promocional, activo, created_by, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rule.CourtID, string(rule.Kind), rule.Name, rule.Description,
			cols.tipoFecha, cols.fechaEspecifica, cols.fechaInicio, cols.fechaFin, cols.diasSemana,
			cols.tipoHorario, cols.horaEspecifica, cols.horaInicio, cols.horaFin,
			promoPrice(rule), rule.Active, rule.CreatedBy, createdAt,
		)
		if err != nil {
			return fmt.Errorf("create rule: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("create rule id: %w", err)
		}

		row := tx.QueryRowContext(ctx,
			`SELECT`+ruleColumns+ruleFrom+` WHERE r.id = ?`, id)
		created, err = scanRule(row)
		if err != nil {
			return fmt.Errorf("read back rule %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return rules.Rule{}, err
	}
	return created, nil
}

// UpdateRule rewrites every pattern column from the given rule, so switching
// tipo_fecha or tipo_horario nulls out the previous kind's fields.
func (s *Store) UpdateRule(ctx context.Context, rule rules.Rule) (rules.Rule, error) {
	cols, err := patternColumns(rule.Pattern)
	if err != nil {
		return rules.Rule{}, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE court_rules SET
			court_id = ?, nombre = ?, descripcion = ?,
			tipo_fecha = ?, fecha_especifica = ?, fecha_inicio = ?, fecha_fin = ?, dias_semana = ?,
			tipo_horario = ?, hora_especifica = ?, hora_inicio = ?, hora_fin = ?,
			precio_promocional = ?, activo = ?
		WHERE id = ?`,
		rule.CourtID, rule.Name, rule.Description,
		cols.tipoFecha, cols.fechaEspecifica, cols.fechaInicio, cols.fechaFin, cols.diasSemana,
		cols.tipoHorario, cols.horaEspecifica, cols.horaInicio, cols.horaFin,
		promoPrice(rule), rule.Active,
		rule.ID,
	)
	if err != nil {
		return rules.Rule{}, fmt.Errorf("update rule %d: %w", rule.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return rules.Rule{}, fmt.Errorf("update rule %d: %w", rule.ID, err)
	}
	if affected == 0 {
		return rules.Rule{}, rules.ErrNotFound
	}
	return s.GetRule(ctx, rule.ID)
}

func (s *Store) DeleteRule(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM court_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule %d: %w", id, err)
	}
	if affected == 0 {
		return rules.ErrNotFound
	}
	return nil
}

func (s *Store) SetRuleActive(ctx context.Context, id int64, active bool) (rules.Rule, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE court_rules SET activo = ? WHERE id = ?`, active, id)
	if err != nil {
		return rules.Rule{}, fmt.Errorf("toggle rule %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return rules.Rule{}, fmt.Errorf("toggle rule %d: %w", id, err)
	}
	if affected == 0 {
		return rules.Rule{}, rules.ErrNotFound
	}
	return s.GetRule(ctx, id)
}

// DeactivateExpired disables active date-range rules whose fecha_fin is
// before the given date. ISO dates compare correctly as text.
func (s *Store) DeactivateExpired(ctx context.Context, before rules.Date) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE court_rules SET activo = 0
		 WHERE activo = 1 AND tipo_fecha = ? AND fecha_fin < ?`,
		string(rules.DateRange), before.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired rules: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate expired rules: %w", err)
	}
	return affected, nil
}

func (s *Store) GetCourt(ctx context.Context, id int64) (rules.Court, error) {
	var court rules.Court
	err := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.facility_id, c.nombre, c.precio_base, f.timezone
		 FROM courts c JOIN facilities f ON f.id = c.facility_id
		 WHERE c.id = ?`, id,
	).Scan(&court.ID, &court.FacilityID, &court.Name, &court.BasePrice, &court.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return rules.Court{}, rules.ErrNotFound
	}
	if err != nil {
		return rules.Court{}, fmt.Errorf("get court %d: %w", id, err)
	}
	return court, nil
}

func (s *Store) GetFacility(ctx context.Context, id int64) (rules.Facility, error) {
	var facility rules.Facility
	err := s.db.QueryRowContext(ctx,
		`SELECT id, nombre, slug, timezone FROM facilities WHERE id = ?`, id,
	).Scan(&facility.ID, &facility.Name, &facility.Slug, &facility.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return rules.Facility{}, rules.ErrNotFound
	}
	if err != nil {
		return rules.Facility{}, fmt.Errorf("get facility %d: %w", id, err)
	}
	return facility, nil
}
