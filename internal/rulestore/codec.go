// internal/rulestore/codec.go
package rulestore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
)

// ruleColumnValues holds the nullable pattern column group for one row.
type ruleColumnValues struct {
	tipoFecha       string
	fechaEspecifica sql.NullString
	fechaInicio     sql.NullString
	fechaFin        sql.NullString
	diasSemana      sql.NullString
	tipoHorario     string
	horaEspecifica  sql.NullString
	horaInicio      sql.NullString
	horaFin         sql.NullString
}

// patternColumns serializes a pattern into its column group. Absent fields
// become NULL; there is no partial writing of a pattern.
func patternColumns(pattern rules.RulePattern) (ruleColumnValues, error) {
	cols := ruleColumnValues{
		tipoFecha:       string(pattern.DateKind),
		tipoHorario:     string(pattern.TimeKind),
		fechaEspecifica: nullDate(pattern.SpecificDate),
		fechaInicio:     nullDate(pattern.RangeStart),
		fechaFin:        nullDate(pattern.RangeEnd),
		horaEspecifica:  nullHour(pattern.SpecificHour),
		horaInicio:      nullHour(pattern.HourStart),
		horaFin:         nullHour(pattern.HourEnd),
	}

	if len(pattern.Weekdays) > 0 {
		names := make([]string, 0, len(pattern.Weekdays))
		for _, day := range pattern.Weekdays {
			names = append(names, day.String())
		}
		encoded, err := json.Marshal(names)
		if err != nil {
			return ruleColumnValues{}, fmt.Errorf("encode dias_semana: %w", err)
		}
		cols.diasSemana = sql.NullString{String: string(encoded), Valid: true}
	}

	return cols, nil
}

// pattern decodes the column group leniently: an unparseable stored value
// (possible after a manual data edit) decodes to an absent field, so the
// pattern fails validation downstream and the evaluator applies its
// per-kind closed-failure policy instead of the whole read blowing up.
func (cols ruleColumnValues) pattern() rules.RulePattern {
	pattern := rules.RulePattern{
		DateKind:     rules.DatePatternKind(cols.tipoFecha),
		TimeKind:     rules.TimePatternKind(cols.tipoHorario),
		SpecificDate: dateValue(cols.fechaEspecifica),
		RangeStart:   dateValue(cols.fechaInicio),
		RangeEnd:     dateValue(cols.fechaFin),
		SpecificHour: hourValue(cols.horaEspecifica),
		HourStart:    hourValue(cols.horaInicio),
		HourEnd:      hourValue(cols.horaFin),
	}

	if cols.diasSemana.Valid {
		var names []string
		if err := json.Unmarshal([]byte(cols.diasSemana.String), &names); err == nil {
			for _, name := range names {
				day, err := rules.ParseWeekday(name)
				if err != nil {
					continue
				}
				pattern.Weekdays = append(pattern.Weekdays, day)
			}
		}
	}

	return pattern
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (rules.Rule, error) {
	var (
		rule      rules.Rule
		kind      string
		cols      ruleColumnValues
		price     sql.NullInt64
		createdAt time.Time
	)
	err := row.Scan(
		&rule.ID, &rule.CourtID, &rule.FacilityID, &kind, &rule.Name, &rule.Description,
		&cols.tipoFecha, &cols.fechaEspecifica, &cols.fechaInicio, &cols.fechaFin, &cols.diasSemana,
		&cols.tipoHorario, &cols.horaEspecifica, &cols.horaInicio, &cols.horaFin,
		&price, &rule.Active, &rule.CreatedBy, &createdAt,
	)
	if err != nil {
		return rules.Rule{}, err
	}

	rule.Kind = rules.Kind(kind)
	rule.CreatedAt = createdAt
	if price.Valid {
		rule.Price = price.Int64
	}
	rule.Pattern = cols.pattern()
	return rule, nil
}

func collectRules(rows *sql.Rows) ([]rules.Rule, error) {
	var result []rules.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func promoPrice(rule rules.Rule) sql.NullInt64 {
	if rule.Kind != rules.KindPromotion {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: rule.Price, Valid: true}
}

func nullDate(d *rules.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullHour(t *rules.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func dateValue(value sql.NullString) *rules.Date {
	if !value.Valid {
		return nil
	}
	parsed, err := rules.ParseDate(value.String)
	if err != nil {
		return nil
	}
	return &parsed
}

func hourValue(value sql.NullString) *rules.TimeOfDay {
	if !value.Valid {
		return nil
	}
	parsed, err := rules.ParseTimeOfDay(value.String)
	if err != nil {
		return nil
	}
	return &parsed
}
