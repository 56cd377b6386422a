package medicines

import (
	"slices"
	"time"
)

// ScheduleType define la regla de recurrencia de una medicina.
type ScheduleType string

const (
	ScheduleDaily        ScheduleType = "daily"
	ScheduleSpecificDays ScheduleType = "specific-days"
	ScheduleOneTime      ScheduleType = "one-time"
	ScheduleCustomDates  ScheduleType = "custom-dates"
)

// Known reporta si el tipo es uno de los soportados.
func (t ScheduleType) Known() bool {
	switch t {
	case ScheduleDaily, ScheduleSpecificDays, ScheduleOneTime, ScheduleCustomDates:
		return true
	default:
		return false
	}
}

// Schedule es una variante etiquetada: según Type solo uno de Days/Date/Dates tiene sentido.
type Schedule struct {
	Type ScheduleType

	Days  []time.Weekday // specific-days
	Date  string         // one-time, YYYY-MM-DD
	Dates []string       // custom-dates, YYYY-MM-DD
}

func Daily() Schedule { return Schedule{Type: ScheduleDaily} }

func OnWeekdays(days ...time.Weekday) Schedule {
	return Schedule{Type: ScheduleSpecificDays, Days: days}
}

func OnceOn(date string) Schedule {
	return Schedule{Type: ScheduleOneTime, Date: date}
}

func OnDates(dates ...string) Schedule {
	return Schedule{Type: ScheduleCustomDates, Dates: dates}
}

// Medicine es una instrucción de dosis, recurrente o única.
type Medicine struct {
	ID string

	PatientEmail   string
	CaregiverEmail string

	Name         string
	Time         string // HH:MM
	Schedule     Schedule
	Stock        int
	Instructions string
	VoiceFileID  string

	TakenDates []string // YYYY-MM-DD
}

// TakenOn reporta si la dosis ya fue confirmada en esa fecha.
func (m Medicine) TakenOn(date string) bool {
	return slices.Contains(m.TakenDates, date)
}

// ApplyTaken agrega date y descuenta una unidad de stock (nunca por debajo de 0).
// Devuelve false si date ya estaba: la segunda marca del día no cambia nada.
func (m *Medicine) ApplyTaken(date string) bool {
	if m.TakenOn(date) {
		return false
	}
	m.TakenDates = append(slices.Clone(m.TakenDates), date)
	if m.Stock > 0 {
		m.Stock--
	}
	return true
}
