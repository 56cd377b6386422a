package medicines

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// FormatDate usa el reloj local del time.Time recibido; no se normaliza zona horaria.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatTime devuelve HH:MM (24h) truncado al minuto.
func FormatTime(t time.Time) string { return t.Format(TimeLayout) }

// NormalizeTime acepta "8:05" o "08:05" y devuelve "08:05".
func NormalizeTime(s string) (string, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("time must be HH:MM: %w", err)
	}
	return t.Format(TimeLayout), nil
}

// Includes decide si la regla incluye la fecha calendario de now.
// Un tipo desconocido devuelve true: preferimos una alerta de más a un registro que nunca suena.
func (s Schedule) Includes(now time.Time) bool {
	switch s.Type {
	case ScheduleDaily:
		return true
	case ScheduleSpecificDays:
		return slices.Contains(s.Days, now.Weekday())
	case ScheduleOneTime:
		return s.Date == FormatDate(now)
	case ScheduleCustomDates:
		return slices.Contains(s.Dates, FormatDate(now))
	default:
		return true
	}
}

// IsDue reporta si la medicina toca en la fecha de now (sin mirar hora ni tomas).
func IsDue(m Medicine, now time.Time) bool {
	return m.Schedule.Includes(now)
}
