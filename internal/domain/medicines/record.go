package medicines

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record es la forma en el cable (y en la planilla del backend) de una medicina.
// Todos los campos de agenda viajan siempre; solo uno es válido según ScheduleType.
type Record struct {
	ID             string   `json:"id,omitempty"`
	PatientEmail   string   `json:"patientEmail"`
	CaregiverEmail string   `json:"caregiverEmail"`
	Name           string   `json:"name"`
	Time           string   `json:"time"`
	ScheduleType   string   `json:"scheduleType"`
	SelectedDays   DayList  `json:"selectedDays"`
	OneTimeDate    string   `json:"oneTimeDate"`
	CustomDates    DateList `json:"customDates"`
	Stock          Count    `json:"stock"`
	Instructions   string   `json:"instructions"`
	VoiceFileID    string   `json:"voiceFileId,omitempty"`
	TakenDates     DateList `json:"takenDates"`

	warnings []string
}

// UnmarshalJSON decodifica el registro y anota lo que hubo que corregir en el camino.
func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Record(p)

	var raw struct {
		Stock json.RawMessage `json:"stock"`
	}
	if err := json.Unmarshal(b, &raw); err == nil && len(raw.Stock) > 0 {
		if _, ok := readStock(raw.Stock); !ok {
			r.warnings = append(r.warnings, fmt.Sprintf("invalid stock %s, using 0", raw.Stock))
		}
	}
	return nil
}

// Warnings lista los datos del cable que se forzaron a un default al decodificar.
func (r Record) Warnings() []string { return r.warnings }

// Medicine valida el registro en el borde: puebla solo el campo de agenda activo
// y descarta datos viejos de otros tipos sin fallar.
func (r Record) Medicine() Medicine {
	st := ScheduleType(strings.TrimSpace(r.ScheduleType))
	if st == "" {
		st = ScheduleDaily
	}

	sched := Schedule{Type: st}
	switch st {
	case ScheduleSpecificDays:
		days := make([]time.Weekday, 0, len(r.SelectedDays))
		for _, d := range r.SelectedDays {
			if d < 0 || d > 6 {
				continue
			}
			days = append(days, time.Weekday(d))
		}
		sched.Days = days
	case ScheduleOneTime:
		sched.Date = strings.TrimSpace(r.OneTimeDate)
	case ScheduleCustomDates:
		sched.Dates = compact(r.CustomDates)
	}

	return Medicine{
		ID:             strings.TrimSpace(r.ID),
		PatientEmail:   strings.TrimSpace(r.PatientEmail),
		CaregiverEmail: strings.TrimSpace(r.CaregiverEmail),
		Name:           strings.TrimSpace(r.Name),
		Time:           strings.TrimSpace(r.Time),
		Schedule:       sched,
		Stock:          int(r.Stock),
		Instructions:   r.Instructions,
		VoiceFileID:    strings.TrimSpace(r.VoiceFileID),
		TakenDates:     compact(r.TakenDates),
	}
}

// ToRecord es la inversa de Record.Medicine. Las listas salen como [] y no null.
func ToRecord(m Medicine) Record {
	days := make(DayList, 0, len(m.Schedule.Days))
	for _, d := range m.Schedule.Days {
		days = append(days, int(d))
	}

	dates := DateList{}
	if len(m.Schedule.Dates) > 0 {
		dates = append(dates, m.Schedule.Dates...)
	}
	taken := DateList{}
	if len(m.TakenDates) > 0 {
		taken = append(taken, m.TakenDates...)
	}

	st := m.Schedule.Type
	if st == "" {
		st = ScheduleDaily
	}

	return Record{
		ID:             m.ID,
		PatientEmail:   m.PatientEmail,
		CaregiverEmail: m.CaregiverEmail,
		Name:           m.Name,
		Time:           m.Time,
		ScheduleType:   string(st),
		SelectedDays:   days,
		OneTimeDate:    m.Schedule.Date,
		CustomDates:    dates,
		Stock:          Count(m.Stock),
		Instructions:   m.Instructions,
		VoiceFileID:    m.VoiceFileID,
		TakenDates:     taken,
	}
}

// ParseStock convierte el stock tal como llega de un formulario a entero.
// "" => 0; "5.7" => 5; negativos o texto no numérico => error.
func ParseStock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("stock must be an integer, got %q", s)
		}
		n = int(math.Trunc(f))
	}
	if n < 0 {
		return 0, fmt.Errorf("stock must not be negative, got %d", n)
	}
	return n, nil
}

// Count acepta número o string numérico (la planilla a veces devuelve "5").
// En lectura nunca falla: un valor ilegible o negativo queda en 0 y Record lo reporta en Warnings.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	n, _ := readStock(b)
	*c = Count(n)
	return nil
}

// readStock interpreta el stock crudo del cable. ok=false si hubo que forzarlo a 0.
func readStock(b []byte) (n int, ok bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return 0, true
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, false
		}
		n, err := ParseStock(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil || f < 0 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// DayList acepta [1,3], ["1","3"], "1,3" o "[1,3]".
type DayList []int

func (d *DayList) UnmarshalJSON(b []byte) error {
	items, err := looseList(b)
	if err != nil {
		return fmt.Errorf("selectedDays: %w", err)
	}
	out := make(DayList, 0, len(items))
	for _, it := range items {
		n, err := strconv.Atoi(it)
		if err != nil {
			// valor basura en la celda: se ignora
			continue
		}
		out = append(out, n)
	}
	*d = out
	return nil
}

// DateList acepta ["2024-03-10"], "2024-03-10,2024-03-11" o un JSON serializado como string.
type DateList []string

func (d *DateList) UnmarshalJSON(b []byte) error {
	items, err := looseList(b)
	if err != nil {
		return fmt.Errorf("dates: %w", err)
	}
	*d = DateList(items)
	return nil
}

func looseList(b []byte) ([]string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return []string{}, nil
	}

	switch b[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(raw))
		for _, r := range raw {
			r = bytes.TrimSpace(r)
			var s string
			if len(r) > 0 && r[0] == '"' {
				if err := json.Unmarshal(r, &s); err != nil {
					return nil, err
				}
			} else {
				s = string(r)
			}
			if s = strings.TrimSpace(s); s != "" && s != "null" {
				out = append(out, s)
			}
		}
		return out, nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "[") {
			return looseList([]byte(s))
		}
		out := make([]string, 0)
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		// un número suelto (p.ej. selectedDays: 3)
		return []string{string(b)}, nil
	}
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
