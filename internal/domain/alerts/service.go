// Package alerts decide qué medicina (si alguna) debe sonar para un paciente en un instante dado.
package alerts

import (
	"context"
	"strings"
	"time"

	"medication-reminder/internal/domain/medicines"
	"medication-reminder/internal/platform/logger"
)

// MedicineSource es la única fuente de verdad del motor. backend.Client la implementa.
type MedicineSource interface {
	GetMedicinesByPatient(ctx context.Context, patientEmail string) ([]medicines.Medicine, error)
}

type Service struct {
	src MedicineSource
	log logger.Logger
	now func() time.Time
}

func NewService(src MedicineSource, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		src: src,
		log: log,
		now: time.Now,
	}
}

// NextAlert trae las medicinas del paciente (sin cache) y devuelve la primera,
// en el orden del backend, que:
//  1. toca hoy según su agenda,
//  2. tiene Time igual a HH:MM de now (sin tolerancia),
//  3. no fue marcada como tomada hoy.
//
// nil, nil significa "sin alerta". Un error del fetch se devuelve tal cual.
func (s *Service) NextAlert(ctx context.Context, patientEmail string, now time.Time) (*medicines.Medicine, error) {
	items, err := s.src.GetMedicinesByPatient(ctx, strings.TrimSpace(patientEmail))
	if err != nil {
		return nil, err
	}

	for i := range items {
		if Matches(items[i], now) {
			m := items[i]
			s.log.Debug("medicine due", map[string]any{
				"patient":     patientEmail,
				"medicine_id": m.ID,
				"time":        m.Time,
			})
			return &m, nil
		}
	}
	return nil, nil
}

// NextAlertNow es NextAlert con el reloj del servicio.
func (s *Service) NextAlertNow(ctx context.Context, patientEmail string) (*medicines.Medicine, error) {
	return s.NextAlert(ctx, patientEmail, s.now())
}

// Matches aplica los tres filtros de NextAlert a una sola medicina.
func Matches(m medicines.Medicine, now time.Time) bool {
	if !medicines.IsDue(m, now) {
		return false
	}
	if m.Time != medicines.FormatTime(now) {
		return false
	}
	return !m.TakenOn(medicines.FormatDate(now))
}
