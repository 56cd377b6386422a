package medicines

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medicine not found")
)

// Service es el lado backend de las medicinas (lo usa el backend de referencia).
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Create(ctx context.Context, m Medicine) (Medicine, error) {
	m, err := normalize(m)
	if err != nil {
		return Medicine{}, err
	}

	m.ID = uuid.NewString()
	m.TakenDates = []string{}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medicine{}, err
	}
	return m, nil
}

// Update reemplaza la medicina completa salvo TakenDates, que solo cambia con MarkTaken.
// Last write wins: no hay control de concurrencia optimista.
func (s *Service) Update(ctx context.Context, m Medicine) (Medicine, error) {
	m.ID = strings.TrimSpace(m.ID)
	if m.ID == "" {
		return Medicine{}, ErrInvalidInput
	}
	m, err := normalize(m)
	if err != nil {
		return Medicine{}, err
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return Medicine{}, err
	}
	return s.repo.GetByID(ctx, m.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Medicine, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) ListByPatient(ctx context.Context, patientEmail string) ([]Medicine, error) {
	patientEmail = normalizeEmail(patientEmail)
	if patientEmail == "" {
		return []Medicine{}, nil
	}
	return s.repo.ListByPatient(ctx, patientEmail)
}

func (s *Service) ListByCaregiver(ctx context.Context, caregiverEmail string) ([]Medicine, error) {
	caregiverEmail = normalizeEmail(caregiverEmail)
	if caregiverEmail == "" {
		return []Medicine{}, nil
	}
	return s.repo.ListByCaregiver(ctx, caregiverEmail)
}

// MarkTaken agrega date a TakenDates una sola vez y descuenta stock solo en esa primera marca.
// Repetir la llamada el mismo día es un no-op.
func (s *Service) MarkTaken(ctx context.Context, id, date string) (Medicine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medicine{}, ErrInvalidInput
	}

	date = strings.TrimSpace(date)
	if date == "" {
		date = FormatDate(s.now())
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Medicine{}, ErrInvalidInput
	}

	return s.repo.MarkTaken(ctx, id, date)
}

func normalize(m Medicine) (Medicine, error) {
	m.PatientEmail = normalizeEmail(m.PatientEmail)
	m.CaregiverEmail = normalizeEmail(m.CaregiverEmail)
	m.Name = strings.TrimSpace(m.Name)
	m.Instructions = strings.TrimSpace(m.Instructions)
	m.VoiceFileID = strings.TrimSpace(m.VoiceFileID)

	// Una medicina nunca apunta a un paciente sin cuidador.
	if m.PatientEmail == "" || m.CaregiverEmail == "" || m.Name == "" {
		return Medicine{}, ErrInvalidInput
	}
	if m.Stock < 0 {
		return Medicine{}, ErrInvalidInput
	}

	t, err := NormalizeTime(m.Time)
	if err != nil {
		return Medicine{}, ErrInvalidInput
	}
	m.Time = t

	if m.Schedule.Type == "" {
		m.Schedule.Type = ScheduleDaily
	}
	return m, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
