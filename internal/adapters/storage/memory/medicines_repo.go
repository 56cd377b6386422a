package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"medication-reminder/internal/domain/medicines"
)

type medicineRepo struct {
	mu    sync.RWMutex
	byID  map[string]medicines.Medicine
	order []string // orden de alta: es el orden que ve el motor de alertas
}

func NewMedicineRepo() medicines.Repository {
	return &medicineRepo{
		byID: make(map[string]medicines.Medicine),
	}
}

func (r *medicineRepo) Create(ctx context.Context, m medicines.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medicine id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("medicine already exists")
	}
	r.byID[m.ID] = clone(m)
	r.order = append(r.order, m.ID)
	return nil
}

func (r *medicineRepo) Update(ctx context.Context, m medicines.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.byID[m.ID]
	if !exists {
		return medicines.ErrNotFound
	}
	m = clone(m)
	m.TakenDates = current.TakenDates
	r.byID[m.ID] = m
	return nil
}

// MarkTaken lee y escribe bajo el mismo lock: dos marcas simultáneas no descuentan dos veces.
func (r *medicineRepo) MarkTaken(ctx context.Context, id, date string) (medicines.Medicine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return medicines.Medicine{}, medicines.ErrNotFound
	}
	if m.ApplyTaken(date) {
		r.byID[id] = m
	}
	return clone(m), nil
}

func (r *medicineRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return medicines.ErrNotFound
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

func (r *medicineRepo) GetByID(ctx context.Context, id string) (medicines.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return medicines.Medicine{}, medicines.ErrNotFound
	}
	return clone(m), nil
}

func (r *medicineRepo) ListByPatient(ctx context.Context, patientEmail string) ([]medicines.Medicine, error) {
	return r.list(func(m medicines.Medicine) bool { return m.PatientEmail == patientEmail }), nil
}

func (r *medicineRepo) ListByCaregiver(ctx context.Context, caregiverEmail string) ([]medicines.Medicine, error) {
	return r.list(func(m medicines.Medicine) bool { return m.CaregiverEmail == caregiverEmail }), nil
}

func (r *medicineRepo) list(keep func(medicines.Medicine) bool) []medicines.Medicine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medicines.Medicine, 0)
	for _, id := range r.order {
		m := r.byID[id]
		if keep(m) {
			out = append(out, clone(m))
		}
	}
	return out
}

// clone evita que el caller comparta slices con el repo.
func clone(m medicines.Medicine) medicines.Medicine {
	m.Schedule.Days = slices.Clone(m.Schedule.Days)
	m.Schedule.Dates = slices.Clone(m.Schedule.Dates)
	m.TakenDates = slices.Clone(m.TakenDates)
	return m
}
