package medicines

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID  map[string]Medicine
	order []string
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Medicine{}}
}

func (r *testRepo) Create(ctx context.Context, m Medicine) error {
	if _, ok := r.byID[m.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[m.ID] = m
	r.order = append(r.order, m.ID)
	return nil
}

func (r *testRepo) Update(ctx context.Context, m Medicine) error {
	current, ok := r.byID[m.ID]
	if !ok {
		return ErrNotFound
	}
	m.TakenDates = current.TakenDates
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) MarkTaken(ctx context.Context, id, date string) (Medicine, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medicine{}, ErrNotFound
	}
	if m.ApplyTaken(date) {
		r.byID[id] = m
	}
	return m, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Medicine, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medicine{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, email string) ([]Medicine, error) {
	out := make([]Medicine, 0)
	for _, id := range r.order {
		if m, ok := r.byID[id]; ok && m.PatientEmail == email {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) ListByCaregiver(ctx context.Context, email string) ([]Medicine, error) {
	out := make([]Medicine, 0)
	for _, id := range r.order {
		if m, ok := r.byID[id]; ok && m.CaregiverEmail == email {
			out = append(out, m)
		}
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func validMedicine() Medicine {
	return Medicine{
		PatientEmail:   "Ana@Example.com",
		CaregiverEmail: "bob@example.com",
		Name:           " Enalapril ",
		Time:           "8:30",
		Stock:          2,
	}
}

func TestService_Create_NormalizesAndAssignsID(t *testing.T) {
	svc := NewService(newTestRepo())

	m, err := svc.Create(context.Background(), validMedicine())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if m.ID == "" {
		t.Fatalf("expected id")
	}
	if m.PatientEmail != "ana@example.com" || m.Name != "Enalapril" || m.Time != "08:30" {
		t.Fatalf("not normalized: %#v", m)
	}
	if m.Schedule.Type != ScheduleDaily {
		t.Fatalf("expected default daily, got %s", m.Schedule.Type)
	}
}

func TestService_Create_RequiresCaregiver(t *testing.T) {
	svc := NewService(newTestRepo())

	in := validMedicine()
	in.CaregiverEmail = ""
	if _, err := svc.Create(context.Background(), in); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_MarkTaken_IdempotentPerDay(t *testing.T) {
	svc := NewService(newTestRepo())
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local) }

	m, err := svc.Create(context.Background(), validMedicine())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	first, err := svc.MarkTaken(context.Background(), m.ID, "")
	if err != nil {
		t.Fatalf("MarkTaken #1 error: %v", err)
	}
	second, err := svc.MarkTaken(context.Background(), m.ID, "2024-03-10")
	if err != nil {
		t.Fatalf("MarkTaken #2 error: %v", err)
	}

	if len(second.TakenDates) != 1 || second.TakenDates[0] != "2024-03-10" {
		t.Fatalf("expected a single taken date, got %#v", second.TakenDates)
	}
	if first.Stock != 1 || second.Stock != 1 {
		t.Fatalf("stock must drop once, got %d then %d", first.Stock, second.Stock)
	}

	// otro día descuenta de nuevo, pero nunca por debajo de 0
	third, _ := svc.MarkTaken(context.Background(), m.ID, "2024-03-11")
	fourth, _ := svc.MarkTaken(context.Background(), m.ID, "2024-03-12")
	if third.Stock != 0 || fourth.Stock != 0 {
		t.Fatalf("unexpected stock %d / %d", third.Stock, fourth.Stock)
	}
}

func TestService_MarkTaken_RejectsBadDate(t *testing.T) {
	svc := NewService(newTestRepo())
	m, _ := svc.Create(context.Background(), validMedicine())

	if _, err := svc.MarkTaken(context.Background(), m.ID, "10/03/2024"); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Update_KeepsTakenDates(t *testing.T) {
	svc := NewService(newTestRepo())
	m, _ := svc.Create(context.Background(), validMedicine())
	_, _ = svc.MarkTaken(context.Background(), m.ID, "2024-03-10")

	in := validMedicine()
	in.ID = m.ID
	in.Name = "Enalapril 10mg"
	in.Schedule = OnWeekdays(time.Monday)

	updated, err := svc.Update(context.Background(), in)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Name != "Enalapril 10mg" || updated.Schedule.Type != ScheduleSpecificDays {
		t.Fatalf("update not applied: %#v", updated)
	}
	if !updated.TakenOn("2024-03-10") {
		t.Fatalf("update must not wipe taken dates")
	}
}

func TestService_Update_UnknownID(t *testing.T) {
	svc := NewService(newTestRepo())
	in := validMedicine()
	in.ID = "missing"
	if _, err := svc.Update(context.Background(), in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
