package users

import (
	"context"
	"testing"
	"time"
)

type testRepo struct {
	byEmail map[string]User
	order   []string
}

func newTestRepo() *testRepo {
	return &testRepo{byEmail: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	r.byEmail[u.Email] = u
	r.order = append(r.order, u.Email)
	return nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) ListPatientsByCaregiver(ctx context.Context, caregiverEmail string) ([]User, error) {
	out := make([]User, 0)
	for _, e := range r.order {
		u := r.byEmail[e]
		if u.Role == RolePatient && u.CaregiverEmail == caregiverEmail {
			out = append(out, u)
		}
	}
	return out, nil
}

const hashOfSecret = "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"

func newSvc() *Service {
	svc := NewService(newTestRepo())
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_Register_RejectsDuplicateEmail(t *testing.T) {
	svc := newSvc()
	in := RegisterInput{Role: RoleCaregiver, Email: "Bob@Example.com", Name: "Bob", PasswordHash: hashOfSecret}

	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register #1 error: %v", err)
	}
	in.Email = "bob@example.com "
	if _, err := svc.Register(context.Background(), in); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Register_PatientNeedsCaregiver(t *testing.T) {
	svc := newSvc()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Role: RolePatient, Email: "ana@example.com", Name: "Ana", PasswordHash: hashOfSecret})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput without caregiver, got %v", err)
	}

	_, _ = svc.Register(ctx, RegisterInput{Role: RoleCaregiver, Email: "bob@example.com", Name: "Bob", PasswordHash: hashOfSecret})
	p, err := svc.Register(ctx, RegisterInput{Role: RolePatient, Email: "ana@example.com", Name: "Ana", PasswordHash: hashOfSecret, CaregiverEmail: "BOB@example.com"})
	if err != nil {
		t.Fatalf("Register patient error: %v", err)
	}
	if p.CaregiverEmail != "bob@example.com" {
		t.Fatalf("unexpected caregiver %q", p.CaregiverEmail)
	}

	patients, err := svc.ListPatients(ctx, "bob@example.com")
	if err != nil || len(patients) != 1 || patients[0].Email != "ana@example.com" {
		t.Fatalf("unexpected patients %#v err=%v", patients, err)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := newSvc()
	ctx := context.Background()
	_, _ = svc.Register(ctx, RegisterInput{Role: RoleCaregiver, Email: "bob@example.com", Name: "Bob", PasswordHash: hashOfSecret})

	if _, err := svc.Authenticate(ctx, "BOB@example.com", hashOfSecret); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "bob@example.com", "deadbeef"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", hashOfSecret); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}
