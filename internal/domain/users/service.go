package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

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

type RegisterInput struct {
	Role           Role
	Email          string
	Name           string
	PasswordHash   string
	CaregiverEmail string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	hash := strings.TrimSpace(in.PasswordHash)

	if email == "" || name == "" || hash == "" || !in.Role.Valid() {
		return User{}, ErrInvalidInput
	}

	caregiver := ""
	if in.Role == RolePatient {
		// Un paciente siempre tiene cuidador dueño.
		caregiver = NormalizeEmail(in.CaregiverEmail)
		if caregiver == "" || caregiver == email {
			return User{}, ErrInvalidInput
		}
		cg, err := s.repo.GetByEmail(ctx, caregiver)
		if err != nil || cg.Role != RoleCaregiver {
			return User{}, ErrInvalidInput
		}
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	}

	u := User{
		Email:          email,
		Name:           name,
		Role:           in.Role,
		CaregiverEmail: caregiver,
		PasswordHash:   hash,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate compara digests en tiempo constante. Cualquier falla es ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, passwordHash string) (User, error) {
	email = NormalizeEmail(email)
	passwordHash = strings.TrimSpace(passwordHash)
	if email == "" || passwordHash == "" {
		return User{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(passwordHash)) != 1 {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) ListPatients(ctx context.Context, caregiverEmail string) ([]User, error) {
	caregiverEmail = NormalizeEmail(caregiverEmail)
	if caregiverEmail == "" {
		return []User{}, nil
	}
	return s.repo.ListPatientsByCaregiver(ctx, caregiverEmail)
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
