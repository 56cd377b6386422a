package users

import "time"

// Role define el tipo de cuenta.
type Role string

const (
	RoleCaregiver Role = "caregiver"
	RolePatient   Role = "patient"
)

func (r Role) Valid() bool {
	return r == RoleCaregiver || r == RolePatient
}

// User se identifica por email. PasswordHash es el digest que manda el cliente;
// el texto plano nunca llega al backend.
type User struct {
	Email          string
	Name           string
	Role           Role
	CaregiverEmail string // solo pacientes

	PasswordHash string

	CreatedAt time.Time
}
