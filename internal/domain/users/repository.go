package users

import "context"

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	ListPatientsByCaregiver(ctx context.Context, caregiverEmail string) ([]User, error)
}
