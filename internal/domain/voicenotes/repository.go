package voicenotes

import "context"

type Repository interface {
	Create(ctx context.Context, n Note) error
	GetByID(ctx context.Context, id string) (Note, error)
	Delete(ctx context.Context, id string) error
}
