package medicines

import "context"

type Repository interface {
	Create(ctx context.Context, m Medicine) error
	// Update no toca TakenDates: las tomas solo cambian vía MarkTaken.
	Update(ctx context.Context, m Medicine) error
	// MarkTaken aplica Medicine.ApplyTaken de forma atómica y devuelve el estado resultante.
	MarkTaken(ctx context.Context, id, date string) (Medicine, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Medicine, error)
	ListByPatient(ctx context.Context, patientEmail string) ([]Medicine, error)
	ListByCaregiver(ctx context.Context, caregiverEmail string) ([]Medicine, error)
}
