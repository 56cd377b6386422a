package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"medication-reminder/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			email, name, role,
			caregiver_email, password_hash,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		u.Email,
		u.Name,
		string(u.Role),
		u.CaregiverEmail,
		u.PasswordHash,
		u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return users.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return users.User{}, users.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT email, name, role, caregiver_email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) ListPatientsByCaregiver(ctx context.Context, caregiverEmail string) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT email, name, role, caregiver_email, password_hash, created_at
		FROM users
		WHERE role = $1 AND caregiver_email = $2
		ORDER BY created_at ASC, email ASC
	`, string(users.RolePatient), caregiverEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(s rowScanner) (users.User, error) {
	var u users.User
	var role string
	if err := s.Scan(
		&u.Email,
		&u.Name,
		&role,
		&u.CaregiverEmail,
		&u.PasswordHash,
		&u.CreatedAt,
	); err != nil {
		return users.User{}, err
	}
	u.Role = users.Role(role)
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
