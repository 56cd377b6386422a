package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"medication-reminder/internal/domain/medicines"
)

type MedicinesRepo struct {
	db *sql.DB
}

func NewMedicinesRepo(db *sql.DB) *MedicinesRepo {
	return &MedicinesRepo{db: db}
}

const medicineColumns = `
	id, patient_email, caregiver_email,
	name, dose_time, schedule_type,
	selected_days, one_time_date, custom_dates,
	stock, instructions, voice_file_id,
	taken_dates`

func (r *MedicinesRepo) Create(ctx context.Context, m medicines.Medicine) error {
	rec := medicines.ToRecord(m)
	days, dates, taken, err := encodeLists(rec)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO medicines (`+medicineColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		rec.ID,
		rec.PatientEmail,
		rec.CaregiverEmail,
		rec.Name,
		rec.Time,
		rec.ScheduleType,
		days,
		rec.OneTimeDate,
		dates,
		int(rec.Stock),
		rec.Instructions,
		rec.VoiceFileID,
		taken,
	)
	return err
}

func (r *MedicinesRepo) Update(ctx context.Context, m medicines.Medicine) error {
	rec := medicines.ToRecord(m)
	days, dates, _, err := encodeLists(rec)
	if err != nil {
		return err
	}

	// taken_dates queda fuera: solo lo escribe MarkTaken.
	res, err := r.db.ExecContext(ctx, `
		UPDATE medicines
		SET
			patient_email = $2,
			caregiver_email = $3,
			name = $4,
			dose_time = $5,
			schedule_type = $6,
			selected_days = $7,
			one_time_date = $8,
			custom_dates = $9,
			stock = $10,
			instructions = $11,
			voice_file_id = $12
		WHERE id = $1
	`,
		rec.ID,
		rec.PatientEmail,
		rec.CaregiverEmail,
		rec.Name,
		rec.Time,
		rec.ScheduleType,
		days,
		rec.OneTimeDate,
		dates,
		int(rec.Stock),
		rec.Instructions,
		rec.VoiceFileID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medicines.ErrNotFound
	}
	return nil
}

// MarkTaken bloquea la fila (FOR UPDATE) entre la lectura y la escritura.
func (r *MedicinesRepo) MarkTaken(ctx context.Context, id, date string) (medicines.Medicine, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return medicines.Medicine{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1 FOR UPDATE`, id)
	m, err := scanMedicine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medicines.Medicine{}, medicines.ErrNotFound
		}
		return medicines.Medicine{}, err
	}

	if !m.ApplyTaken(date) {
		return m, tx.Commit()
	}

	_, _, taken, err := encodeLists(medicines.ToRecord(m))
	if err != nil {
		return medicines.Medicine{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE medicines SET stock = $2, taken_dates = $3 WHERE id = $1`,
		id, m.Stock, taken,
	); err != nil {
		return medicines.Medicine{}, err
	}
	if err := tx.Commit(); err != nil {
		return medicines.Medicine{}, err
	}
	return m, nil
}

func (r *MedicinesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medicines.ErrNotFound
	}
	return nil
}

func (r *MedicinesRepo) GetByID(ctx context.Context, id string) (medicines.Medicine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medicines.Medicine{}, medicines.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id)
	m, err := scanMedicine(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return medicines.Medicine{}, medicines.ErrNotFound
		}
		return medicines.Medicine{}, err
	}
	return m, nil
}

func (r *MedicinesRepo) ListByPatient(ctx context.Context, patientEmail string) ([]medicines.Medicine, error) {
	return r.list(ctx, `patient_email`, patientEmail)
}

func (r *MedicinesRepo) ListByCaregiver(ctx context.Context, caregiverEmail string) ([]medicines.Medicine, error) {
	return r.list(ctx, `caregiver_email`, caregiverEmail)
}

// list ordena por seq: el orden de alta define la prioridad de las alertas.
func (r *MedicinesRepo) list(ctx context.Context, column, email string) ([]medicines.Medicine, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return []medicines.Medicine{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicineColumns+`
		FROM medicines
		WHERE `+column+` = $1
		ORDER BY seq ASC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medicines.Medicine, 0)
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedicine(s rowScanner) (medicines.Medicine, error) {
	var rec medicines.Record
	var stock int
	var days, dates, taken string
	if err := s.Scan(
		&rec.ID,
		&rec.PatientEmail,
		&rec.CaregiverEmail,
		&rec.Name,
		&rec.Time,
		&rec.ScheduleType,
		&days,
		&rec.OneTimeDate,
		&dates,
		&stock,
		&rec.Instructions,
		&rec.VoiceFileID,
		&taken,
	); err != nil {
		return medicines.Medicine{}, err
	}
	rec.Stock = medicines.Count(stock)

	// Mismo decoder tolerante que el cable.
	if err := json.Unmarshal([]byte(days), &rec.SelectedDays); err != nil {
		return medicines.Medicine{}, fmt.Errorf("selected_days: %w", err)
	}
	if err := json.Unmarshal([]byte(dates), &rec.CustomDates); err != nil {
		return medicines.Medicine{}, fmt.Errorf("custom_dates: %w", err)
	}
	if err := json.Unmarshal([]byte(taken), &rec.TakenDates); err != nil {
		return medicines.Medicine{}, fmt.Errorf("taken_dates: %w", err)
	}

	return rec.Medicine(), nil
}

func encodeLists(rec medicines.Record) (days, dates, taken string, err error) {
	b1, err := json.Marshal(rec.SelectedDays)
	if err != nil {
		return "", "", "", err
	}
	b2, err := json.Marshal(rec.CustomDates)
	if err != nil {
		return "", "", "", err
	}
	b3, err := json.Marshal(rec.TakenDates)
	if err != nil {
		return "", "", "", err
	}
	return string(b1), string(b2), string(b3), nil
}
