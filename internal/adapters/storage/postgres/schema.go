package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Las listas (días, fechas) se guardan como JSON en TEXT, igual que en la planilla original.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		email           TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		role            TEXT NOT NULL,
		caregiver_email TEXT NOT NULL DEFAULT '',
		password_hash   TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS users_caregiver_idx ON users (caregiver_email)`,
	`CREATE TABLE IF NOT EXISTS medicines (
		id              TEXT PRIMARY KEY,
		patient_email   TEXT NOT NULL,
		caregiver_email TEXT NOT NULL,
		name            TEXT NOT NULL,
		dose_time       TEXT NOT NULL,
		schedule_type   TEXT NOT NULL,
		selected_days   TEXT NOT NULL DEFAULT '[]',
		one_time_date   TEXT NOT NULL DEFAULT '',
		custom_dates    TEXT NOT NULL DEFAULT '[]',
		stock           INTEGER NOT NULL DEFAULT 0,
		instructions    TEXT NOT NULL DEFAULT '',
		voice_file_id   TEXT NOT NULL DEFAULT '',
		taken_dates     TEXT NOT NULL DEFAULT '[]',
		seq             BIGSERIAL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS medicines_patient_idx ON medicines (patient_email)`,
	`CREATE INDEX IF NOT EXISTS medicines_caregiver_idx ON medicines (caregiver_email)`,
	`CREATE TABLE IF NOT EXISTS voice_notes (
		id         TEXT PRIMARY KEY,
		file_name  TEXT NOT NULL,
		mime_type  TEXT NOT NULL,
		folder_id  TEXT NOT NULL DEFAULT '',
		data       BYTEA NOT NULL,
		size       BIGINT NOT NULL,
		hash       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema crea las tablas si no existen. Es idempotente.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema step %d: %w", i, err)
		}
	}
	return nil
}
