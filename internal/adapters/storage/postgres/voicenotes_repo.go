package postgres

import (
	"context"
	"database/sql"
	"strings"

	"medication-reminder/internal/domain/voicenotes"
)

type VoiceNotesRepo struct {
	db *sql.DB
}

func NewVoiceNotesRepo(db *sql.DB) *VoiceNotesRepo {
	return &VoiceNotesRepo{db: db}
}

func (r *VoiceNotesRepo) Create(ctx context.Context, n voicenotes.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO voice_notes (
			id, file_name, mime_type, folder_id,
			data, size, hash,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		n.ID,
		n.FileName,
		n.MimeType,
		n.FolderID,
		n.Data,
		n.Size,
		n.Hash,
		n.CreatedAt,
	)
	return err
}

func (r *VoiceNotesRepo) GetByID(ctx context.Context, id string) (voicenotes.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return voicenotes.Note{}, voicenotes.ErrNotFound
	}

	var n voicenotes.Note
	err := r.db.QueryRowContext(ctx, `
		SELECT id, file_name, mime_type, folder_id, data, size, hash, created_at
		FROM voice_notes
		WHERE id = $1
	`, id).Scan(
		&n.ID,
		&n.FileName,
		&n.MimeType,
		&n.FolderID,
		&n.Data,
		&n.Size,
		&n.Hash,
		&n.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return voicenotes.Note{}, voicenotes.ErrNotFound
		}
		return voicenotes.Note{}, err
	}
	return n, nil
}

func (r *VoiceNotesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM voice_notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return voicenotes.ErrNotFound
	}
	return nil
}
