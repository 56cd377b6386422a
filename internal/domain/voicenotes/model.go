package voicenotes

import "time"

// MaxSize es el tamaño máximo de una nota de voz (bytes ya decodificados).
const MaxSize = 25 << 20

// Note es un audio guardado por el backend; el id lo asigna el backend.
type Note struct {
	ID       string
	FileName string
	MimeType string
	FolderID string // opaco, viene de la config del cliente

	Data []byte
	Size int64
	Hash string // sha256 hex

	CreatedAt time.Time
}
