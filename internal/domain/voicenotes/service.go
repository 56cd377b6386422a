package voicenotes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("voice note not found")
	ErrTooLarge     = errors.New("voice note exceeds maximum size")
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

type SaveInput struct {
	FileName string
	MimeType string
	FolderID string
	Data     []byte
}

func (s *Service) Save(ctx context.Context, in SaveInput) (Note, error) {
	name := strings.TrimSpace(in.FileName)
	if name == "" || len(in.Data) == 0 {
		return Note{}, ErrInvalidInput
	}
	if len(in.Data) > MaxSize {
		return Note{}, ErrTooLarge
	}

	mime := strings.TrimSpace(in.MimeType)
	if mime == "" {
		mime = "application/octet-stream"
	}

	sum := sha256.Sum256(in.Data)
	n := Note{
		ID:        uuid.NewString(),
		FileName:  name,
		MimeType:  mime,
		FolderID:  strings.TrimSpace(in.FolderID),
		Data:      append([]byte(nil), in.Data...),
		Size:      int64(len(in.Data)),
		Hash:      hex.EncodeToString(sum[:]),
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, id string) (Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Note{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
