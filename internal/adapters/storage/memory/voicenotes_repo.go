package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"medication-reminder/internal/domain/voicenotes"
)

type voiceNoteRepo struct {
	mu   sync.RWMutex
	byID map[string]voicenotes.Note
}

func NewVoiceNoteRepo() voicenotes.Repository {
	return &voiceNoteRepo{
		byID: make(map[string]voicenotes.Note),
	}
}

func (r *voiceNoteRepo) Create(ctx context.Context, n voicenotes.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		return errors.New("voice note id required")
	}
	if _, exists := r.byID[n.ID]; exists {
		return errors.New("voice note already exists")
	}
	n.Data = append([]byte(nil), n.Data...)
	r.byID[n.ID] = n
	return nil
}

func (r *voiceNoteRepo) GetByID(ctx context.Context, id string) (voicenotes.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byID[id]
	if !ok {
		return voicenotes.Note{}, voicenotes.ErrNotFound
	}
	n.Data = append([]byte(nil), n.Data...)
	return n, nil
}

func (r *voiceNoteRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return voicenotes.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
