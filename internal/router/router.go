package router

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	_ "medication-reminder/docs"

	mem "medication-reminder/internal/adapters/storage/memory"
	pg "medication-reminder/internal/adapters/storage/postgres"
	"medication-reminder/internal/domain/medicines"
	"medication-reminder/internal/domain/users"
	"medication-reminder/internal/domain/voicenotes"
	"medication-reminder/internal/middleware"
	"medication-reminder/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory. El router no la cierra.
	DB *sql.DB

	Logger logger.Logger

	// PublicURL es la base para armar URLs de descarga de notas de voz.
	// Vacío => se deriva del Host del request.
	PublicURL string
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		userRepo  users.Repository
		medRepo   medicines.Repository
		notesRepo voicenotes.Repository
	)

	// La DB la abre y la cierra quien llama (cmd/reminder); acá solo se usa.
	db := opts.DB
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.EnsureSchema(ctx, db); err != nil {
			log.Error("ensure schema failed", map[string]any{"error": err})
		}
		cancel()

		userRepo = pg.NewUsersRepo(db)
		medRepo = pg.NewMedicinesRepo(db)
		notesRepo = pg.NewVoiceNotesRepo(db)
	} else {
		userRepo = mem.NewUserRepo()
		medRepo = mem.NewMedicineRepo()
		notesRepo = mem.NewVoiceNoteRepo()
	}

	ex := &executor{
		users:     users.NewService(userRepo),
		medicines: medicines.NewService(medRepo),
		notes:     voicenotes.NewService(notesRepo),
		publicURL: strings.TrimRight(strings.TrimSpace(opts.PublicURL), "/"),
		log:       log,
	}

	r.Get("/exec", ex.serveGet)
	r.Post("/exec", ex.servePost)
	r.Get("/files/{fileID}", ex.serveFile)

	return r
}
