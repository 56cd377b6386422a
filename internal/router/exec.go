package router

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"medication-reminder/internal/domain/medicines"
	"medication-reminder/internal/domain/users"
	"medication-reminder/internal/domain/voicenotes"
	"medication-reminder/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// base64 de MaxSize + JSON alrededor.
const maxExecBody = 40 << 20

type executor struct {
	users     *users.Service
	medicines *medicines.Service
	notes     *voicenotes.Service

	publicURL string
	log       logger.Logger
}

type actionFunc func(w http.ResponseWriter, r *http.Request, body json.RawMessage)

type userResponse struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	CaregiverEmail string `json:"caregiverEmail,omitempty"`
}

func toUserResponse(u users.User) userResponse {
	return userResponse{
		Email:          u.Email,
		Name:           u.Name,
		Role:           string(u.Role),
		CaregiverEmail: u.CaregiverEmail,
	}
}

// serveGet godoc
// @Summary Ejecuta una acción de lectura
// @Tags exec
// @Produce json
// @Param action query string true "getMedicinesByPatient | getMedicinesByCaregiver | getPatientsByCaregiver | getVoiceFile"
// @Success 200 {object} any
// @Failure 400 {object} any
// @Router /exec [get]
func (e *executor) serveGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("action") {
	case "getMedicinesByPatient":
		list, err := e.medicines.ListByPatient(r.Context(), q.Get("patientEmail"))
		if err != nil {
			e.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecords(list))

	case "getMedicinesByCaregiver":
		list, err := e.medicines.ListByCaregiver(r.Context(), q.Get("caregiverEmail"))
		if err != nil {
			e.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecords(list))

	case "getPatientsByCaregiver":
		list, err := e.users.ListPatients(r.Context(), q.Get("caregiverEmail"))
		if err != nil {
			e.fail(w, err)
			return
		}
		out := make([]userResponse, 0, len(list))
		for _, u := range list {
			out = append(out, toUserResponse(u))
		}
		writeJSON(w, http.StatusOK, out)

	case "getVoiceFile":
		id := strings.TrimSpace(q.Get("fileId"))
		if _, err := e.notes.Get(r.Context(), id); err != nil {
			e.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"url":     e.baseURL(r) + "/files/" + id,
		})

	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "unknown action"})
	}
}

// servePost godoc
// @Summary Ejecuta una acción de mutación
// @Tags exec
// @Accept json
// @Produce json
// @Param action query string true "createUser | authenticateUser | addMedicine | updateMedicine | deleteMedicine | markMedicineAsTaken | uploadVoiceFile | deleteVoiceFile"
// @Success 200 {object} any
// @Failure 400 {object} any
// @Router /exec [post]
func (e *executor) servePost(w http.ResponseWriter, r *http.Request) {
	actions := map[string]actionFunc{
		"createUser":          e.createUser,
		"authenticateUser":    e.authenticateUser,
		"addMedicine":         e.addMedicine,
		"updateMedicine":      e.updateMedicine,
		"deleteMedicine":      e.deleteMedicine,
		"markMedicineAsTaken": e.markTaken,
		"uploadVoiceFile":     e.uploadVoiceFile,
		"deleteVoiceFile":     e.deleteVoiceFile,
	}

	h, ok := actions[r.URL.Query().Get("action")]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "unknown action"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxExecBody)
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid json"})
		return
	}
	h(w, r, body)
}

func (e *executor) createUser(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var req struct {
		Role           string `json:"role"`
		Email          string `json:"email"`
		Name           string `json:"name"`
		Password       string `json:"password"`
		CaregiverEmail string `json:"caregiverEmail"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		e.fail(w, invalidBody(users.ErrInvalidInput, err))
		return
	}

	u, err := e.users.Register(r.Context(), users.RegisterInput{
		Role:           users.Role(strings.TrimSpace(req.Role)),
		Email:          req.Email,
		Name:           req.Name,
		PasswordHash:   req.Password,
		CaregiverEmail: req.CaregiverEmail,
	})
	if err != nil {
		e.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": u.Email})
}

func (e *executor) authenticateUser(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		e.fail(w, invalidBody(users.ErrInvalidInput, err))
		return
	}

	u, err := e.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		e.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toUserResponse(u)})
}

func (e *executor) addMedicine(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var rec medicines.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		e.fail(w, invalidBody(medicines.ErrInvalidInput, err))
		return
	}

	m, err := e.medicines.Create(r.Context(), rec.Medicine())
	if err != nil {
		e.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": m.ID})
}

func (e *executor) updateMedicine(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var rec medicines.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		e.fail(w, invalidBody(medicines.ErrInvalidInput, err))
		return
	}

	m, err := e.medicines.Update(r.Context(), rec.Medicine())
	if err != nil {
		e.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": m.ID})
}

func (e *executor) deleteMedicine(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		e.fail(w, invalidBody(medicines.ErrInvalidInput, err))
		return
	}

	if err := e.medicines.Delete(r.Context(), req.ID); err != nil {
		e.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (e *executor) markTaken(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var req struct {
		ID   string `json:"id"`
		Date string `json:"date"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		e.fail(w, invalidBody(medicines.ErrInvalidInput, err))
		return
	}

	m, err := e.medicines.MarkTaken(r.Context(), req.ID, req.Date)
	if err != nil {
		e.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": m.ID})
}

func (e *executor) uploadVoiceFile(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var req struct {
		FileName string `json:"fileName"`
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
		FolderID string `json:"folderId"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		e.fail(w, invalidBody(voicenotes.ErrInvalidInput, err))
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		e.fail(w, fmt.Errorf("%w: data is not base64: %v", voicenotes.ErrInvalidInput, err))
		return
	}

	n, err := e.notes.Save(r.Context(), voicenotes.SaveInput{
		FileName: req.FileName,
		MimeType: req.MimeType,
		FolderID: req.FolderID,
		Data:     data,
	})
	if err != nil {
		e.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": n.ID})
}

func (e *executor) deleteVoiceFile(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var req struct {
		FileID string `json:"fileId"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		e.fail(w, invalidBody(voicenotes.ErrInvalidInput, err))
		return
	}

	if err := e.notes.Delete(r.Context(), req.FileID); err != nil {
		e.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// serveFile godoc
// @Summary Descarga el audio de una nota de voz
// @Tags files
// @Produce octet-stream
// @Param fileID path string true "id de la nota"
// @Success 200 {file} binary
// @Failure 404 {object} any
// @Router /files/{fileID} [get]
func (e *executor) serveFile(w http.ResponseWriter, r *http.Request) {
	n, err := e.notes.Get(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		if errors.Is(err, voicenotes.ErrNotFound) || errors.Is(err, voicenotes.ErrInvalidInput) {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": voicenotes.ErrNotFound.Error()})
			return
		}
		e.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", n.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(n.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(n.Data)
}

// fail mapea errores de dominio al sobre {success:false}. Los rechazos van con 200,
// como los devuelve el backend productivo; lo inesperado es 500.
func (e *executor) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrInvalidInput),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, users.ErrInvalidCredentials),
		errors.Is(err, medicines.ErrInvalidInput),
		errors.Is(err, medicines.ErrNotFound),
		errors.Is(err, voicenotes.ErrInvalidInput),
		errors.Is(err, voicenotes.ErrNotFound),
		errors.Is(err, voicenotes.ErrTooLarge):
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": err.Error()})
	default:
		e.log.Error("exec failed", map[string]any{"error": err})
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "internal error"})
	}
}

// invalidBody conserva el sentinel (para fail) y agrega la causa al mensaje.
func invalidBody(sentinel, err error) error {
	return fmt.Errorf("%w: %v", sentinel, err)
}

func (e *executor) baseURL(r *http.Request) string {
	if e.publicURL != "" {
		return e.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func toRecords(list []medicines.Medicine) []medicines.Record {
	out := make([]medicines.Record, 0, len(list))
	for _, m := range list {
		out = append(out, medicines.ToRecord(m))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
