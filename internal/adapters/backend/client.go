// Package backend es la capa de acceso remoto: traduce operaciones tipadas a
// intercambios GET/POST contra el único endpoint del backend.
//
// Todas las operaciones devuelven, como error, un *httpclient.Failure
// ({success:false, message}). Nunca hay panics ni otros tipos de error, y no
// hay reintentos ni cache: cada llamada va al backend.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medication-reminder/internal/platform/httpclient"
	"medication-reminder/internal/platform/logger"
)

// Action tags del contrato con el backend.
const (
	ActionCreateUser              = "createUser"
	ActionAuthenticateUser        = "authenticateUser"
	ActionAddMedicine             = "addMedicine"
	ActionUpdateMedicine          = "updateMedicine"
	ActionDeleteMedicine          = "deleteMedicine"
	ActionGetMedicinesByPatient   = "getMedicinesByPatient"
	ActionGetMedicinesByCaregiver = "getMedicinesByCaregiver"
	ActionGetPatientsByCaregiver  = "getPatientsByCaregiver"
	ActionMarkMedicineAsTaken     = "markMedicineAsTaken"
	ActionUploadVoiceFile         = "uploadVoiceFile"
	ActionGetVoiceFile            = "getVoiceFile"
	ActionDeleteVoiceFile         = "deleteVoiceFile"
)

var ErrEndpointRequired = errors.New("backend endpoint required")

// Config se pasa explícita al construir el cliente; no hay singleton global.
type Config struct {
	Endpoint string
	Timeout  time.Duration // 0 => httpclient.DefaultTimeout (30s)

	// Opacos: se aceptan y se reenvían, nunca se interpretan.
	SpreadsheetID string
	VoiceFolderID string

	Logger    logger.Logger
	Transport http.RoundTripper // opcional (tests)
}

type Client struct {
	http *httpclient.Client
	log  logger.Logger

	spreadsheetID string
	voiceFolderID string

	now func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrEndpointRequired
	}

	hc, err := httpclient.NewWithBaseURL(cfg.Endpoint, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if cfg.Transport != nil {
		hc.HTTP.Transport = cfg.Transport
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	hc.Log = log.With(map[string]any{"component": "backend-client"})

	return &Client{
		http:          hc,
		log:           hc.Log,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		voiceFolderID: strings.TrimSpace(cfg.VoiceFolderID),
		now:           time.Now,
	}, nil
}

// SpreadsheetID devuelve el identificador de almacenamiento tal como se configuró.
func (c *Client) SpreadsheetID() string { return c.spreadsheetID }

// Get es la primitiva de lectura. Ver httpclient.Client.Get.
func (c *Client) Get(ctx context.Context, action string, params map[string]string) (json.RawMessage, error) {
	return c.http.Get(ctx, action, params)
}

// Post es la primitiva de mutación. Ver httpclient.Client.Post.
func (c *Client) Post(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	return c.http.Post(ctx, action, payload)
}

// Reply es el sobre de éxito de las mutaciones.
type Reply struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

// post hace Post y decodifica el sobre de respuesta. Un body que no es objeto
// (p.ej. true o null) se toma como éxito sin datos.
func (c *Client) post(ctx context.Context, action string, payload any) (Reply, error) {
	raw, err := c.Post(ctx, action, payload)
	if err != nil {
		return Reply{}, err
	}
	return decodeReply(raw, action)
}

func decodeReply(raw json.RawMessage, action string) (Reply, error) {
	out := Reply{Success: true}
	if len(raw) == 0 || raw[0] != '{' {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Reply{}, httpclient.Fail(httpclient.KindDecode, "decode %s reply: %v", action, err)
	}
	// success ausente => éxito (el rechazo ya lo filtró httpclient)
	out.Success = true
	return out, nil
}

// decodeList devuelve siempre un slice no-nil. null, objetos y escalares cuentan como "sin datos";
// los elementos que no decodifican se saltan.
func decodeList[T any](c *Client, raw json.RawMessage, action string) []T {
	out := make([]T, 0)
	if len(raw) == 0 || raw[0] != '[' {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Warn("unusable list response", map[string]any{"action": action, "error": err})
		return out
	}

	for i, it := range items {
		var v T
		if err := json.Unmarshal(it, &v); err != nil {
			c.log.Warn("skipping malformed record", map[string]any{"action": action, "index": i, "error": err})
			continue
		}
		if w, ok := any(v).(interface{ Warnings() []string }); ok {
			for _, msg := range w.Warnings() {
				c.log.Warn("record field defaulted", map[string]any{"action": action, "index": i, "warning": msg})
			}
		}
		out = append(out, v)
	}
	return out
}
