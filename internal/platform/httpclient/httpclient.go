package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medication-reminder/internal/platform/logger"
)

const (
	DefaultTimeout = 30 * time.Second

	maxJSONBody = 1 << 20 // 1MB

	// MaxFileBody es el máximo que acepta Fetch; subir algo más grande no tiene vuelta.
	MaxFileBody = 32 << 20
)

// errBodyTooLarge: el body pasó el límite. Nunca se devuelve truncado.
var errBodyTooLarge = errors.New("body too large")

// Client envuelve *http.Client contra un único endpoint de acciones.
// No guarda estado entre llamadas: es seguro usarlo desde varias goroutines.
type Client struct {
	HTTP    *http.Client
	BaseURL string // endpoint fijo; las acciones viajan en ?action=
	Log     logger.Logger
}

// New crea un Client con timeout razonable.
func New(timeout time.Duration) *Client {
	return NewWithTransport(timeout, nil)
}

// NewWithBaseURL crea un Client con BaseURL + timeout.
func NewWithBaseURL(baseURL string, timeout time.Duration) (*Client, error) {
	c := New(timeout)
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("httpclient: empty base url")
	}
	u, err := url.ParseRequestURI(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url: unsupported scheme %q", u.Scheme)
	}
	c.BaseURL = u.String()
	return c, nil
}

// NewWithTransport permite inyectar un Transport (p.ej. para tests).
func NewWithTransport(timeout time.Duration, tr http.RoundTripper) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if tr == nil {
		tr = http.DefaultTransport
	}
	return &Client{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		Log: logger.Nop(),
	}
}

// Get hace una consulta de solo lectura: action + params planos en la query.
// El error devuelto, si hay, es siempre *Failure.
func (c *Client) Get(ctx context.Context, action string, params map[string]string) (json.RawMessage, error) {
	fullURL, f := c.actionURL(action, params)
	if f != nil {
		return nil, f
	}
	return c.exchange(ctx, http.MethodGet, action, fullURL, nil)
}

// Post hace una mutación: action en la query y payload JSON en el body.
// El error devuelto, si hay, es siempre *Failure.
func (c *Client) Post(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	fullURL, f := c.actionURL(action, nil)
	if f != nil {
		return nil, f
	}

	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, Fail(KindInvalid, "marshal payload: %v", err)
		}
		body = b
	}
	return c.exchange(ctx, http.MethodPost, action, fullURL, body)
}

// Fetch descarga un recurso binario (p.ej. la URL que devuelve getVoiceFile).
// El body se cierra siempre, también en los caminos de error.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if c == nil || c.HTTP == nil {
		return nil, Fail(KindTransport, "httpclient: nil client")
	}
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, Fail(KindDecode, "invalid download url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, Fail(KindTransport, "new request: %v", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, c.warn(Fail(KindTransport, "download: %v", err), "fetch")
	}
	defer resp.Body.Close()

	data, err := readAtMost(resp.Body, MaxFileBody)
	if errors.Is(err, errBodyTooLarge) {
		return nil, c.warn(Fail(KindDecode, "response exceeds %d bytes", MaxFileBody), "fetch")
	}
	if err != nil {
		return nil, c.warn(Fail(KindTransport, "read download: %v", err), "fetch")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.warn(statusFailure(resp.StatusCode, data), "fetch")
	}
	return data, nil
}

func (c *Client) exchange(ctx context.Context, method, action, fullURL string, body []byte) (json.RawMessage, error) {
	if c == nil || c.HTTP == nil {
		return nil, Fail(KindTransport, "httpclient: nil client")
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, rdr)
	if err != nil {
		return nil, Fail(KindTransport, "new request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, c.warn(Fail(KindTransport, "%s %s: %v", method, action, err), action)
	}
	defer resp.Body.Close()

	raw, err := readAtMost(resp.Body, maxJSONBody)
	if errors.Is(err, errBodyTooLarge) {
		return nil, c.warn(Fail(KindDecode, "response exceeds %d bytes", maxJSONBody), action)
	}
	if err != nil {
		return nil, c.warn(Fail(KindTransport, "read body: %v", err), action)
	}

	c.logger().Debug("backend exchange", map[string]any{
		"method":      method,
		"action":      action,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.warn(statusFailure(resp.StatusCode, raw), action)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, c.warn(Fail(KindDecode, "invalid json response for %s", action), action)
	}
	if f := rejection(raw); f != nil {
		return nil, f
	}

	return json.RawMessage(raw), nil
}

// actionURL agrega action + params a la query del endpoint (respetando la query que ya tenga).
func (c *Client) actionURL(action string, params map[string]string) (string, *Failure) {
	action = strings.TrimSpace(action)
	if action == "" {
		return "", Fail(KindInvalid, "action required")
	}
	if c == nil || strings.TrimSpace(c.BaseURL) == "" {
		return "", Fail(KindTransport, "httpclient: endpoint not configured")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", Fail(KindTransport, "invalid endpoint: %v", err)
	}

	q := u.Query()
	q.Set("action", action)
	for k, v := range params {
		if strings.TrimSpace(k) == "" || k == "action" {
			continue
		}
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) warn(f *Failure, action string) *Failure {
	c.logger().Warn("backend exchange failed", map[string]any{
		"action": action,
		"kind":   string(f.Kind),
		"status": f.StatusCode,
		"error":  f.Message,
	})
	return f
}

func (c *Client) logger() logger.Logger {
	if c.Log == nil {
		return logger.Nop()
	}
	return c.Log
}

func readAtMost(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = maxJSONBody
	}
	// max+1: si llega el byte extra, el body no entra.
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, errBodyTooLarge
	}
	return data, nil
}
