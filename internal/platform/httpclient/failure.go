package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind clasifica el origen de una falla. No cambia la forma del sobre.
type Kind string

const (
	KindTransport Kind = "transport" // red, timeout, request inválido
	KindStatus    Kind = "status"    // respuesta no-2xx
	KindDecode    Kind = "decode"    // body ilegible
	KindRejected  Kind = "rejected"  // {success:false} del propio backend
	KindInvalid   Kind = "invalid"   // validación local antes de enviar
)

// Failure es el sobre uniforme de error: {"success": false, "message": "..."}.
// Es el único tipo de error que devuelve la capa de acceso a datos.
type Failure struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Kind       Kind   `json:"-"`
	StatusCode int    `json:"-"`
}

func (f *Failure) Error() string {
	return f.Message
}

// Fail arma un Failure con mensaje formateado.
func Fail(kind Kind, format string, args ...any) *Failure {
	return &Failure{
		Success: false,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
	}
}

// AsFailure normaliza cualquier error al sobre uniforme. nil => nil.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Message: err.Error(), Kind: KindTransport}
}

// IsKind reporta si err es un Failure de ese tipo.
func IsKind(err error, kind Kind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}

func statusFailure(status int, body []byte) *Failure {
	msg := fmt.Sprintf("http error: status=%d", status)
	if b := strings.TrimSpace(string(body)); b != "" {
		if len(b) > 512 {
			b = b[:512]
		}
		msg = fmt.Sprintf("http error: status=%d body=%s", status, b)
	}
	return &Failure{Message: msg, Kind: KindStatus, StatusCode: status}
}

// rejection detecta el sobre {success:false, message} que el backend devuelve
// dentro de una respuesta bien formada. El mensaje pasa tal cual.
func rejection(raw []byte) *Failure {
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var env struct {
		Success *bool           `json:"success"`
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if env.Success == nil || *env.Success {
		return nil
	}

	msg := env.Error
	var s string
	if len(env.Message) > 0 {
		if err := json.Unmarshal(env.Message, &s); err == nil {
			msg = s
		} else {
			msg = string(env.Message)
		}
	}
	if strings.TrimSpace(msg) == "" {
		msg = "backend rejected the request"
	}
	return &Failure{Message: msg, Kind: KindRejected}
}
