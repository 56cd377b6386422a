package backend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"medication-reminder/internal/domain/users"
	"medication-reminder/internal/platform/httpclient"
)

// HashPassword devuelve SHA-256 en hex minúscula (64 chars).
// Sin salt: es una limitación conocida del contrato con el backend.
func HashPassword(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

type NewUser struct {
	Role           users.Role
	Email          string
	Name           string
	Password       string // texto plano; se hashea antes de salir de esta capa
	CaregiverEmail string // requerido para pacientes
}

// UserRecord es la forma en el cable de un usuario (sin hash).
type UserRecord struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	CaregiverEmail string `json:"caregiverEmail,omitempty"`
}

func (r UserRecord) User() users.User {
	return users.User{
		Email:          strings.TrimSpace(r.Email),
		Name:           strings.TrimSpace(r.Name),
		Role:           users.Role(strings.TrimSpace(r.Role)),
		CaregiverEmail: strings.TrimSpace(r.CaregiverEmail),
	}
}

type credentialsPayload struct {
	Role           string `json:"role,omitempty"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	Password       string `json:"password"`
	CaregiverEmail string `json:"caregiverEmail,omitempty"`
}

func (c *Client) CreateUser(ctx context.Context, in NewUser) (Reply, error) {
	return c.post(ctx, ActionCreateUser, credentialsPayload{
		Role:           string(in.Role),
		Email:          strings.TrimSpace(in.Email),
		Name:           strings.TrimSpace(in.Name),
		Password:       HashPassword(in.Password),
		CaregiverEmail: strings.TrimSpace(in.CaregiverEmail),
	})
}

// AuthenticateUser manda solo el hash; la comparación la hace el backend.
func (c *Client) AuthenticateUser(ctx context.Context, email, password string) (users.User, error) {
	raw, err := c.Post(ctx, ActionAuthenticateUser, credentialsPayload{
		Email:    strings.TrimSpace(email),
		Password: HashPassword(password),
	})
	if err != nil {
		return users.User{}, err
	}

	var out struct {
		User UserRecord `json:"user"`
	}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return users.User{}, httpclient.Fail(httpclient.KindDecode, "decode %s reply: %v", ActionAuthenticateUser, err)
		}
	}
	u := out.User.User()
	if u.Email == "" {
		u.Email = strings.TrimSpace(email)
	}
	return u, nil
}

func (c *Client) GetPatientsByCaregiver(ctx context.Context, caregiverEmail string) ([]users.User, error) {
	raw, err := c.Get(ctx, ActionGetPatientsByCaregiver, map[string]string{
		"caregiverEmail": strings.TrimSpace(caregiverEmail),
	})
	if err != nil {
		return []users.User{}, err
	}

	recs := decodeList[UserRecord](c, raw, ActionGetPatientsByCaregiver)
	out := make([]users.User, 0, len(recs))
	for _, r := range recs {
		u := r.User()
		if u.Email == "" {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}
