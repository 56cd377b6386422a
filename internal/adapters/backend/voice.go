package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"medication-reminder/internal/platform/httpclient"
)

const voiceMimeType = "audio/mp4"

type voiceUpload struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64 estándar
	FolderID string `json:"folderId,omitempty"`
}

// VoiceFileName embebe el timestamp en ms para no tener que negociar nombres con el backend.
func (c *Client) VoiceFileName() string {
	return fmt.Sprintf("voice_%d.m4a", c.now().UnixMilli())
}

// SaveVoiceFile sube el audio en base64 y devuelve el id asignado por el backend.
func (c *Client) SaveVoiceFile(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", httpclient.Fail(httpclient.KindInvalid, "voice file is empty")
	}
	// Lo que no se puede bajar después no se sube.
	if len(data) > httpclient.MaxFileBody {
		return "", httpclient.Fail(httpclient.KindInvalid, "voice file exceeds %d bytes", httpclient.MaxFileBody)
	}

	reply, err := c.post(ctx, ActionUploadVoiceFile, voiceUpload{
		FileName: c.VoiceFileName(),
		MimeType: voiceMimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
		FolderID: c.voiceFolderID,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply.ID) == "" {
		return "", httpclient.Fail(httpclient.KindDecode, "%s reply without file id", ActionUploadVoiceFile)
	}
	return reply.ID, nil
}

// GetVoiceFile resuelve la URL de descarga y luego baja los bytes en un segundo intercambio.
func (c *Client) GetVoiceFile(ctx context.Context, fileID string) ([]byte, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, httpclient.Fail(httpclient.KindInvalid, "file id is required")
	}

	raw, err := c.Get(ctx, ActionGetVoiceFile, map[string]string{"fileId": fileID})
	if err != nil {
		return nil, err
	}

	var ref struct {
		URL string `json:"url"`
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, httpclient.Fail(httpclient.KindDecode, "%s: unexpected reply", ActionGetVoiceFile)
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, httpclient.Fail(httpclient.KindDecode, "decode %s reply: %v", ActionGetVoiceFile, err)
	}
	if strings.TrimSpace(ref.URL) == "" {
		return nil, httpclient.Fail(httpclient.KindDecode, "%s reply without url", ActionGetVoiceFile)
	}

	return c.http.Fetch(ctx, ref.URL)
}

func (c *Client) DeleteVoiceFile(ctx context.Context, fileID string) (Reply, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return Reply{}, httpclient.Fail(httpclient.KindInvalid, "file id is required")
	}
	return c.post(ctx, ActionDeleteVoiceFile, map[string]string{"fileId": fileID})
}
