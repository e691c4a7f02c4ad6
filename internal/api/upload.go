package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	appErrors "github.com/noah-isme/wellness-client/pkg/errors"
)

// ErrEmptyUpload is returned when the backend accepted an upload but did
// not report where the file lives.
var ErrEmptyUpload = appErrors.Clone(appErrors.ErrInvalidEnvelope, "upload response did not include a url")

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Upload posts file as a multipart image under field and returns the
// absolute URL reported by the backend.
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader) (string, error) {
	contentType, ok := imageTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported image type %q", filepath.Ext(filename)))
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "prepare upload")
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "read upload file")
	}
	if err := writer.Close(); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "prepare upload")
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var raw json.RawMessage
	if err := c.send(httpReq, &raw); err != nil {
		return "", err
	}
	location := uploadLocation(raw)
	if location == "" {
		return "", ErrEmptyUpload
	}
	return c.ResolveURL(location), nil
}

// uploadLocation accepts either a bare string or an object carrying one
// of the url fields the backend uses.
func uploadLocation(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		URL       string `json:"url"`
		AvatarURL string `json:"avatar_url"`
		LogoURL   string `json:"logo_url"`
	}
	if json.Unmarshal(raw, &obj) != nil {
		return ""
	}
	switch {
	case obj.URL != "":
		return obj.URL
	case obj.AvatarURL != "":
		return obj.AvatarURL
	default:
		return obj.LogoURL
	}
}
