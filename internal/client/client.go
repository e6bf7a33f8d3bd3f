// Package client submits applications to a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/ThanimaVITC/thanima-connect/internal/wizard"
	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
)

const submitPath = "/api/applications"

// SubmitError is a rejected submission as reported by the server.
type SubmitError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *SubmitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("submission failed: HTTP %d", e.Status)
	}
	return e.Message
}

func (e *SubmitError) FieldErrors() map[string]string { return e.Fields }

// Client posts applications as multipart/form-data.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ wizard.Submitter = (*Client)(nil)

// Submit sends the non-empty fields and, when set, the résumé file.
func (c *Client) Submit(ctx context.Context, fields map[string]string, resume *wizard.Resume) error {
	body, contentType, err := encode(fields, resume)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+submitPath, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post application: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Success     bool              `json:"success"`
		Error       string            `json:"error"`
		FieldErrors map[string]string `json:"fieldErrors"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Debugf("non-JSON response (HTTP %d): %q", resp.StatusCode, raw)
		return &SubmitError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if !out.Success || resp.StatusCode != http.StatusOK {
		return &SubmitError{Status: resp.StatusCode, Message: out.Error, Fields: out.FieldErrors}
	}
	return nil
}

func encode(fields map[string]string, resume *wizard.Resume) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if fields[k] == "" {
			continue
		}
		if err := mw.WriteField(k, fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if resume != nil {
		f, err := os.Open(resume.Path)
		if err != nil {
			return nil, "", fmt.Errorf("open resume: %w", err)
		}
		defer f.Close()
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, application.FieldResume, resume.Name))
		ct := resume.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", fmt.Errorf("copy resume: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
