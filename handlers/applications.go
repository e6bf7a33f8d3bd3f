package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/ThanimaVITC/thanima-connect/internal/application/service"
	"github.com/ThanimaVITC/thanima-connect/internal/department"
	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	// room for the text fields and multipart framing on top of the file limit
	formOverhead = 1 << 20
	multipartMem = 8 << 20
)

var errNotObject = errors.New("body must be a JSON object")

// ApplicationHandler serves the public application endpoints.
type ApplicationHandler struct {
	svc       *service.Service
	validator *application.Validator
	timeout   time.Duration
}

func NewApplicationHandler(svc *service.Service, v *application.Validator, timeout time.Duration) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, validator: v, timeout: timeout}
}

// Register mounts the routes. mw runs before Submit only (rate limiting).
func (h *ApplicationHandler) Register(r gin.IRouter, mw ...gin.HandlerFunc) {
	r.POST("/api/applications", append(mw, h.Submit)...)
	r.GET("/api/departments", ListDepartments)
}

// Submit accepts a JSON object or a multipart form with an optional
// "resume" file part.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	maxBody := h.validator.Limits().MaxFileSize + formOverhead
	if c.Request.ContentLength > maxBody {
		h.tooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)

	payload, cleanup, err := readPayload(c.Request)
	defer cleanup()
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.tooLarge(c)
			return
		}
		logger.DebugCtx(c.Request.Context(), "unreadable submission: %v", err)
		c.JSON(http.StatusBadRequest, service.Result{Kind: service.KindInvalid, Error: service.MsgInvalid})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	res := h.svc.Submit(ctx, payload)
	c.JSON(statusFor(res), res)
}

func (h *ApplicationHandler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusBadRequest, service.Result{
		Kind:        service.KindInvalid,
		Error:       service.MsgInvalid,
		FieldErrors: map[string]string{application.FieldResume: h.validator.FileTooLarge()},
	})
}

// readPayload reduces JSON, urlencoded and multipart bodies to one Payload.
// cleanup releases multipart temp files and must always be called.
func readPayload(r *http.Request) (service.Payload, func(), error) {
	noop := func() {}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMem); err != nil {
			return service.Payload{}, noop, err
		}
		form := r.MultipartForm
		cleanup := func() { _ = form.RemoveAll() }
		p := service.Payload{Fields: formFields(form.Value)}
		if files := form.File[application.FieldResume]; len(files) > 0 {
			fh := files[0]
			f, err := fh.Open()
			if err != nil {
				return service.Payload{}, cleanup, err
			}
			cleanup = func() {
				f.Close()
				_ = form.RemoveAll()
			}
			p.File = &application.Attachment{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Content:     f,
			}
		}
		return p, cleanup, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return service.Payload{}, noop, err
		}
		return service.Payload{Fields: formFields(r.PostForm)}, noop, nil
	default:
		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return service.Payload{}, noop, err
		}
		if fields == nil {
			return service.Payload{}, noop, errNotObject
		}
		return service.Payload{Fields: fields}, noop, nil
	}
}

func formFields(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func statusFor(res service.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Kind {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindDuplicate:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ListDepartments returns the department catalog for the form's cards.
func ListDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, department.Catalog())
}
