package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/ThanimaVITC/thanima-connect/internal/application/repository"
	"github.com/ThanimaVITC/thanima-connect/internal/storage"
	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
	"github.com/ThanimaVITC/thanima-connect/pkg/metrics"
)

// Kind classifies a failed submission.
type Kind string

const (
	KindNone      Kind = ""
	KindInvalid   Kind = "invalid"
	KindUpload    Kind = "upload_failed"
	KindStorage   Kind = "storage_failed"
	KindDuplicate Kind = "duplicate"
	KindInternal  Kind = "internal"
)

// User-facing messages. Internal error text never reaches the caller.
const (
	MsgInvalid   = "Invalid data provided."
	MsgUpload    = "Failed to upload file."
	MsgStorage   = "Failed to save application."
	MsgDuplicate = "An application with this registration number already exists."
	MsgInternal  = "An unexpected error occurred."
)

const compensateTimeout = 5 * time.Second

// Payload is a raw submission: scalar form fields plus an optional file.
type Payload struct {
	Fields map[string]any
	File   *application.Attachment
}

// Result is the outcome of Submit. On success Data echoes the validated
// record without its store identifiers.
type Result struct {
	Success     bool                `json:"success"`
	Kind        Kind                `json:"-"`
	Error       string              `json:"error,omitempty"`
	FieldErrors map[string]string   `json:"fieldErrors,omitempty"`
	Data        *application.Record `json:"data,omitempty"`
}

// Service is the write path for applications.
type Service struct {
	validator *application.Validator
	repo      repository.Repository
	blobs     storage.BlobStore
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for submittedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service. blobs may be nil, in which case uploaded files are
// dropped.
func New(v *application.Validator, repo repository.Repository, blobs storage.BlobStore, opts ...Option) *Service {
	s := &Service{validator: v, repo: repo, blobs: blobs, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit validates p, stores its file when present and inserts the record.
// It never panics.
func (s *Service) Submit(ctx context.Context, p Payload) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCtx(ctx, "submission panicked: %v", r)
			res = failure(KindInternal, MsgInternal)
		}
		metrics.Submissions.WithLabelValues(resultLabel(res)).Inc()
	}()

	in := application.Normalize(p.Fields, p.File)
	rec, verr := s.validator.Validate(in)
	if verr != nil {
		logger.DebugCtx(ctx, "submission rejected: %v", verr)
		res = failure(KindInvalid, MsgInvalid)
		res.FieldErrors = verr.Fields
		return res
	}

	if in.Resume != nil {
		if s.blobs == nil {
			logger.WarnCtx(ctx, "file storage disabled, dropping %q from %s", in.Resume.Filename, rec.RegNo)
		} else {
			id, err := s.upload(ctx, in.Resume)
			if err != nil {
				logger.ErrorCtx(ctx, "upload résumé for %s: %v", rec.RegNo, err)
				return failure(KindUpload, MsgUpload)
			}
			rec.ResumeFileID = id
		}
	}

	rec.SubmittedAt = s.now().UTC()
	id, err := s.repo.Insert(ctx, rec)
	if err != nil {
		s.compensate(ctx, rec.ResumeFileID)
		if errors.Is(err, repository.ErrDuplicate) {
			logger.InfoCtx(ctx, "duplicate application for %s", rec.RegNo)
			return failure(KindDuplicate, MsgDuplicate)
		}
		logger.ErrorCtx(ctx, "insert application for %s: %v", rec.RegNo, err)
		return failure(KindStorage, MsgStorage)
	}
	logger.InfoCtx(ctx, "application %s stored for %s", id, rec.RegNo)

	data := *rec
	data.ID = ""
	data.ResumeFileID = ""
	return Result{Success: true, Data: &data}
}

func (s *Service) upload(ctx context.Context, a *application.Attachment) (string, error) {
	cr := &countingReader{r: a.Content}
	id, err := s.blobs.Put(ctx, storage.ObjectName(a.Filename), cr, a.Size, a.ContentType)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("blob store returned no identifier")
	}
	metrics.UploadBytes.Add(float64(cr.n))
	return id, nil
}

// compensate removes a blob whose record could not be inserted. It runs on
// a fresh deadline since the request context may be what failed the insert.
func (s *Service) compensate(ctx context.Context, blobID string) {
	if blobID == "" || s.blobs == nil {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()
	if err := s.blobs.Delete(cctx, blobID); err != nil {
		logger.ErrorCtx(ctx, "orphaned blob %s: %v", blobID, err)
		return
	}
	logger.InfoCtx(ctx, "removed blob %s after failed insert", blobID)
}

func failure(k Kind, msg string) Result {
	return Result{Kind: k, Error: msg}
}

func resultLabel(r Result) string {
	if r.Success {
		return "success"
	}
	return string(r.Kind)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.r == nil {
		return 0, io.EOF
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
