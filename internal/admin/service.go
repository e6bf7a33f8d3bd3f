package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/ThanimaVITC/thanima-connect/internal/application/repository"
	"github.com/ThanimaVITC/thanima-connect/internal/export"
	"github.com/ThanimaVITC/thanima-connect/internal/storage"
	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
	"github.com/ThanimaVITC/thanima-connect/pkg/metrics"
)

// ErrNothingToExport is returned by BundleAttachments when no submission has
// a file that could be fetched.
var ErrNothingToExport = errors.New("no files to export")

// Service is the admin read side: listing, exports and deletion.
type Service struct {
	repo  repository.Repository
	blobs storage.BlobStore
}

// New returns a Service. blobs may be nil when file storage is disabled.
func New(repo repository.Repository, blobs storage.BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// List returns every submission in store order.
func (s *Service) List(ctx context.Context) ([]application.Submission, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// ExportCSV renders every submission as CSV. An empty store gives "".
func (s *Service) ExportCSV(ctx context.Context) (string, error) {
	out, err := s.exportCSV(ctx)
	metrics.Exports.WithLabelValues("csv", outcome(err)).Inc()
	return out, err
}

func (s *Service) exportCSV(ctx context.Context) (string, error) {
	subs, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	return export.CSV(subs)
}

// BundleAttachments zips the résumé of every submission that has one.
// Files are fetched one at a time; a file that cannot be fetched is logged
// and left out.
func (s *Service) BundleAttachments(ctx context.Context) ([]byte, error) {
	b, err := s.bundle(ctx)
	metrics.Exports.WithLabelValues("files", outcome(err)).Inc()
	return b, err
}

func (s *Service) bundle(ctx context.Context) ([]byte, error) {
	subs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	a := export.NewArchive()
	refs := 0
	for _, sub := range subs {
		fileID := sub.Text(application.FieldResumeFileID)
		if fileID == "" {
			continue
		}
		refs++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, obj, err := s.fetch(ctx, fileID)
		if err != nil {
			logger.WarnCtx(ctx, "export: skipping file %s of %s: %v", fileID, sub.ID(), err)
			metrics.ExportSkippedFiles.Inc()
			continue
		}
		name := export.ArchiveName(sub.Text(application.FieldName), sub.Text(application.FieldRegNo), obj.Name, obj.ContentType)
		if _, err := a.Add(name, submittedAt(sub), data); err != nil {
			return nil, err
		}
	}
	if a.Len() == 0 {
		logger.InfoCtx(ctx, "export: nothing to bundle (%d file references)", refs)
		return nil, ErrNothingToExport
	}
	return a.Bytes()
}

func (s *Service) fetch(ctx context.Context, id string) ([]byte, *storage.Object, error) {
	if s.blobs == nil {
		return nil, nil, errors.New("file storage disabled")
	}
	rc, obj, err := s.blobs.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", id, err)
	}
	return data, obj, nil
}

// Delete removes one submission. Its résumé, if any, stays in the blob store.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete submission %s: %w", id, err)
	}
	logger.InfoCtx(ctx, "submission %s deleted", id)
	return nil
}

func submittedAt(sub application.Submission) time.Time {
	if v, ok := sub.Get(application.FieldSubmittedAt); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Now()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNothingToExport):
		return "empty"
	}
	return "error"
}
