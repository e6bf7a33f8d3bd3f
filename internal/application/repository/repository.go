package repository

import (
	"context"
	"errors"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = errors.New("submission not found")
	// ErrNoIdentifier is returned when the store acknowledged an insert but
	// did not hand back an identifier for it.
	ErrNoIdentifier = errors.New("insert acknowledged without identifier")
	ErrDuplicate    = errors.New("duplicate registration number")
)

// Repository is the document store for submitted applications. Records are
// inserted once, listed and deleted; there is no update.
type Repository interface {
	Insert(ctx context.Context, rec *application.Record) (string, error)
	List(ctx context.Context) ([]application.Submission, error)
	Delete(ctx context.Context, id string) error
}

// toSubmission flattens a stored document into the admin view. Object ids
// become hex strings and BSON datetimes become time.Time.
func toSubmission(doc bson.D) application.Submission {
	fields := make([]application.Field, 0, len(doc))
	for _, e := range doc {
		fields = append(fields, application.Field{Key: e.Key, Value: plain(e.Value)})
	}
	return application.NewSubmission(fields...)
}

func plain(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case bson.D:
		return toSubmission(t)
	case primitive.A:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plain(t[i])
		}
		return out
	default:
		return v
	}
}
