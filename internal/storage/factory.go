package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// New builds the configured blob store. BackendNone yields a nil store, which
// the submission pipeline treats as file storage being disabled. db is only
// used by the GridFS backend.
func New(ctx context.Context, cfg Config, db *mongo.Database) (BlobStore, error) {
	switch cfg.Backend {
	case BackendGridFS, "":
		if db == nil {
			return nil, fmt.Errorf("gridfs backend needs a database")
		}
		return NewGridFSStorage(db, cfg.GridFSBucket), nil
	case BackendMinIO:
		s, err := NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
