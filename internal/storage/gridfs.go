package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStorage stores blobs in a GridFS bucket of the application database.
// The identifier is the file's ObjectID in hex; the content type travels in
// the file metadata.
type GridFSStorage struct {
	db   *mongo.Database
	name string
}

func NewGridFSStorage(db *mongo.Database, bucketName string) *GridFSStorage {
	if bucketName == "" {
		bucketName = "resumes"
	}
	return &GridFSStorage{db: db, name: bucketName}
}

// bucket returns a bucket handle bounded by ctx's deadline. Bucket deadlines
// are per handle, so each call gets its own.
func (g *GridFSStorage) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(g.db, options.GridFSBucket().SetName(g.name))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(dl); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(dl); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (g *GridFSStorage) Put(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	b, err := g.bucket(ctx)
	if err != nil {
		return "", err
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	id, err := b.UploadFromStream(name, r, opts)
	if err != nil {
		return "", fmt.Errorf("gridfs upload %s: %w", name, err)
	}
	return id.Hex(), nil
}

func (g *GridFSStorage) Get(ctx context.Context, id string) (io.ReadCloser, *Object, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return nil, nil, err
	}
	ds, err := b.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("gridfs open %s: %w", id, err)
	}
	f := ds.GetFile()
	obj := &Object{ID: id, Name: f.Name, Size: f.Length}
	if len(f.Metadata) > 0 {
		if ct, ok := f.Metadata.Lookup("contentType").StringValueOK(); ok {
			obj.ContentType = ct
		}
	}
	return ds, obj, nil
}

func (g *GridFSStorage) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return err
	}
	if err := b.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("gridfs delete %s: %w", id, err)
	}
	return nil
}

func (g *GridFSStorage) Ping(ctx context.Context) error {
	return g.db.Client().Ping(ctx, nil)
}
