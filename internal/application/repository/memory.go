package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo keeps submissions in process memory, in insertion order. It
// stores the same BSON shape the Mongo repository writes, so List output is
// identical between the two. Used for development and tests.
type MemoryRepo struct {
	mu          sync.RWMutex
	docs        []bson.D
	uniqueRegNo bool
}

func NewMemoryRepo(uniqueRegNo bool) *MemoryRepo {
	return &MemoryRepo{uniqueRegNo: uniqueRegNo}
}

func (m *MemoryRepo) Insert(ctx context.Context, rec *application.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := bson.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}
	var body bson.D
	if err := bson.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode submission: %w", err)
	}
	oid := primitive.NewObjectID()
	doc := append(bson.D{{Key: application.FieldID, Value: oid}}, body...)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uniqueRegNo {
		for _, d := range m.docs {
			if lookup(d, application.FieldRegNo) == rec.RegNo {
				return "", fmt.Errorf("insert submission: %w", ErrDuplicate)
			}
		}
	}
	m.docs = append(m.docs, doc)
	return oid.Hex(), nil
}

func (m *MemoryRepo) List(ctx context.Context) ([]application.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]application.Submission, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, toSubmission(d))
	}
	return out, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.docs {
		if lookup(d, application.FieldID) == oid {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func lookup(d bson.D, key string) any {
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}
