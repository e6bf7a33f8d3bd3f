package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memObject struct {
	data        []byte
	contentType string
}

// MemoryStorage keeps blobs in process memory, keyed by name.
type MemoryStorage struct {
	mu   sync.RWMutex
	objs map[string]memObject
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objs: map[string]memObject{}}
}

func (m *MemoryStorage) Put(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs[name] = memObject{data: data, contentType: contentType}
	return name, nil
}

func (m *MemoryStorage) Get(ctx context.Context, id string) (io.ReadCloser, *Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	m.mu.RLock()
	o, ok := m.objs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	obj := &Object{ID: id, Name: id, ContentType: o.contentType, Size: int64(len(o.data))}
	return io.NopCloser(bytes.NewReader(o.data)), obj, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objs[id]; !ok {
		return ErrNotFound
	}
	delete(m.objs, id)
	return nil
}

// Len reports how many blobs are stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objs)
}
