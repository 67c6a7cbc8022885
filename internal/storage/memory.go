package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"
)

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// Memory is an in-process Storage used by the service tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

var _ Storage = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject)}
}

func (m *Memory) Put(_ context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("read object: %w", err)
	}
	sum := md5.Sum(data)
	info := ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ETag:         hex.EncodeToString(sum[:]),
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, info: info}
	m.mu.Unlock()
	return info, nil
}

func (m *Memory) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
