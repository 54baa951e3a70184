// Package blob stores resume files. The S3 implementation is used in
// deployments; Memory backs tests and local runs without a bucket.
package blob

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get for keys that were never written.
var ErrNotFound = errors.New("blob: not found")

// ResumeKey is the object key of a user's resume.
func ResumeKey(userID string) string {
	return "resumes/" + userID + ".pdf"
}

// Memory is an in-process store.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}
