package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/you/nirogsvc/domain"
)

// MockBlobStore implements domain.BlobStore in memory for testing
type MockBlobStore struct {
	PutFunc    func(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	DeleteFunc func(ctx context.Context, ref string) error

	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

// NewMockBlobStore creates a new MockBlobStore with default behaviors
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{objects: make(map[string][]byte)}
}

// Put stores the body under "mem://<name>"
func (m *MockBlobStore) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, name, contentType, r, size)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := "mem://" + name
	m.mu.Lock()
	m.objects[ref] = data
	m.mu.Unlock()
	return ref, nil
}

// Delete removes a stored object
func (m *MockBlobStore) Delete(ctx context.Context, ref string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ref)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[ref]; !ok {
		return domain.ErrBlobNotFound
	}
	delete(m.objects, ref)
	m.deleted = append(m.deleted, ref)
	return nil
}

// Objects returns the references currently stored (test helper)
func (m *MockBlobStore) Objects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]string, 0, len(m.objects))
	for ref := range m.objects {
		refs = append(refs, ref)
	}
	return refs
}

// Deleted returns the references removed so far (test helper)
func (m *MockBlobStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// Compile-time interface compliance verification
var _ domain.BlobStore = (*MockBlobStore)(nil)
