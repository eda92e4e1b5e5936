package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Op names recorded by MemoryStorage.
const (
	OpPut    = "put"
	OpDelete = "delete"
)

// Call is one recorded operation against a MemoryStorage.
type Call struct {
	Op        string
	Namespace string
	Key       string
}

// StoredObject is an object held by MemoryStorage.
type StoredObject struct {
	Data        []byte
	ContentType string
}

// MemoryStorage is a thread-safe store used when no object backend is configured
// and in tests. FailPut and FailDelete let callers inject faults per key.
type MemoryStorage struct {
	FailPut    func(namespace, key string) error
	FailDelete func(namespace, key string) error

	mu      sync.RWMutex
	buckets Buckets
	objects map[string]map[string]StoredObject
	calls   []Call
}

// NewMemoryStorage constructs an empty store serving the given namespaces.
func NewMemoryStorage(buckets Buckets) *MemoryStorage {
	if buckets == nil {
		buckets = DefaultBuckets()
	}
	objects := make(map[string]map[string]StoredObject, len(buckets))
	for ns := range buckets {
		objects[ns] = make(map[string]StoredObject)
	}
	return &MemoryStorage{buckets: buckets, objects: objects}
}

// Put stores a copy of obj.Body under namespace/key.
func (m *MemoryStorage) Put(_ context.Context, namespace, key string, obj Object, opts PutOptions) (ObjectRef, error) {
	if _, err := m.buckets.resolve(namespace); err != nil {
		return ObjectRef{}, err
	}

	m.record(OpPut, namespace, key)
	if m.FailPut != nil {
		if err := m.FailPut(namespace, key); err != nil {
			return ObjectRef{}, err
		}
	}

	var data []byte
	if obj.Body != nil {
		b, err := io.ReadAll(obj.Body)
		if err != nil {
			return ObjectRef{}, fmt.Errorf("read object body: %w", err)
		}
		data = b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.objects[namespace][key]; taken && !opts.Overwrite {
		return ObjectRef{}, fmt.Errorf("put object %q: %w", key, ErrObjectExists)
	}
	m.objects[namespace][key] = StoredObject{Data: data, ContentType: obj.ContentType}

	return ObjectRef{Namespace: namespace, Key: key, URL: m.PublicURL(namespace, key)}, nil
}

// Delete removes namespace/key if present.
func (m *MemoryStorage) Delete(_ context.Context, namespace, key string) error {
	if _, err := m.buckets.resolve(namespace); err != nil {
		return err
	}

	m.record(OpDelete, namespace, key)
	if m.FailDelete != nil {
		if err := m.FailDelete(namespace, key); err != nil {
			return err
		}
	}

	m.mu.Lock()
	delete(m.objects[namespace], key)
	m.mu.Unlock()
	return nil
}

// Exists reports whether namespace/key is present.
func (m *MemoryStorage) Exists(_ context.Context, namespace, key string) (bool, error) {
	if _, err := m.buckets.resolve(namespace); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[namespace][key]
	return ok, nil
}

// PublicURL returns a memory:// URL for the object.
func (m *MemoryStorage) PublicURL(namespace, key string) string {
	bucket, err := m.buckets.resolve(namespace)
	if err != nil {
		return ""
	}
	return "memory://" + objectPath(bucket, key)
}

// Get returns a stored object.
func (m *MemoryStorage) Get(namespace, key string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[namespace][key]
	return obj, ok
}

// Len returns the number of objects held in namespace.
func (m *MemoryStorage) Len(namespace string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects[namespace])
}

// Calls returns a snapshot of every Put and Delete issued, in order.
func (m *MemoryStorage) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot := make([]Call, len(m.calls))
	copy(snapshot, m.calls)
	return snapshot
}

func (m *MemoryStorage) record(op, namespace, key string) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Op: op, Namespace: namespace, Key: key})
	m.mu.Unlock()
}
