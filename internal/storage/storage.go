// Package storage defines the interface for object storage operations.
// Objects live in named namespaces ("audio-objects", "image-objects"), each backed by
// its own bucket. Swap implementations by changing the concrete type injected at
// startup: MinIO, AWS S3 (or any S3-compatible provider) and an in-memory store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
)

// Fixed namespaces used by the publish flow.
const (
	NamespaceAudio = "audio-objects"
	NamespaceImage = "image-objects"
)

// ErrObjectExists is returned by Put when overwrite is disabled and the key is taken.
var ErrObjectExists = errors.New("object already exists")

// ErrUnknownNamespace is returned when a namespace has no bucket configured.
var ErrUnknownNamespace = errors.New("unknown storage namespace")

// Object is the payload handed to Put.
type Object struct {
	Body        io.Reader
	Size        int64 // exact byte count, -1 if unknown
	ContentType string
}

// PutOptions controls write semantics.
type PutOptions struct {
	// Overwrite allows replacing an existing object. When false, Put fails with
	// ErrObjectExists instead of silently replacing.
	Overwrite bool
}

// ObjectRef identifies a stored object.
type ObjectRef struct {
	Namespace string
	Key       string
	URL       string
}

// Storage is the interface for uploading and removing objects.
type Storage interface {
	// Put streams data to the store under namespace/key.
	Put(ctx context.Context, namespace, key string, obj Object, opts PutOptions) (ObjectRef, error)
	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error
	// Exists reports whether an object is present.
	Exists(ctx context.Context, namespace, key string) (bool, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(namespace, key string) string
}

// Buckets maps namespaces to backend bucket names.
type Buckets map[string]string

// DefaultBuckets uses the namespace name as the bucket name.
func DefaultBuckets() Buckets {
	return Buckets{
		NamespaceAudio: NamespaceAudio,
		NamespaceImage: NamespaceImage,
	}
}

func (b Buckets) resolve(namespace string) (string, error) {
	bucket, ok := b[namespace]
	if !ok || bucket == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownNamespace, namespace)
	}
	return bucket, nil
}

// objectPath joins bucket and key for use in a URL. Keys are derived from user titles
// and may hold characters such as '?', '#' or '%' that must not leak into the query,
// fragment or escape syntax.
func objectPath(bucket, key string) string {
	return bucket + "/" + url.PathEscape(key)
}
