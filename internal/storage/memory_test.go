package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoragePutRefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(nil)

	ref, err := s.Put(ctx, NamespaceAudio, "audio-a-1", Object{Body: strings.NewReader("first"), ContentType: "audio/mpeg"}, PutOptions{})
	require.NoError(t, err)
	assert.Equal(t, "memory://audio-objects/audio-a-1", ref.URL)

	_, err = s.Put(ctx, NamespaceAudio, "audio-a-1", Object{Body: strings.NewReader("second")}, PutOptions{})
	require.ErrorIs(t, err, ErrObjectExists)

	obj, ok := s.Get(NamespaceAudio, "audio-a-1")
	require.True(t, ok)
	assert.Equal(t, "first", string(obj.Data))
	assert.Equal(t, "audio/mpeg", obj.ContentType)

	_, err = s.Put(ctx, NamespaceAudio, "audio-a-1", Object{Body: strings.NewReader("second")}, PutOptions{Overwrite: true})
	require.NoError(t, err)
	obj, _ = s.Get(NamespaceAudio, "audio-a-1")
	assert.Equal(t, "second", string(obj.Data))
}

func TestMemoryStorageDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(nil)

	_, err := s.Put(ctx, NamespaceImage, "image-a-1", Object{Body: strings.NewReader("png")}, PutOptions{})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, NamespaceImage, "image-a-1"))
	require.NoError(t, s.Delete(ctx, NamespaceImage, "image-a-1"))

	exists, err := s.Exists(ctx, NamespaceImage, "image-a-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStorageUnknownNamespace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(nil)

	_, err := s.Put(ctx, "videos", "k", Object{}, PutOptions{})
	assert.ErrorIs(t, err, ErrUnknownNamespace)
	assert.ErrorIs(t, s.Delete(ctx, "videos", "k"), ErrUnknownNamespace)
	_, err = s.Exists(ctx, "videos", "k")
	assert.ErrorIs(t, err, ErrUnknownNamespace)
	assert.Empty(t, s.PublicURL("videos", "k"))
}

func TestMemoryStorageFaultInjection(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(nil)
	boom := errors.New("boom")
	s.FailPut = func(namespace, _ string) error {
		if namespace == NamespaceImage {
			return boom
		}
		return nil
	}
	s.FailDelete = func(string, string) error { return boom }

	_, err := s.Put(ctx, NamespaceAudio, "a", Object{Body: strings.NewReader("x")}, PutOptions{})
	require.NoError(t, err)
	_, err = s.Put(ctx, NamespaceImage, "i", Object{Body: strings.NewReader("x")}, PutOptions{})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, s.Delete(ctx, NamespaceAudio, "a"), boom)

	assert.Equal(t, 1, s.Len(NamespaceAudio))
	assert.Equal(t, 0, s.Len(NamespaceImage))
	assert.Equal(t, []Call{
		{Op: OpPut, Namespace: NamespaceAudio, Key: "a"},
		{Op: OpPut, Namespace: NamespaceImage, Key: "i"},
		{Op: OpDelete, Namespace: NamespaceAudio, Key: "a"},
	}, s.Calls())
}

func TestMemoryStorageConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Put(ctx, NamespaceAudio, "same-key", Object{Body: strings.NewReader("x")}, PutOptions{})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Len(t, s.Calls(), 16)
}

func TestBucketsResolve(t *testing.T) {
	b := Buckets{NamespaceAudio: "songs", NamespaceImage: ""}

	bucket, err := b.resolve(NamespaceAudio)
	require.NoError(t, err)
	assert.Equal(t, "songs", bucket)

	_, err = b.resolve(NamespaceImage)
	assert.ErrorIs(t, err, ErrUnknownNamespace)
}

func TestPublicReadPolicy(t *testing.T) {
	policy := publicReadPolicy("audio-objects")
	assert.Contains(t, policy, `"arn:aws:s3:::audio-objects/*"`)
	assert.Contains(t, policy, `"s3:GetObject"`)
}
