package song

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"

	"github.com/melodia/service/internal/storage"
)

var (
	errStoreDown = errors.New("store unavailable")
	errDeleteRef = errors.New("delete refused")
)

// mp3Bytes starts with an ID3 tag so content sniffing reports audio/mpeg.
var mp3Bytes = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), bytes.Repeat([]byte{0xff}, 32)...)

// pngBytes is a PNG signature followed by padding.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func validRequest() PublishRequest {
	return PublishRequest{
		OwnerID: "user-1",
		Title:   "Blue in Green",
		Author:  "Miles Davis",
		Audio:   Blob{Data: mp3Bytes, ContentType: "audio/mpeg", Filename: "track.MP3"},
		Image:   Blob{Data: pngBytes, ContentType: "image/png", Filename: "cover.png"},
	}
}

type fakeMetrics struct {
	mu            sync.Mutex
	outcomes      []string
	compensations map[string]int // "namespace/outcome" -> count
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{compensations: map[string]int{}}
}

func (m *fakeMetrics) ObservePublish(outcome string, _ float64) {
	m.mu.Lock()
	m.outcomes = append(m.outcomes, outcome)
	m.mu.Unlock()
}

func (m *fakeMetrics) IncCompensation(namespace, outcome string) {
	m.mu.Lock()
	m.compensations[namespace+"/"+outcome]++
	m.mu.Unlock()
}

// blockingStorage blocks Put on one namespace until the call's context is done.
type blockingStorage struct {
	*storage.MemoryStorage
	namespace string
}

func (b blockingStorage) Put(ctx context.Context, namespace, key string, obj storage.Object, opts storage.PutOptions) (storage.ObjectRef, error) {
	if namespace == b.namespace {
		<-ctx.Done()
		return storage.ObjectRef{}, ctx.Err()
	}
	return b.MemoryStorage.Put(ctx, namespace, key, obj, opts)
}

type fixture struct {
	objects *storage.MemoryStorage
	songs   *MemoryStore
	metrics *fakeMetrics
	logs    *bytes.Buffer
	svc     *Service
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		objects: storage.NewMemoryStorage(nil),
		songs:   NewMemoryStore(),
		metrics: newFakeMetrics(),
		logs:    &bytes.Buffer{},
	}
	opts = append([]Option{
		WithMetrics(f.metrics),
		WithLogger(log.New(f.logs, "", 0)),
	}, opts...)
	f.svc = NewService(f.songs, f.objects, opts...)
	return f
}

func fixedIDs(ids ...string) func() string {
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	}
}
