package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"extmedia/internal/config"
	"extmedia/internal/logger"
	"extmedia/internal/media"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu       sync.Mutex
	messages []kafka.Message
	closed   chan struct{}
	once     sync.Once
}

func newFakeReader(values ...string) *fakeReader {
	r := &fakeReader{closed: make(chan struct{})}
	for i, v := range values {
		r.messages = append(r.messages, kafka.Message{Offset: int64(i), Value: []byte(v)})
	}
	return r
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		m := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	select {
	case <-r.closed:
		return kafka.Message{}, io.EOF
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

type recordingImporter struct {
	mu      sync.Mutex
	calls   [][]media.ExternalItem
	sources []string
	err     error
	handled chan struct{}
}

func (i *recordingImporter) Import(_ context.Context, source string, items []media.ExternalItem) (*media.SyncResult, error) {
	i.mu.Lock()
	i.calls = append(i.calls, items)
	i.sources = append(i.sources, source)
	i.mu.Unlock()
	defer func() { i.handled <- struct{}{} }()
	if i.err != nil {
		return nil, i.err
	}
	return media.NewSyncResult(), nil
}

func testConfig() *config.Config {
	return &config.Config{KafkaSnapshotTopic: "media-snapshots"}
}

func TestWorker_ImportsSnapshots(t *testing.T) {
	reader := newFakeReader(
		`[{"id":"A1","urls":{"full":"http://x/a.jpg"}}]`,
		`{"not":"an array"}`,
		`[]`,
	)
	importer := &recordingImporter{handled: make(chan struct{}, 3)}
	w := newWorker(testConfig(), logger.New("error"), reader, importer)

	go w.Start(context.Background())
	<-importer.handled
	<-importer.handled
	w.Stop()

	require.Len(t, importer.calls, 2, "the non-array message is dropped")
	require.Len(t, importer.calls[0], 1)
	assert.Equal(t, "A1", importer.calls[0][0].ID)
	assert.Empty(t, importer.calls[1])
	assert.Equal(t, []string{"worker", "worker"}, importer.sources)
}

func TestWorker_ImportFailureDoesNotStopLoop(t *testing.T) {
	reader := newFakeReader(`[]`, `[]`)
	importer := &recordingImporter{err: errors.New("boom"), handled: make(chan struct{}, 2)}
	w := newWorker(testConfig(), logger.New("error"), reader, importer)

	go w.Start(context.Background())
	<-importer.handled
	<-importer.handled
	w.Stop()

	assert.Len(t, importer.calls, 2)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	reader := newFakeReader()
	w := newWorker(testConfig(), logger.New("error"), reader, &recordingImporter{handled: make(chan struct{}, 1)})

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)
	cancel()
	<-w.done
}

type failingReader struct {
	mu    sync.Mutex
	reads int
}

func (r *failingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return kafka.Message{}, errors.New("dial tcp: connection refused")
}

func (r *failingReader) Close() error { return nil }

func TestWorker_ReadErrorsBackOffWithoutImporting(t *testing.T) {
	reader := &failingReader{}
	importer := &recordingImporter{handled: make(chan struct{}, 1)}
	w := newWorker(testConfig(), logger.New("error"), reader, importer)
	w.retryDelay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-w.done

	reader.mu.Lock()
	reads := reader.reads
	reader.mu.Unlock()
	assert.LessOrEqual(t, reads, 10, "reads are paced by the retry delay")
	assert.GreaterOrEqual(t, reads, 1)
	assert.Empty(t, importer.calls, "a failed read never reaches the importer")
}
