package worker

import (
	"context"
	"errors"
	"io"
	"time"

	"extmedia/internal/config"
	"extmedia/internal/logger"
	"extmedia/internal/media"

	"github.com/segmentio/kafka-go"
)

// SnapshotImporter runs one reconciliation.
type SnapshotImporter interface {
	Import(ctx context.Context, source string, items []media.ExternalItem) (*media.SyncResult, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Worker consumes full media snapshots from Kafka and imports each one.
type Worker struct {
	config   *config.Config
	logger   *logger.Logger
	reader   messageReader
	importer SnapshotImporter
	done     chan struct{}

	// retryDelay is the pause after a failed read.
	retryDelay time.Duration
}

func New(cfg *config.Config, logger *logger.Logger, importer SnapshotImporter) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers(),
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaSnapshotTopic,
		MinBytes:       1,
		MaxBytes:       50e6, // 50MB
		CommitInterval: time.Second,
	})

	return newWorker(cfg, logger, reader, importer)
}

func newWorker(cfg *config.Config, logger *logger.Logger, reader messageReader, importer SnapshotImporter) *Worker {
	return &Worker{
		config:     cfg,
		logger:     logger,
		reader:     reader,
		importer:   importer,
		done:       make(chan struct{}),
		retryDelay: time.Second,
	}
}

// Start reads until ctx is cancelled or the reader is closed.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)
	w.logger.Info("Worker started, listening for snapshots on %s...", w.config.KafkaSnapshotTopic)

	for {
		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		message, err := w.reader.ReadMessage(readCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, kafka.ErrGroupClosed) {
				w.logger.Info("Worker stopped")
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if errors.Is(err, io.EOF) {
				w.logger.Info("Worker stopped, reader closed")
				return
			}
			w.logger.Error("Failed to read message: %v", err)

			select {
			case <-ctx.Done():
			case <-time.After(w.retryDelay):
			}
			continue
		}

		w.handle(ctx, message)
	}
}

// handle imports one snapshot message. A message that is not a JSON array is dropped.
func (w *Worker) handle(ctx context.Context, message kafka.Message) {
	w.logger.Debug("Received snapshot at offset %d (%d bytes)", message.Offset, len(message.Value))

	items, err := media.DecodeSnapshot(message.Value)
	if err != nil {
		w.logger.Error("Dropping snapshot at offset %d: %v", message.Offset, err)
		return
	}

	result, err := w.importer.Import(ctx, "worker", items)
	if err != nil {
		w.logger.Error("Snapshot at offset %d failed: %v", message.Offset, err)
		return
	}

	w.logger.Info("Snapshot at offset %d processed: %d created, %d updated, %d deleted, %d unchanged",
		message.Offset, len(result.Created), len(result.Updated), len(result.Deleted), len(result.Unchanged))
}

// Stop closes the reader and waits for Start to return.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	if err := w.reader.Close(); err != nil {
		w.logger.Error("Failed to close reader: %v", err)
	}
	<-w.done
}
