package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/pkg/logger"
	"inventory/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const workerServiceName = "inventory-stats-worker"

var errRecomputeQueueFull = errors.New("stats recompute queue is full")

// StatsRecomputer is the part of the stats service the worker drives.
type StatsRecomputer interface {
	Recompute(ctx context.Context) (*entity.StatsSnapshot, error)
	RequestRecompute() bool
}

// KafkaConsumer reads product_events and keeps the dashboard snapshot in step
// with mutations made by any API replica.
type KafkaConsumer struct {
	reader   *kafka.Reader
	topic    string
	groupID  string
	stats    StatsRecomputer
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	stats StatsRecomputer,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:   reader,
		topic:    topic,
		groupID:  groupID,
		stats:    stats,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close Kafka reader")
	}
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		message, err := c.reader.FetchMessage(readCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			metrics.RecordKafkaError(workerServiceName, c.topic, "fetch")
			logger.Error().Err(err).Msg("Error fetching message")
			time.Sleep(time.Second)
			continue
		}

		start := time.Now()
		if err := c.processMessage(ctx, message); err != nil {
			// not redelivered: the next commit moves past it and the cron repair covers the missed recompute
			metrics.RecordKafkaError(workerServiceName, c.topic, "process")
			logger.Error().Err(err).Int64("offset", message.Offset).Msg("Error processing message")
			continue
		}
		metrics.RecordKafkaMessageConsumed(workerServiceName, c.topic, c.groupID, time.Since(start))

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			metrics.RecordKafkaError(workerServiceName, c.topic, "commit")
			logger.Error().Err(err).Msg("Error committing message")
		}
	}
}

// processMessage schedules a recompute for every known product event. Unknown
// event types are skipped so they do not block the partition.
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ProductEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal product event: %w", err)
	}

	switch event.EventType {
	case entity.EventProductCreated, entity.EventProductUpdated, entity.EventProductDeleted:
	default:
		logger.Warn().
			Str("event_type", event.EventType).
			Int64("offset", message.Offset).
			Msg("Skipping unknown product event")
		return nil
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("product_id", event.ProductID).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Product event received")

	if !c.stats.RequestRecompute() {
		return errRecomputeQueueFull
	}
	return nil
}

func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
