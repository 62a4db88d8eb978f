package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "lineage/pkg/platform/audit"
)

// KafkaPublisher ships audit events to a Kafka topic keyed by owner so a
// tenant's events stay ordered within a partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// kafkaEnvelope is the wire format produced to the audit topic.
type kafkaEnvelope struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	OwnerID   string    `json:"owner_id"`
	Subject   string    `json:"subject,omitempty"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// NewKafkaPublisher connects to the given brokers and ensures the audit
// topic exists before returning. Topic creation is idempotent, so multiple
// instances can race on startup safely.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 3, 1, nil, topic); err != nil {
		// Already-exists is the common case after first boot.
		if !kadmTopicExists(err) {
			client.Close()
			return nil, fmt.Errorf("ensure audit topic %q: %w", topic, err)
		}
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

func kadmTopicExists(err error) bool {
	if err == nil {
		return true
	}
	// kadm renders TOPIC_ALREADY_EXISTS with this phrase across broker versions.
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// Emit produces the event asynchronously; produce failures are logged,
// never returned, so request handling cannot fail on broker trouble.
func (k *KafkaPublisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	value, err := json.Marshal(kafkaEnvelope{
		Category:  string(event.Category),
		Timestamp: ts,
		OwnerID:   event.OwnerID.String(),
		Subject:   event.Subject,
		Action:    event.Action,
		Detail:    event.Detail,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit envelope: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.OwnerID.String()),
		Value: value,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			k.logger.Error("failed to produce audit event", "action", event.Action, "error", err)
		}
	})
	return nil
}

// Flush blocks until buffered records are delivered or ctx expires.
func (k *KafkaPublisher) Flush(ctx context.Context) error {
	return k.client.Flush(ctx)
}

// Close flushes and releases the underlying client.
func (k *KafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = k.client.Flush(ctx)
	k.client.Close()
}
