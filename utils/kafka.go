package utils

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/roomstack/room-booking-backend/config"
)

var (
	kafkaBrokers   []string
	kafkaSyncTopic string

	syncWriter *kafka.Writer
)

// InitializeKafka prepares the shared writer used to queue provider pushes.
// Kafka being down is not fatal: local CRUD keeps working and pushes are
// retried when the broker returns.
func InitializeKafka(cfg *config.Config) {
	brokers := cfg.KafkaBrokers
	if brokers == "" {
		brokers = "localhost:9092"
	}
	kafkaBrokers = strings.Split(brokers, ",")

	kafkaSyncTopic = cfg.KafkaSyncTopic
	if kafkaSyncTopic == "" {
		kafkaSyncTopic = "calendar-sync-outbound"
	}

	syncWriter = &kafka.Writer{
		Addr:         kafka.TCP(kafkaBrokers...),
		Topic:        kafkaSyncTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	log.Printf("✅ Kafka writer ready (brokers=%s topic=%s)", brokers, kafkaSyncTopic)
}

// PublishSyncMessage queues one local mutation for the push consumer.
// Keyed by event UID so changes to one event stay ordered.
func PublishSyncMessage(ctx context.Context, key string, payload []byte) error {
	if syncWriter == nil {
		log.Println("⚠️ Kafka writer not initialized, dropping sync message")
		return nil
	}
	return syncWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// NewSyncReader builds the consumer for the push queue
func NewSyncReader(groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkaBrokers,
		Topic:    kafkaSyncTopic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  2 * time.Second,
	})
}
