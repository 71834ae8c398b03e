package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// ドメインイベント名
const (
	EventOrderPlaced        = "order.placed"
	EventOrderCanceled      = "order.canceled"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentSettled     = "payment.settled"
)

// Kafkaに流すイベントの外形
type Envelope struct {
	Name       string      `json:"name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// イベント発行の約束。
// 発行は在庫や注文の確定に影響させない（best-effort）。
type Publisher interface {
	Publish(ctx context.Context, name string, payload interface{}) error
	Close() error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// SyncProducerで接続する。brokersが空のときはNopを使うこと。
func NewKafkaPublisher(brokers []string, topic string) (Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &kafkaPublisher{producer: producer, topic: topic}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, name string, payload interface{}) error {
	body, err := json.Marshal(Envelope{
		Name:       name,
		OccurredAt: time.Now(),
		Payload:    payload,
	})
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(name),
		Value: sarama.ByteEncoder(body),
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		log.Printf("events: failed to publish %s: %v", name, err)
		return err
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type nopPublisher struct{}

// broker未設定のとき用
func NewNopPublisher() Publisher {
	return &nopPublisher{}
}

func (p *nopPublisher) Publish(ctx context.Context, name string, payload interface{}) error {
	return nil
}

func (p *nopPublisher) Close() error { return nil }
