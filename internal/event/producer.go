package event

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"

	"github.com/iamasit07/connect4-engine/internal/service/game"
)

const MatchFinished = "MATCH_FINISHED"

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// MatchAnalyticsEvent is the message written for every finished match.
type MatchAnalyticsEvent struct {
	Event      string  `json:"event"`
	MatchID    string  `json:"matchId"`
	SessionID  string  `json:"sessionId"`
	Mode       string  `json:"mode"`
	Difficulty string  `json:"difficulty,omitempty"`
	Result     string  `json:"result"`
	Winner     string  `json:"winner"`
	Moves      int     `json:"moves"`
	Duration   float64 `json:"duration_seconds"`
}

// NewProducer connects a synchronous producer. SASL over TLS is enabled when
// user is set.
func NewProducer(brokers []string, topic, user, password string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	if user != "" {
		config.Net.SASL.Enable = true
		config.Net.SASL.User = user
		config.Net.SASL.Password = password
		config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		config.Net.TLS.Enable = true
		config.Net.TLS.Config = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return NewProducerWith(p, topic), nil
}

func NewProducerWith(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

func NewMatchAnalyticsEvent(record game.MatchRecord) MatchAnalyticsEvent {
	return MatchAnalyticsEvent{
		Event:      MatchFinished,
		MatchID:    record.ID,
		SessionID:  record.SessionID,
		Mode:       string(record.Mode),
		Difficulty: string(record.Difficulty),
		Result:     string(record.Result.Kind),
		Winner:     record.Winner.String(),
		Moves:      record.Moves,
		Duration:   record.FinishedAt.Sub(record.StartedAt).Seconds(),
	}
}

// PublishMatchFinished sends one analytics event keyed by session so a
// session's matches stay on one partition.
func (p *Producer) PublishMatchFinished(ctx context.Context, record game.MatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	val, err := json.Marshal(NewMatchAnalyticsEvent(record))
	if err != nil {
		return fmt.Errorf("failed to marshal analytics event: %v", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(record.SessionID),
		Value: sarama.ByteEncoder(val),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send analytics event: %w", err)
	}
	log.Printf("[KAFKA] Match %s sent to %s/%d@%d", record.ID, p.topic, partition, offset)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
