package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
)

const (
	LoanTopic = "biblio.loan-events"

	RecorderConsumerGroup = "biblio-recorder"
)

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
}

// LoanEvent is published by the lifecycle manager after every committed
// slot mutation and consumed by the history/notification recorder.
type LoanEvent struct {
	EventUid  string    `json:"eventUid"`
	UserName  string    `json:"username"`
	ItemUid   string    `json:"itemUid"`
	ItemName  string    `json:"itemName"`
	Category  string    `json:"category"`
	EventType string    `json:"eventType"` // RESERVED | CANCELLED | BORROWED | RETURNED
	Timestamp time.Time `json:"timestamp"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume runs the consumer group loop until the context is cancelled.
func Consume(ctx context.Context, cg sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, topic string) error {
	for {
		if err := cg.Consume(ctx, []string{topic}, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
