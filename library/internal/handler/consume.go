package handler

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/dkenzhe/library-service/library/internal/model"
)

type recordAudit func(ctx context.Context, ev model.AuditEvent) error

// Consumer drains the audit topic and persists each event. Failed
// writes are not marked, so the event is redelivered.
type Consumer struct {
	recordAuditHandler recordAudit
	log                *zap.Logger
	ready              chan bool
}

func NewConsumer(recordAudit recordAudit, log *zap.Logger) *Consumer {
	return &Consumer{
		recordAuditHandler: recordAudit,
		log:                log.Named("consumer"),
		ready:              make(chan bool),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	// Mark the consumer as ready
	close(consumer.ready)
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var ev model.AuditEvent
			if err := json.Unmarshal(message.Value, &ev); err != nil {
				consumer.log.Error("unmarshal audit event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			if err := consumer.recordAuditHandler(context.Background(), ev); err != nil {
				consumer.log.Error("consumer.recordAuditHandler", zap.Error(err))
				continue
			}

			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
