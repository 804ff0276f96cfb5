package service

import (
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/dkenzhe/library-service/library/internal/model"
	"github.com/dkenzhe/library-service/pkg/kafka"
)

// Auditor publishes state-change events. The kafka consumer persists
// them to audit_logs, so the audit trail is eventually consistent with
// the mutation that caused it.
type Auditor interface {
	Publish(ev model.AuditEvent)
}

type auditor struct {
	producer sarama.SyncProducer
	log      *zap.Logger
}

func NewAuditor(producer sarama.SyncProducer, log *zap.Logger) Auditor {
	return &auditor{
		producer: producer,
		log:      log.Named("audit"),
	}
}

// Publish is best-effort: an audit outage must not fail the mutation
// it records.
func (a *auditor) Publish(ev model.AuditEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		a.log.Error("marshal audit event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{Topic: kafka.AuditTopic, Value: sarama.StringEncoder(data)}
	if _, _, err := a.producer.SendMessage(msg); err != nil {
		a.log.Error("publish audit event", zap.Error(err), zap.String("action", ev.Action))
	}
}

// NopAuditor drops events; used in tests and when kafka is disabled.
type NopAuditor struct{}

func (NopAuditor) Publish(model.AuditEvent) {}
