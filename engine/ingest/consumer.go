package ingest

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/faqrag/faqrag/pkg/bus"
)

// DefaultSubject is the NATS subject for incoming pairs.
const DefaultSubject = "qa.pairs.add"

// dlqMessage is published for a pair that failed ingestion.
type dlqMessage struct {
	Pair  PairInput `json:"pair"`
	Error string    `json:"error"`
}

// StartConsumer subscribes to subject and runs each incoming pair through
// AddPair. A failed pair is published once to <subject>.dlq; there is no
// redelivery.
func (s *Service) StartConsumer(nc *nats.Conn, subject string) (*nats.Subscription, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	dlq := subject + ".dlq"

	return bus.Subscribe(nc, subject, func(ctx context.Context, pair PairInput) {
		id, err := s.AddPair(ctx, pair.Keyword, pair.Question, pair.Answer)
		if err != nil {
			s.logger.Error("consumer pair failed", "keyword", pair.Keyword, "error", err)
			if pubErr := bus.Publish(ctx, nc, dlq, dlqMessage{Pair: pair, Error: err.Error()}); pubErr != nil {
				s.logger.Error("consumer dlq publish failed", "error", pubErr)
			}
			return
		}
		s.logger.Info("consumer pair stored", "id", id)
	})
}
