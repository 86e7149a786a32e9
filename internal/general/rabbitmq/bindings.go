package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeKind is a headers exchange: subscribers bind on message attributes
// (e.g. x-match=all, distance=5) instead of routing keys.
const ExchangeKind = amqp.ExchangeHeaders

// declareTopology declares the notification exchanges. Queues and bindings belong to subscribers.
func declareTopology(ch *amqp.Channel, exchanges []string) error {
	for _, name := range exchanges {
		if err := ch.ExchangeDeclare(name, ExchangeKind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}
	return nil
}
