package mq

import (
	"context"
	"encoding/json"
	"log"

	"mandi/models"
	"mandi/rdx"
)

// OrderEventsChannel is the Redis pub/sub channel the notify worker
// listens on.
const OrderEventsChannel = "order-events"

// EmitOrderEvent publishes an order event to Redis. Callers invoke it
// only after their transaction has committed; a failed publish is
// logged and dropped, never surfaced to the caller.
func EmitOrderEvent(event models.OrderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Emit] Failed to marshal %s event: %v", event.Event, err)
		return
	}

	if err := rdx.Conn.Publish(context.Background(), OrderEventsChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s event for order %s: %v", event.Event, event.OrderID, err)
		return
	}
}
