// Package contract holds the one schema of every message exchanged over the
// broker. Producers and consumers both import it.
package contract

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

type Header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewHeader(idempotencyKey string) Header {
	return Header{
		ID:             watermill.NewUUID(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

// DedupKey identifies one emitted message across redeliveries.
func (h Header) DedupKey() string {
	if h.ID != "" {
		return h.ID
	}
	return h.IdempotencyKey
}
