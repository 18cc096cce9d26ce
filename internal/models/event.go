package models

import "time"

// ProductEventType names a product lifecycle transition.
type ProductEventType string

const (
	ProductCreated             ProductEventType = "product.created"
	ProductUpdated             ProductEventType = "product.updated"
	ProductAvailabilityChanged ProductEventType = "product.availability_changed"
	ProductDeleted             ProductEventType = "product.deleted"
)

// ProductEvent is the message published after a product is written.
type ProductEvent struct {
	Type       ProductEventType `json:"type"`
	ProductID  uint             `json:"product_id"`
	Product    *Product         `json:"product,omitempty"` // nil for deletions
	OccurredAt time.Time        `json:"occurred_at"`
}
