// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCreatedEvent is published when a product is successfully redeemed.
// It carries enough information for downstream consumers to build an
// audit trail without querying the primary database.
type OrderCreatedEvent struct {
	OrderUUID        string `json:"order_uuid"`
	ProductUUID      string `json:"product_uuid"`
	ProductCode      string `json:"product_code"`
	ModID            string `json:"mod_id"`
	ModDisplayName   string `json:"mod_display_name"`
	OwnerDisplayName string `json:"owner_display_name"`
	RequestedAt      string `json:"requested_at"`
}
