package model

// Order is the immutable audit record of a single redemption event.  It
// references exactly one product; the redemption path guarantees at most
// one order per product.  Orders are never updated or deleted once
// created.
//
// Fields:
//  ID               – primary key identifier (internal only).
//  UUID             – opaque external identifier, generated on insert.
//  ModID            – external identifier of the moderator who redeemed.
//  ModDisplayName   – moderator display name at redemption time.
//  OwnerDisplayName – display name of the end user receiving the code.
//  RequestedAt      – when the redemption happened; set at creation.
//  ProductID        – foreign key into product (internal only).
//  Product          – the redeemed product, embedded in API responses.
type Order struct {
	ID               uint64   `json:"-"`                  // order.id
	UUID             string   `json:"uuid"`               // order.uuid
	ModID            string   `json:"mod_id"`             // order.mod_id
	ModDisplayName   string   `json:"mod_display_name"`   // order.mod_display_name
	OwnerDisplayName string   `json:"owner_display_name"` // order.owner_display_name
	RequestedAt      Time     `json:"requested_at"`       // order.requested_at
	ProductID        uint64   `json:"-"`                  // order.product_id
	Product          *Product `json:"product,omitempty"`  // joined product row
}
