package model

// Product represents a single-use redemption code as stored in the
// `product` table.  The numeric ID is the internal surrogate key and is
// never serialized; clients address products by UUID or by code.
//
// Fields:
//  ID        – primary key identifier (internal only).
//  UUID      – opaque external identifier, generated on insert.
//  Code      – globally unique, human-facing redemption key.
//  Summary   – optional free-text description.
//  Taken     – whether the code has been redeemed.  One-way: once true
//              the product can no longer be updated or deleted.
//  TakenAt   – when the code was redeemed (null while available).
//  CreatedAt – creation timestamp, server-managed.
//  UpdatedAt – last update timestamp, server-managed.
type Product struct {
	ID        uint64 `json:"-"`          // product.id
	UUID      string `json:"uuid"`       // product.uuid
	Code      string `json:"code"`       // product.code
	Summary   string `json:"summary"`    // product.summary
	Taken     bool   `json:"taken"`      // product.taken
	TakenAt   *Time  `json:"taken_at"`   // product.taken_at (nullable)
	CreatedAt Time   `json:"created_at"` // product.created_at
	UpdatedAt Time   `json:"updated_at"` // product.updated_at
}

// ProductTotals carries the counter triple returned alongside product
// listings.  All always equals Available + Taken.
type ProductTotals struct {
	All       int64 `json:"all"`
	Taken     int64 `json:"taken"`
	Available int64 `json:"available"`
}
