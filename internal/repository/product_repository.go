package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/micebot/server/internal/model"
)

// productColumns is the canonical column list for product rows.  Every
// select in this file (and the joined select in the order repository)
// scans in this order.
const productColumns = "id, uuid, code, summary, taken, taken_at, created_at, updated_at"

// ProductRepo provides CRUD operations for redemption codes.  All
// methods hit the `product` table directly; the taken flag is only ever
// flipped by the order repository inside the redemption transaction.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a new ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// scanProduct reads one product row from a row scanner.
func scanProduct(row interface{ Scan(...interface{}) error }, p *model.Product) error {
	var takenAt sql.NullTime
	if err := row.Scan(&p.ID, &p.UUID, &p.Code, &p.Summary, &p.Taken, &takenAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	if takenAt.Valid {
		t := model.NewTime(takenAt.Time)
		p.TakenAt = &t
	}
	return nil
}

// List returns a page of products filtered by the taken flag.  Results
// are ordered by creation time (descending by default) with the internal
// key descending as a deterministic tie-break, matching pagination
// expectations when created_at values collide.  Each call runs a fresh
// query; there is no cursor state.
func (r *ProductRepo) List(ctx context.Context, skip, limit int, taken, desc bool) ([]model.Product, error) {
	order := "ASC"
	if desc {
		order = "DESC"
	}
	q := "SELECT " + productColumns + " FROM product WHERE taken = ? " +
		"ORDER BY created_at " + order + ", id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, taken, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// Count returns the total, available and taken product counts.  A single
// aggregate query keeps the three numbers consistent under concurrent
// writes, so all == available + taken always holds.
func (r *ProductRepo) Count(ctx context.Context) (model.ProductTotals, error) {
	const q = `SELECT COUNT(*),
					  COALESCE(SUM(taken = FALSE), 0),
					  COALESCE(SUM(taken = TRUE), 0)
			   FROM product`
	var t model.ProductTotals
	err := r.db.QueryRowContext(ctx, q).Scan(&t.All, &t.Available, &t.Taken)
	return t, err
}

// GetByUUID fetches a product by its external identifier.
func (r *ProductRepo) GetByUUID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM product WHERE uuid=? LIMIT 1", id), &p)
	if err == sql.ErrNoRows {
		return model.Product{}, ErrProductNotFound
	}
	return p, err
}

// GetByCode fetches a product by its redemption code.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (model.Product, error) {
	var p model.Product
	err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM product WHERE code=? LIMIT 1", code), &p)
	if err == sql.ErrNoRows {
		return model.Product{}, ErrProductNotFound
	}
	return p, err
}

// Create persists a new product with a server-generated uuid, taken set
// to false and DB-managed timestamps.  A duplicate code yields
// ErrCodeInUse whether it is caught by the pre-check in the handler or
// by the unique index here.
func (r *ProductRepo) Create(ctx context.Context, code, summary string) (model.Product, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO product (uuid, code, summary) VALUES (?,?,?)",
		id, code, summary)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Product{}, ErrCodeInUse
		}
		return model.Product{}, err
	}
	return r.GetByUUID(ctx, id)
}

// Update overwrites the code of an available product and, when a
// non-empty summary is supplied, the summary as well (partial-update
// semantics).  It fails with ErrProductNotFound when the uuid is
// unknown, ErrProductTaken when the product has been redeemed, and
// ErrCodeInUse when the new code belongs to a different product.
func (r *ProductRepo) Update(ctx context.Context, id, code, summary string) (model.Product, error) {
	p, err := r.GetByUUID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if p.Taken {
		return model.Product{}, ErrProductTaken
	}
	if other, err := r.GetByCode(ctx, code); err == nil {
		if other.UUID != id {
			return model.Product{}, ErrCodeInUse
		}
	} else if err != ErrProductNotFound {
		return model.Product{}, err
	}
	if summary != "" {
		_, err = r.db.ExecContext(ctx,
			"UPDATE product SET code=?, summary=? WHERE uuid=?", code, summary, id)
	} else {
		_, err = r.db.ExecContext(ctx,
			"UPDATE product SET code=? WHERE uuid=?", code, id)
	}
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Product{}, ErrCodeInUse
		}
		return model.Product{}, err
	}
	return r.GetByUUID(ctx, id)
}

// Delete removes an available product permanently.  Taken products are
// locked and cannot be deleted.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	p, err := r.GetByUUID(ctx, id)
	if err != nil {
		return err
	}
	if p.Taken {
		return ErrProductTaken
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM product WHERE uuid=?", id)
	return err
}
