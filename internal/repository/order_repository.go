package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/micebot/server/internal/model"
)

// orderColumns lists the order-side columns of the joined selects below.
// `order` is a reserved word in MySQL, so the table name is always
// backticked.
const orderColumns = "o.id, o.uuid, o.mod_id, o.mod_display_name, o.owner_display_name, o.requested_at"

// OrderRepo records redemption events in the `order` table.  Orders are
// append-only: there is no update or delete.  Creation happens solely
// through CreateForProduct, which flips the product's taken flag and
// inserts the order in one transaction.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// scanOrder reads one joined order+product row.
func scanOrder(row interface{ Scan(...interface{}) error }, o *model.Order) error {
	var p model.Product
	var takenAt sql.NullTime
	err := row.Scan(
		&o.ID, &o.UUID, &o.ModID, &o.ModDisplayName, &o.OwnerDisplayName, &o.RequestedAt,
		&p.ID, &p.UUID, &p.Code, &p.Summary, &p.Taken, &takenAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if takenAt.Valid {
		t := model.NewTime(takenAt.Time)
		p.TakenAt = &t
	}
	o.ProductID = p.ID
	o.Product = &p
	return nil
}

// List returns a page of orders with their products embedded.  The
// moderator and owner filters are conjunctive when both are supplied.
// Ordering is by requested_at (ascending by default) with the internal
// key as tie-break.  Orders are not filtered by the product's taken
// flag: every order references a taken product by construction.
func (r *OrderRepo) List(ctx context.Context, skip, limit int, moderator, owner string, desc bool) ([]model.Order, error) {
	q := "SELECT " + orderColumns + ", p." + strings.ReplaceAll(productColumns, ", ", ", p.") +
		" FROM `order` o JOIN product p ON p.id = o.product_id"
	args := make([]interface{}, 0, 4)
	conds := make([]string, 0, 2)
	if moderator != "" {
		conds = append(conds, "o.mod_display_name = ?")
		args = append(args, moderator)
	}
	if owner != "" {
		conds = append(conds, "o.owner_display_name = ?")
		args = append(args, owner)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	order := "ASC"
	tie := "ASC"
	if desc {
		order, tie = "DESC", "DESC"
	}
	q += " ORDER BY o.requested_at " + order + ", o.id " + tie + " LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns the total number of orders recorded.
func (r *OrderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM `order`").Scan(&n)
	return n, err
}

// GetByProductCode returns the order that redeemed the product with the
// given code, or ErrOrderNotFound when the product has not been
// redeemed (or does not exist).
func (r *OrderRepo) GetByProductCode(ctx context.Context, code string) (model.Order, error) {
	q := "SELECT " + orderColumns + ", p." + strings.ReplaceAll(productColumns, ", ", ", p.") +
		" FROM `order` o JOIN product p ON p.id = o.product_id WHERE p.code = ? LIMIT 1"
	var o model.Order
	err := scanOrder(r.db.QueryRowContext(ctx, q, code), &o)
	if err == sql.ErrNoRows {
		return model.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// CreateForProduct redeems a product: it marks the product taken and
// records the order as one atomic unit.  The taken flip is a conditional
// update (`... WHERE taken = FALSE`) whose affected-row count is the
// authoritative guard, so of two concurrent redemptions for the same
// product exactly one commits and the other observes ErrProductTaken.
// The caller's prior taken check is advisory only.
func (r *OrderRepo) CreateForProduct(ctx context.Context, product model.Product, modID, modName, ownerName string) (model.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx,
		"UPDATE product SET taken = TRUE, taken_at = ? WHERE id = ? AND taken = FALSE",
		now, product.ID)
	if err != nil {
		return model.Order{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Order{}, err
	}
	if affected == 0 {
		return model.Order{}, ErrProductTaken
	}

	id := uuid.NewString()
	ins, err := tx.ExecContext(ctx,
		"INSERT INTO `order` (uuid, mod_id, mod_display_name, owner_display_name, requested_at, product_id) VALUES (?,?,?,?,?,?)",
		id, modID, modName, ownerName, now, product.ID)
	if err != nil {
		// The unique index on product_id is the schema-level backstop for
		// the same invariant.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Order{}, ErrProductTaken
		}
		return model.Order{}, err
	}
	orderID, err := ins.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}

	// Read the product back inside the transaction so the returned order
	// embeds the flipped state and DB-managed timestamps.
	var p model.Product
	if err := scanProduct(tx.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM product WHERE id=? LIMIT 1", product.ID), &p); err != nil {
		return model.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	committed = true

	return model.Order{
		ID:               uint64(orderID),
		UUID:             id,
		ModID:            modID,
		ModDisplayName:   modName,
		OwnerDisplayName: ownerName,
		RequestedAt:      model.NewTime(now),
		ProductID:        p.ID,
		Product:          &p,
	}, nil
}
