package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petitmarche/backend/internal/product"
)

// PGStore implements Store on PostgreSQL. All multi-entity writes run in one
// pgx transaction; stock mutation is a conditional UPDATE checked through
// RowsAffected, never a read-then-write.
type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so reads can run
// inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mapPGError turns store-level serialization conflicts into the retryable
// error kind the engine exposes.
func mapPGError(err error) error {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w (sqlstate %s)", ErrTxConflict, pge.Code)
		}
	}
	return err
}

func (s *PGStore) ProductsByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	rows, err := s.db.Query(ctx, `
    SELECT id, name, description, price::text, stock, category, created_at, updated_at
    FROM products WHERE id = ANY($1)
  `, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PGStore) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
    INSERT INTO orders (user_id, status, total, created_at, updated_at)
    VALUES ($1,$2,$3,NOW(),NOW())
    RETURNING id, created_at, updated_at
  `, o.UserID, o.Status, o.Total).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return mapPGError(err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID

		// Conditional decrement: only takes effect if the guard still holds at
		// write time. The validator's earlier read is not trusted here.
		tag, err := tx.Exec(ctx, `
      UPDATE products
      SET stock = stock - $2, updated_at = NOW()
      WHERE id = $1 AND stock >= $2
    `, it.ProductID, it.Quantity)
		if err != nil {
			return mapPGError(err)
		}
		if tag.RowsAffected() == 0 {
			var name string
			var stock int
			if qerr := tx.QueryRow(ctx, `SELECT name, stock FROM products WHERE id=$1`, it.ProductID).Scan(&name, &stock); qerr != nil {
				return &NotFoundError{Resource: "product", IDs: []int64{it.ProductID}}
			}
			return &InsufficientStockError{ProductID: it.ProductID, Name: name, Available: stock, Requested: it.Quantity}
		}

		if err := tx.QueryRow(ctx, `
      INSERT INTO order_items (order_id, product_id, quantity, price)
      VALUES ($1,$2,$3,$4)
      RETURNING id
    `, o.ID, it.ProductID, it.Quantity, it.Price).Scan(&it.ID); err != nil {
			return mapPGError(err)
		}
	}

	if err := tx.QueryRow(ctx, `
    INSERT INTO payments (order_id, amount, status, created_at, updated_at)
    VALUES ($1,$2,$3,NOW(),NOW())
    RETURNING id, created_at, updated_at
  `, o.ID, o.Payment.Amount, o.Payment.Status).Scan(&o.Payment.ID, &o.Payment.CreatedAt, &o.Payment.UpdatedAt); err != nil {
		return mapPGError(err)
	}
	o.Payment.OrderID = o.ID

	if err := tx.QueryRow(ctx, `
    INSERT INTO deliveries (order_id, status, method, address, created_at, updated_at)
    VALUES ($1,$2,$3,$4,NOW(),NOW())
    RETURNING id, created_at, updated_at
  `, o.ID, o.Delivery.Status, o.Delivery.Method, o.Delivery.Address).Scan(&o.Delivery.ID, &o.Delivery.CreatedAt, &o.Delivery.UpdatedAt); err != nil {
		return mapPGError(err)
	}
	o.Delivery.OrderID = o.ID

	if err := tx.Commit(ctx); err != nil {
		return mapPGError(err)
	}
	return nil
}

func (s *PGStore) OrderByID(ctx context.Context, id int64) (*Order, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := loadOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapPGError(err)
	}
	return o, nil
}

func (s *PGStore) OrdersByUser(ctx context.Context, userID int64) ([]Order, error) {
	return s.listOrders(ctx, `
    SELECT id, user_id, status, total::text, created_at, updated_at
    FROM orders WHERE user_id=$1
    ORDER BY created_at DESC
  `, userID)
}

func (s *PGStore) Orders(ctx context.Context) ([]Order, error) {
	return s.listOrders(ctx, `
    SELECT id, user_id, status, total::text, created_at, updated_at
    FROM orders
    ORDER BY created_at DESC
  `)
}

func (s *PGStore) CancelOrder(ctx context.Context, id int64) (*Order, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the order row and re-check the state; the service's earlier read
	// may be stale under concurrency.
	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Resource: "order", IDs: []int64{id}}
	}
	if err != nil {
		return nil, mapPGError(err)
	}
	if status == StatusCancelled {
		return nil, &InvalidStateError{Reason: "order is already cancelled"}
	}
	if !Cancellable(status) {
		return nil, &InvalidStateError{Reason: fmt.Sprintf("order in status %q cannot be cancelled", status)}
	}

	// Exact inverse of the creation decrements. Quantities are summed per
	// product first: an order may carry several lines for the same product,
	// and UPDATE ... FROM applies at most one join row per target row.
	if _, err := tx.Exec(ctx, `
    UPDATE products p
    SET stock = p.stock + i.qty, updated_at = NOW()
    FROM (
      SELECT product_id, SUM(quantity) AS qty
      FROM order_items
      WHERE order_id = $1
      GROUP BY product_id
    ) i
    WHERE p.id = i.product_id
  `, id); err != nil {
		return nil, mapPGError(err)
	}

	if _, err := tx.Exec(ctx, `
    UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1
  `, id, StatusCancelled); err != nil {
		return nil, mapPGError(err)
	}
	if _, err := tx.Exec(ctx, `
    UPDATE payments SET status=$2, updated_at=NOW() WHERE order_id=$1
  `, id, PaymentCancelled); err != nil {
		return nil, mapPGError(err)
	}
	if _, err := tx.Exec(ctx, `
    UPDATE deliveries SET status=$2, updated_at=NOW() WHERE order_id=$1
  `, id, DeliveryCancelled); err != nil {
		return nil, mapPGError(err)
	}

	o, err := loadOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapPGError(err)
	}
	return o, nil
}

func (s *PGStore) UpdateStatuses(ctx context.Context, id int64, upd StatusUpdate) (*Order, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists int64
	err = tx.QueryRow(ctx, `SELECT id FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Resource: "order", IDs: []int64{id}}
	}
	if err != nil {
		return nil, mapPGError(err)
	}

	if upd.OrderStatus != nil {
		if _, err := tx.Exec(ctx, `
      UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1
    `, id, *upd.OrderStatus); err != nil {
			return nil, mapPGError(err)
		}
	}
	if upd.PaymentStatus != nil {
		if _, err := tx.Exec(ctx, `
      UPDATE payments SET status=$2, updated_at=NOW() WHERE order_id=$1
    `, id, *upd.PaymentStatus); err != nil {
			return nil, mapPGError(err)
		}
	}
	if upd.DeliveryStatus != nil || upd.EstimatedAt != nil {
		if _, err := tx.Exec(ctx, `
      UPDATE deliveries
      SET status = COALESCE($2, status),
          estimated_at = COALESCE($3, estimated_at),
          updated_at = NOW()
      WHERE order_id=$1
    `, id, upd.DeliveryStatus, upd.EstimatedAt); err != nil {
			return nil, mapPGError(err)
		}
	}

	o, err := loadOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapPGError(err)
	}
	return o, nil
}

// listOrders runs the list query and the per-order hydration inside one
// read-only transaction, so a cancellation committing mid-read cannot produce
// an order row whose payment or delivery disagrees with its status.
func (s *PGStore) listOrders(ctx context.Context, sql string, args ...any) ([]Order, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	for i := range out {
		if err := hydrate(ctx, tx, &out[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapPGError(err)
	}
	return out, nil
}

func loadOrder(ctx context.Context, q querier, id int64) (*Order, error) {
	var o Order
	err := q.QueryRow(ctx, `
    SELECT id, user_id, status, total::text, created_at, updated_at
    FROM orders WHERE id=$1
  `, id).Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Resource: "order", IDs: []int64{id}}
	}
	if err != nil {
		return nil, err
	}
	if err := hydrate(ctx, q, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func hydrate(ctx context.Context, q querier, o *Order) error {
	rows, err := q.Query(ctx, `
    SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.price::text
    FROM order_items i
    JOIN products p ON p.id = i.product_id
    WHERE i.order_id=$1
    ORDER BY i.id
  `, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	o.Items = nil
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var p Payment
	err = q.QueryRow(ctx, `
    SELECT id, order_id, amount::text, status, created_at, updated_at
    FROM payments WHERE order_id=$1
  `, o.ID).Scan(&p.ID, &p.OrderID, &p.Amount, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		o.Payment = nil
	case err != nil:
		return err
	default:
		o.Payment = &p
	}

	var d Delivery
	err = q.QueryRow(ctx, `
    SELECT id, order_id, status, method, address, estimated_at, created_at, updated_at
    FROM deliveries WHERE order_id=$1
  `, o.ID).Scan(&d.ID, &d.OrderID, &d.Status, &d.Method, &d.Address, &d.EstimatedAt, &d.CreatedAt, &d.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		o.Delivery = nil
	case err != nil:
		return err
	default:
		o.Delivery = &d
	}
	return nil
}
