package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed order repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectSQL = `
	SELECT id, code, user_id, full_name, whatsapp, address, reference, notes,
	       total, status, payment_status, paid_at,
	       receipt_image, receipt_uploaded_at,
	       culqi_order_id, culqi_last_state, culqi_last_event_at, created_at
	FROM orders`

// CreateOrder inserts the order and all its items inside a single transaction.
func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
		  (id, code, user_id, full_name, whatsapp, address, reference, notes,
		   total, status, payment_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		o.ID, o.Code, o.UserID, o.FullName, o.Whatsapp,
		o.Address, o.Reference, o.Notes,
		o.Total, o.Status, o.PaymentStatus)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items
			  (id, order_id, product_id, product_name, quantity, unit_price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, o.ID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getOne(ctx, selectSQL+` WHERE id=$1`, id)
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*Order, error) {
	return r.getOne(ctx, selectSQL+` WHERE code=$1`, NormalizeCode(code))
}

func (r *postgresRepo) GetByCodeAndPhone(ctx context.Context, code, whatsapp string) (*Order, error) {
	return r.getOne(ctx, selectSQL+` WHERE code=$1 AND whatsapp=$2`, NormalizeCode(code), whatsapp)
}

func (r *postgresRepo) GetByRemoteID(ctx context.Context, remoteID string) (*Order, error) {
	return r.getOne(ctx, selectSQL+` WHERE culqi_order_id=$1`, remoteID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	orders, err := r.queryOrders(ctx, selectSQL+` WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.Items, err = r.listItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) List(ctx context.Context, status Status, paymentStatus PaymentStatus) ([]*Order, error) {
	query := selectSQL + ` WHERE 1=1`
	args := []interface{}{}
	n := 1
	if status != "" {
		query += fmt.Sprintf(` AND status=$%d`, n)
		args = append(args, status)
		n++
	}
	if paymentStatus != "" {
		query += fmt.Sprintf(` AND payment_status=$%d`, n)
		args = append(args, paymentStatus)
		n++
	}
	query += ` ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, args...)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$1 WHERE id=$2`, status, id)
	return err
}

func (r *postgresRepo) SetPaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status=$1,
		    paid_at = CASE WHEN $1='paid' AND paid_at IS NULL THEN $2 ELSE paid_at END
		WHERE id=$3`,
		status, at, id)
	return err
}

func (r *postgresRepo) AttachReceipt(ctx context.Context, id uuid.UUID, image string, at time.Time) error {
	// Already-paid orders keep their status; the receipt is still recorded.
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET receipt_image=$1,
		    receipt_uploaded_at=$2,
		    payment_status = CASE WHEN payment_status='paid' THEN payment_status ELSE 'pending_review' END
		WHERE id=$3`,
		image, at, id)
	return err
}

func (r *postgresRepo) LinkRemoteOrder(ctx context.Context, id uuid.UUID, remoteID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET culqi_order_id=$1 WHERE id=$2`, remoteID, id)
	return err
}

// ApplyRemoteEvent is a single conditional UPDATE: the row lock serializes
// concurrent webhook deliveries for the same order, every SET expression sees
// the pre-update row, and payment can only move toward paid.
func (r *postgresRepo) ApplyRemoteEvent(ctx context.Context, id uuid.UUID, state string, eventAt time.Time, paid bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET culqi_last_state=$1,
		    culqi_last_event_at=$2,
		    paid_at = CASE WHEN $3 AND payment_status <> 'paid' THEN $2 ELSE paid_at END,
		    payment_status = CASE WHEN $3 THEN 'paid' ELSE payment_status END
		WHERE id=$4`,
		state, eventAt, paid, id)
	return err
}

func (r *postgresRepo) getOne(ctx context.Context, query string, args ...interface{}) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func scanOrder(scan func(...interface{}) error) (*Order, error) {
	o := &Order{}
	var userID sql.NullString
	var address, reference, notes, receiptImage, culqiID, culqiState sql.NullString
	var paidAt, receiptAt, culqiEventAt sql.NullTime

	err := scan(
		&o.ID, &o.Code, &userID, &o.FullName, &o.Whatsapp,
		&address, &reference, &notes,
		&o.Total, &o.Status, &o.PaymentStatus, &paidAt,
		&receiptImage, &receiptAt,
		&culqiID, &culqiState, &culqiEventAt, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		uid, err := uuid.Parse(userID.String)
		if err != nil {
			return nil, err
		}
		o.UserID = &uid
	}
	o.Address = address.String
	o.Reference = reference.String
	o.Notes = notes.String
	o.ReceiptImage = receiptImage.String
	o.CulqiOrderID = culqiID.String
	o.CulqiLastState = culqiState.String
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if receiptAt.Valid {
		o.ReceiptUploadedAt = &receiptAt.Time
	}
	if culqiEventAt.Valid {
		o.CulqiLastEventAt = &culqiEventAt.Time
	}
	return o, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if orders == nil {
		orders = []*Order{}
	}
	return orders, rows.Err()
}

func (r *postgresRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, subtotal, created_at
		FROM order_items WHERE order_id=$1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OrderItem
	for rows.Next() {
		item := &OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.Subtotal, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
