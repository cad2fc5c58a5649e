package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/booking"
	"rental-backend/internal/models"
	"rental-backend/internal/pricing"
)

// OrderRepository owns every write that has to be atomic with the
// availability check. Conflict detection and child-row maintenance run in a
// single transaction with a per-product advisory lock, so two concurrent
// bookings of the same product cannot both pass the check.
type OrderRepository struct {
	DB             *pgxpool.Pool
	activeStatuses []string
}

func NewOrderRepository(db *pgxpool.Pool, policy pricing.Policy) *OrderRepository {
	return &OrderRepository{
		DB:             db,
		activeStatuses: booking.ActiveStatuses(policy),
	}
}

// Advisory lock classes keep product and invoice locks in separate keyspaces.
const (
	lockClassProduct int32 = 1
	lockClassInvoice int32 = 2
)

// lockProducts serializes booking attempts per product within the calling
// transaction. IDs are locked in sorted order to avoid deadlocks between
// orders that share products.
func lockProducts(ctx context.Context, tx pgx.Tx, productIDs []int) error {
	ids := make([]int, len(productIDs))
	copy(ids, productIDs)
	sort.Ints(ids)
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lockClassProduct, int32(id)); err != nil {
			return fmt.Errorf("failed to lock product %d: %w", id, err)
		}
	}
	return nil
}

// checkConflicts returns a ConflictError for the first product that already
// has an active booking overlapping [delivery, ret]. Overlap is inclusive on
// both endpoints. excludeOrderID skips the order being edited.
func (r *OrderRepository) checkConflicts(ctx context.Context, tx pgx.Tx, productIDs []int, delivery, ret time.Time, excludeOrderID int) error {
	for _, pid := range productIDs {
		var orderID int
		var code string
		err := tx.QueryRow(ctx,
			`SELECT o.id, p.product_code
             FROM order_items oi
             JOIN orders o ON o.id = oi.order_id
             JOIN products p ON p.id = oi.product_id
             WHERE oi.product_id = $1
               AND o.status = ANY($2)
               AND o.id <> $3
               AND o.delivery_date <= $5
               AND $4 <= o.return_date
             ORDER BY o.id
             LIMIT 1`,
			pid, r.activeStatuses, excludeOrderID, delivery, ret,
		).Scan(&orderID, &code)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("conflict check failed for product %d: %w", pid, err)
		}
		return &apperrors.ConflictError{ProductID: pid, ProductCode: code, OrderID: orderID}
	}
	return nil
}

// upsertCustomer creates or refreshes the customer keyed by primary phone and
// returns its id.
func upsertCustomer(ctx context.Context, tx pgx.Tx, info *models.CustomerInfo) (int, error) {
	var id int
	err := tx.QueryRow(ctx,
		`INSERT INTO customers(name, phone, secondary_phone, email, address)
         VALUES($1, $2, $3, $4, $5)
         ON CONFLICT (phone) DO UPDATE SET
             name = EXCLUDED.name,
             secondary_phone = EXCLUDED.secondary_phone,
             email = EXCLUDED.email,
             address = EXCLUDED.address,
             updated_at = CURRENT_TIMESTAMP
         RETURNING id`,
		info.Name, info.Phone, info.SecondaryPhone, info.Email, info.Address,
	).Scan(&id)
	return id, err
}

func insertChildren(ctx context.Context, tx pgx.Tx, orderID int, items []*models.OrderItem, accessories []*models.OrderAccessory, extras []*models.OrderExtraCharge) error {
	for _, it := range items {
		err := tx.QueryRow(ctx,
			`INSERT INTO order_items(order_id, product_id, size, quantity, price)
             VALUES($1, $2, $3, $4, $5) RETURNING id`,
			orderID, it.ProductID, it.Size, it.Quantity, it.Price,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		it.OrderID = orderID
	}
	for _, a := range accessories {
		err := tx.QueryRow(ctx,
			`INSERT INTO order_accessories(order_id, accessory_name, remarks)
             VALUES($1, $2, $3) RETURNING id`,
			orderID, a.Name, a.Remarks,
		).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("failed to insert accessory: %w", err)
		}
		a.OrderID = orderID
	}
	for _, e := range extras {
		err := tx.QueryRow(ctx,
			`INSERT INTO order_extra_charges(order_id, description, amount, remarks)
             VALUES($1, $2, $3, $4) RETURNING id`,
			orderID, e.Description, e.Amount, e.Remarks,
		).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("failed to insert extra charge: %w", err)
		}
		e.OrderID = orderID
	}
	return nil
}

func productIDs(items []*models.OrderItem) []int {
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

// Create books a new order. The availability check, the customer upsert and
// every insert commit together or not at all.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, customer *models.CustomerInfo, items []*models.OrderItem, accessories []*models.OrderAccessory, extras []*models.OrderExtraCharge) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := productIDs(items)
	if err := lockProducts(ctx, tx, ids); err != nil {
		return err
	}
	if err := r.checkConflicts(ctx, tx, ids, order.DeliveryDate, order.ReturnDate, 0); err != nil {
		return err
	}

	customerID, err := upsertCustomer(ctx, tx, customer)
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	order.CustomerID = customerID

	err = tx.QueryRow(ctx,
		`INSERT INTO orders(transaction_id, customer_id, staff_id, delivery_date, return_date,
                status, total_amount, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at`,
		order.TransactionID, customerID, order.StaffID, order.DeliveryDate, order.ReturnDate,
		order.Status, order.TotalAmount, order.Notes,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if err := insertChildren(ctx, tx, order.ID, items, accessories, extras); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Replace rewrites an order's details and all of its child rows. The old
// child rows are dropped and the new set inserted, so removed items free
// their dates. The conflict check excludes the order itself.
func (r *OrderRepository) Replace(ctx context.Context, order *models.Order, customer *models.CustomerInfo, items []*models.OrderItem, accessories []*models.OrderAccessory, extras []*models.OrderExtraCharge) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := productIDs(items)
	if err := lockProducts(ctx, tx, ids); err != nil {
		return err
	}
	if err := r.checkConflicts(ctx, tx, ids, order.DeliveryDate, order.ReturnDate, order.ID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE customers SET name=$1, secondary_phone=$2, email=$3, address=$4,
                updated_at=CURRENT_TIMESTAMP
         WHERE id=$5`,
		customer.Name, customer.SecondaryPhone, customer.Email, customer.Address, order.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET delivery_date=$1, return_date=$2, total_amount=$3, notes=$4
         WHERE id=$5`,
		order.DeliveryDate, order.ReturnDate, order.TotalAmount, order.Notes, order.ID)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order", order.ID)
	}

	for _, table := range []string{"order_items", "order_accessories", "order_extra_charges"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE order_id=$1`, order.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertChildren(ctx, tx, order.ID, items, accessories, extras); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AppendItems adds products to an existing order, skipping any product the
// order already carries, and grows the total by the amounts of the items it
// actually inserted. It returns the product ids that were added.
func (r *OrderRepository) AppendItems(ctx context.Context, orderID int, items []*models.OrderItem, amounts map[int]float64) ([]int, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var delivery, ret time.Time
	err = tx.QueryRow(ctx,
		`SELECT delivery_date, return_date FROM orders WHERE id=$1`, orderID,
	).Scan(&delivery, &ret)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("order", orderID)
	}
	if err != nil {
		return nil, err
	}

	existing := map[int]bool{}
	rows, err := tx.Query(ctx, `SELECT product_id FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var pid int
		if err := rows.Scan(&pid); err != nil {
			rows.Close()
			return nil, err
		}
		existing[pid] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var fresh []*models.OrderItem
	for _, it := range items {
		if !existing[it.ProductID] {
			fresh = append(fresh, it)
		}
	}
	if len(fresh) == 0 {
		return nil, tx.Commit(ctx)
	}

	ids := productIDs(fresh)
	if err := lockProducts(ctx, tx, ids); err != nil {
		return nil, err
	}
	if err := r.checkConflicts(ctx, tx, ids, delivery, ret, orderID); err != nil {
		return nil, err
	}
	if err := insertChildren(ctx, tx, orderID, fresh, nil, nil); err != nil {
		return nil, err
	}

	var delta float64
	for _, pid := range ids {
		delta += amounts[pid]
	}
	if _, err := tx.Exec(ctx,
		`UPDATE orders SET total_amount = total_amount + $1 WHERE id=$2`, delta, orderID); err != nil {
		return nil, fmt.Errorf("failed to update order total: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id int) (*models.Order, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, transaction_id, customer_id, staff_id, delivery_date, return_date,
                status, total_amount, notes, created_at
         FROM orders WHERE id=$1`, id)

	var o models.Order
	err := row.Scan(&o.ID, &o.TransactionID, &o.CustomerID, &o.StaffID, &o.DeliveryDate,
		&o.ReturnDate, &o.Status, &o.TotalAmount, &o.Notes, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("order", id)
	}
	return &o, err
}

// GetDetails assembles the full read view of one order, including the
// customer, the staff member who booked it and every child row.
func (r *OrderRepository) GetDetails(ctx context.Context, id int) (*models.OrderDetails, error) {
	var d models.OrderDetails
	err := r.DB.QueryRow(ctx,
		`SELECT o.id, o.transaction_id, o.staff_id, u.name, u.role,
                o.delivery_date, o.return_date, o.status, o.total_amount, o.notes, o.created_at,
                c.id, c.name, c.phone, c.secondary_phone, c.email, c.address,
                c.created_at, c.updated_at
         FROM orders o
         JOIN users u ON u.id = o.staff_id
         JOIN customers c ON c.id = o.customer_id
         WHERE o.id = $1`, id,
	).Scan(&d.ID, &d.TransactionID, &d.StaffID, &d.StaffName, &d.StaffRole,
		&d.DeliveryDate, &d.ReturnDate, &d.Status, &d.TotalAmount, &d.Notes, &d.CreatedAt,
		&d.Customer.ID, &d.Customer.Name, &d.Customer.Phone, &d.Customer.SecondaryPhone,
		&d.Customer.Email, &d.Customer.Address, &d.Customer.CreatedAt, &d.Customer.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("order", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT oi.product_id, p.product_code, p.name, oi.size, oi.quantity, oi.price,
                p.deposit_amount, p.image_path
         FROM order_items oi
         JOIN products p ON p.id = oi.product_id
         WHERE oi.order_id = $1
         ORDER BY oi.id`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var it models.OrderItemDetail
		err := rows.Scan(&it.ProductID, &it.ProductCode, &it.ProductName, &it.Size,
			&it.Quantity, &it.Price, &it.DepositAmount, &it.ImagePath)
		if err != nil {
			rows.Close()
			return nil, err
		}
		d.Items = append(d.Items, &it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx,
		`SELECT id, order_id, accessory_name, remarks
         FROM order_accessories WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var a models.OrderAccessory
		if err := rows.Scan(&a.ID, &a.OrderID, &a.Name, &a.Remarks); err != nil {
			rows.Close()
			return nil, err
		}
		d.Accessories = append(d.Accessories, &a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx,
		`SELECT id, order_id, description, amount, remarks
         FROM order_extra_charges WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var e models.OrderExtraCharge
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Description, &e.Amount, &e.Remarks); err != nil {
			rows.Close()
			return nil, err
		}
		d.ExtraCharges = append(d.ExtraCharges, &e)
	}
	rows.Close()
	return &d, rows.Err()
}

// List returns order summaries newest first, optionally filtered by product
// code, customer name or phone, a date that matches either endpoint, and the
// booking staff member's name.
func (r *OrderRepository) List(ctx context.Context, filter *models.OrderFilter) ([]*models.OrderSummary, error) {
	query := `SELECT o.id, o.transaction_id, c.name, c.phone, u.name,
                     o.delivery_date, o.return_date, o.status, o.total_amount, o.created_at
              FROM orders o
              JOIN customers c ON c.id = o.customer_id
              JOIN users u ON u.id = o.staff_id`
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.ProductCode != "" {
			args = append(args, "%"+filter.ProductCode+"%")
			conds = append(conds, fmt.Sprintf(
				`EXISTS (SELECT 1 FROM order_items oi JOIN products p ON p.id = oi.product_id
                         WHERE oi.order_id = o.id AND p.product_code ILIKE $%d)`, len(args)))
		}
		if filter.Customer != "" {
			args = append(args, "%"+filter.Customer+"%")
			conds = append(conds, fmt.Sprintf(
				`(c.name ILIKE $%d OR c.phone ILIKE $%d)`, len(args), len(args)))
		}
		if filter.Date != nil {
			args = append(args, *filter.Date)
			conds = append(conds, fmt.Sprintf(
				`(o.delivery_date = $%d OR o.return_date = $%d)`, len(args), len(args)))
		}
		if filter.StaffName != "" {
			args = append(args, "%"+filter.StaffName+"%")
			conds = append(conds, fmt.Sprintf(`u.name ILIKE $%d`, len(args)))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY o.created_at DESC, o.id DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.OrderSummary
	for rows.Next() {
		var s models.OrderSummary
		err := rows.Scan(&s.ID, &s.TransactionID, &s.CustomerName, &s.CustomerPhone,
			&s.StaffName, &s.DeliveryDate, &s.ReturnDate, &s.Status, &s.TotalAmount, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

// ListByCustomer returns the order summaries for one customer, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int) ([]*models.OrderSummary, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT o.id, o.transaction_id, c.name, c.phone, u.name,
                o.delivery_date, o.return_date, o.status, o.total_amount, o.created_at
         FROM orders o
         JOIN customers c ON c.id = o.customer_id
         JOIN users u ON u.id = o.staff_id
         WHERE o.customer_id = $1
         ORDER BY o.created_at DESC, o.id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.OrderSummary
	for rows.Next() {
		var s models.OrderSummary
		err := rows.Scan(&s.ID, &s.TransactionID, &s.CustomerName, &s.CustomerPhone,
			&s.StaffName, &s.DeliveryDate, &s.ReturnDate, &s.Status, &s.TotalAmount, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

// ListByStaff returns the order summaries booked by one staff member,
// newest first.
func (r *OrderRepository) ListByStaff(ctx context.Context, staffID int) ([]*models.OrderSummary, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT o.id, o.transaction_id, c.name, c.phone, u.name,
                o.delivery_date, o.return_date, o.status, o.total_amount, o.created_at
         FROM orders o
         JOIN customers c ON c.id = o.customer_id
         JOIN users u ON u.id = o.staff_id
         WHERE o.staff_id = $1
         ORDER BY o.created_at DESC, o.id DESC`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.OrderSummary
	for rows.Next() {
		var s models.OrderSummary
		err := rows.Scan(&s.ID, &s.TransactionID, &s.CustomerName, &s.CustomerPhone,
			&s.StaffName, &s.DeliveryDate, &s.ReturnDate, &s.Status, &s.TotalAmount, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

// ListBookings returns the active reservations holding a product's dates.
func (r *OrderRepository) ListBookings(ctx context.Context, productID int) ([]*models.Booking, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT o.id, o.delivery_date, o.return_date, o.status, c.name
         FROM order_items oi
         JOIN orders o ON o.id = oi.order_id
         JOIN customers c ON c.id = o.customer_id
         WHERE oi.product_id = $1 AND o.status = ANY($2)
         ORDER BY o.delivery_date`, productID, r.activeStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(&b.OrderID, &b.DeliveryDate, &b.ReturnDate, &b.Status, &b.CustomerName)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}
