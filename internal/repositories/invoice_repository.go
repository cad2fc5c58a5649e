package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
)

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

// EnsureForOrder returns the order's invoice, creating it on first call.
// Numbers come from a dedicated sequence so they are unique across the shop
// even under concurrent generation; repeated calls never burn a new number
// for an order that already has one.
func (r *InvoiceRepository) EnsureForOrder(ctx context.Context, orderID int) (*models.Invoice, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes concurrent generation attempts for the same order so only
	// one allocates a number.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lockClassInvoice, int32(orderID)); err != nil {
		return nil, fmt.Errorf("failed to lock order %d: %w", orderID, err)
	}

	var inv models.Invoice
	err = tx.QueryRow(ctx,
		`SELECT id, invoice_number, order_id, generated_at
         FROM invoices WHERE order_id=$1`, orderID,
	).Scan(&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.GeneratedAt)
	if err == nil {
		return &inv, tx.Commit(ctx)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	inv.OrderID = orderID
	inv.InvoiceNumber = fmt.Sprintf("INV-%05d", seq)
	err = tx.QueryRow(ctx,
		`INSERT INTO invoices(invoice_number, order_id)
         VALUES($1, $2)
         RETURNING id, generated_at`,
		inv.InvoiceNumber, orderID,
	).Scan(&inv.ID, &inv.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}
	return &inv, tx.Commit(ctx)
}

// GetByOrder returns an order's invoice without creating one.
func (r *InvoiceRepository) GetByOrder(ctx context.Context, orderID int) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.DB.QueryRow(ctx,
		`SELECT id, invoice_number, order_id, generated_at
         FROM invoices WHERE order_id=$1`, orderID,
	).Scan(&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("invoice for order", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
