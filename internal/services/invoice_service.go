package services

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/jung-kurt/gofpdf/v2"

	"rental-backend/internal/config"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/numwords"
	"rental-backend/internal/timeutil"
)

// InvoiceStore allocates and looks up invoice records.
type InvoiceStore interface {
	EnsureForOrder(ctx context.Context, orderID int) (*models.Invoice, error)
	GetByOrder(ctx context.Context, orderID int) (*models.Invoice, error)
}

// OrderReader is the read-only order access the renderer needs.
type OrderReader interface {
	GetDetails(ctx context.Context, id int) (*models.OrderDetails, error)
}

type InvoiceService struct {
	Invoices InvoiceStore
	Orders   OrderReader
	Shop     *config.Config
}

func NewInvoiceService(invoices InvoiceStore, orders OrderReader, cfg *config.Config) *InvoiceService {
	return &InvoiceService{
		Invoices: invoices,
		Orders:   orders,
		Shop:     cfg,
	}
}

// EnsureInvoice returns the order's invoice, creating it on first access.
// The number an order gets never changes afterwards.
func (s *InvoiceService) EnsureInvoice(ctx context.Context, orderID int) (*models.Invoice, error) {
	if _, err := s.Orders.GetDetails(ctx, orderID); err != nil {
		return nil, err
	}
	invoice, err := s.Invoices.EnsureForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	metrics.InvoicesGeneratedTotal.Inc()
	return invoice, nil
}

// GenerateInvoicePDF renders the printable invoice: letterhead, customer and
// order blocks, the items table keyed by product code, extra charges,
// accessories, and the total with its amount in words.
func (s *InvoiceService) GenerateInvoicePDF(ctx context.Context, orderID int) ([]byte, *models.Invoice, error) {
	order, err := s.Orders.GetDetails(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	invoice, err := s.Invoices.EnsureForOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	// Letterhead
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(186, 10, s.Shop.Shop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if s.Shop.Shop.Contact != "" {
		pdf.CellFormat(186, 5, fmt.Sprintf("Contact: %s", s.Shop.Shop.Contact), "", 1, "C", false, 0, "")
	}
	for _, line := range s.Shop.Shop.Address {
		pdf.CellFormat(186, 5, line, "", 1, "C", false, 0, "")
	}
	if s.Shop.Shop.GSTIN != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(186, 5, fmt.Sprintf("GSTIN: %s", s.Shop.Shop.GSTIN), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(93, 7, fmt.Sprintf("Invoice: %s", invoice.InvoiceNumber), "", 0, "L", false, 0, "")
	pdf.CellFormat(93, 7, fmt.Sprintf("Date: %s", timeutil.ToIST(invoice.GeneratedAt).Format(timeutil.DisplayLayout)), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// Customer and order blocks side by side
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(93, 6, "Customer Details:", "", 0, "L", false, 0, "")
	pdf.CellFormat(93, 6, "Order Details:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(93, 5, fmt.Sprintf("Name: %s", order.Customer.Name), "", 0, "L", false, 0, "")
	pdf.CellFormat(93, 5, fmt.Sprintf("Order ID: #%d", order.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(93, 5, fmt.Sprintf("Phone: %s", order.Customer.Phone), "", 0, "L", false, 0, "")
	pdf.CellFormat(93, 5, fmt.Sprintf("Delivery: %s", order.DeliveryDate.Format(timeutil.DisplayLayout)), "", 1, "L", false, 0, "")
	alt := ""
	if order.Customer.SecondaryPhone != "" {
		alt = fmt.Sprintf("Alt Phone: %s", order.Customer.SecondaryPhone)
	}
	pdf.CellFormat(93, 5, alt, "", 0, "L", false, 0, "")
	pdf.CellFormat(93, 5, fmt.Sprintf("Return: %s", order.ReturnDate.Format(timeutil.DisplayLayout)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Items table lists product codes only, never names
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(15, 7, "Sr.", "B", 0, "L", false, 0, "")
	pdf.CellFormat(111, 7, "Product Code", "B", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, item := range order.Items {
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", i+1), "", 0, "L", false, 0, "")
		pdf.CellFormat(111, 6, item.ProductCode, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("Rs. %.2f", item.Price), "", 1, "R", false, 0, "")
	}

	if len(order.ExtraCharges) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(186, 6, "Extra Charges:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, extra := range order.ExtraCharges {
			pdf.CellFormat(126, 6, "    "+extra.Description, "", 0, "L", false, 0, "")
			pdf.CellFormat(60, 6, fmt.Sprintf("Rs. %.2f", extra.Amount), "", 1, "R", false, 0, "")
		}
	}

	if len(order.Accessories) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(186, 6, "Accessories:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, acc := range order.Accessories {
			label := "    " + acc.Name
			if acc.Remarks != "" {
				label += fmt.Sprintf(" (%s)", acc.Remarks)
			}
			pdf.CellFormat(186, 6, label, "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(126, 8, "TOTAL AMOUNT:", "T", 0, "R", false, 0, "")
	pdf.CellFormat(60, 8, fmt.Sprintf("Rs. %.2f", order.TotalAmount), "T", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(186, 6, fmt.Sprintf("(%s)", numwords.Words(order.TotalAmount)), "", 1, "L", false, 0, "")

	pdf.SetY(-20)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(186, 5, fmt.Sprintf("Thank you for choosing %s!", s.Shop.Shop.Name), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, nil, err
	}
	metrics.InvoicesGeneratedTotal.Inc()
	log.Printf("[Invoices] rendered %s for order #%d", invoice.InvoiceNumber, orderID)
	return buf.Bytes(), invoice, nil
}

// GeneratePackingSlipPDF renders the 3x2 inch label that goes on the parcel:
// bill number, customer, dates, the first products and accessories.
func (s *InvoiceService) GeneratePackingSlipPDF(ctx context.Context, orderID int) ([]byte, error) {
	order, err := s.Orders.GetDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	billNumber := "N/A"
	if invoice, err := s.Invoices.GetByOrder(ctx, orderID); err == nil {
		billNumber = invoice.InvoiceNumber
	}

	// 3x2 inches in millimeters
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 76.2, Ht: 50.8},
	})
	pdf.SetMargins(2.5, 2.5, 2.5)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(71, 4, s.Shop.Shop.Name, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 6)
	pdf.CellFormat(71, 3, fmt.Sprintf("Bill: %s", billNumber), "", 1, "L", false, 0, "")
	name := order.Customer.Name
	if len(name) > 20 {
		name = name[:20]
	}
	pdf.CellFormat(71, 3, fmt.Sprintf("Customer: %s", name), "", 1, "L", false, 0, "")
	pdf.CellFormat(71, 3, fmt.Sprintf("Delivery: %s", order.DeliveryDate.Format(timeutil.DisplayLayout)), "", 1, "L", false, 0, "")
	pdf.CellFormat(71, 3, fmt.Sprintf("Return: %s", order.ReturnDate.Format(timeutil.DisplayLayout)), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 6)
	pdf.CellFormat(71, 3, "Products:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 5)
	for i, item := range order.Items {
		if i == 5 {
			break
		}
		pdf.CellFormat(71, 2.5, fmt.Sprintf("- %s", item.ProductCode), "", 1, "L", false, 0, "")
	}

	if len(order.Accessories) > 0 {
		pdf.SetFont("Arial", "B", 5)
		pdf.CellFormat(71, 2.5, "Accessories:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 5)
		for i, acc := range order.Accessories {
			if i == 3 {
				break
			}
			label := acc.Name
			if len(label) > 15 {
				label = label[:15]
			}
			pdf.CellFormat(71, 2.5, fmt.Sprintf("- %s", label), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
