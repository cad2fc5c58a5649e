package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
}

func NewInvoiceHandler(s *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Service: s}
}

// EnsureInvoice returns the order's invoice record, allocating a number on
// first access.
func (h *InvoiceHandler) EnsureInvoice(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.Atoi(mux.Vars(r)["id"])

	invoice, err := h.Service.EnsureInvoice(r.Context(), orderID)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoice)
}

// DownloadInvoice streams the invoice PDF.
func (h *InvoiceHandler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.Atoi(mux.Vars(r)["id"])

	data, invoice, err := h.Service.GenerateInvoicePDF(r.Context(), orderID)
	if err != nil {
		utils.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="Invoice_%s.pdf"`, invoice.InvoiceNumber))
	w.Write(data)
}

// DownloadPackingSlip streams the 3x2 inch parcel label.
func (h *InvoiceHandler) DownloadPackingSlip(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.Atoi(mux.Vars(r)["id"])

	data, err := h.Service.GeneratePackingSlipPDF(r.Context(), orderID)
	if err != nil {
		utils.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="PackingSlip_%d.pdf"`, orderID))
	w.Write(data)
}
