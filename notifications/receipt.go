package notifications

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/barmor12/cakeshop-backend/models"
)

// receiptRequired reports whether a payment method gets a PDF receipt
// attached to the confirmation email. Cash orders are settled at pickup and
// receive a printed receipt instead.
func receiptRequired(paymentMethod string) bool {
	return paymentMethod != "cash"
}

// GenerateReceiptPDF renders a one-page PDF receipt for an order.
func GenerateReceiptPDF(order *models.Order, customerName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("CakeShop Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(157, 92, 143)
	pdf.CellFormat(0, 12, "CakeShop", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 7, "Order Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order ID: %s", order.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Customer: %s", customerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", order.CreatedAt.Format("January 2, 2006 15:04")), "", 1, "L", false, 0, "")
	if order.DeliveryDate != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Delivery date: %s", order.DeliveryDate.Format("January 2, 2006")), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Payment method: %s", order.PaymentMethod), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Item table header
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(248, 249, 250)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(90, 8, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("$%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("$%.2f", item.UnitPrice*float64(item.Quantity)), "1", 1, "R", false, 0, "")
	}

	if order.DiscountCode != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, fmt.Sprintf("Discount code applied: %s", order.DiscountCode), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 10, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 10, fmt.Sprintf("$%.2f", order.TotalPrice), "", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "Thank you for ordering from CakeShop!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt PDF: %w", err)
	}
	return buf.Bytes(), nil
}
