package orders

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mandi/globals"
	"mandi/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// receiptQRPayload returns orderNumber|total|signature so a seller can
// verify a printed receipt against the platform.
func receiptQRPayload(orderNumber string, total float64) string {
	data := fmt.Sprintf("%s|%.2f", orderNumber, total)
	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// DownloadReceipt renders the order as a PDF with a signed QR code.
// Amounts come from the order's frozen snapshot, never from live prices.
func DownloadReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor := Actor{
		UserID: utils.GetUserIDFromRequest(r),
		Roles:  utils.GetRolesFromRequest(r),
	}
	if actor.UserID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	order, err := loadOrderFor(ctx, ps.ByName("orderid"), actor)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(receiptQRPayload(order.OrderNumber, order.TotalAmount), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order: %s", order.OrderNumber))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Placed: %s", order.CreatedAt.Format(time.RFC822)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", order.Status))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Payment: %s (%s)", order.PaymentMethod, order.PaymentStatus))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(80, 8, "Item", "1", 0, "", false, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, line := range order.Lines {
		pdf.CellFormat(80, 8, line.ProductName, "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", line.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", line.Subtotal), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.Cell(0, 8, fmt.Sprintf("Subtotal: %.2f", order.Subtotal))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Delivery fee: %.2f", order.DeliveryFee))
	pdf.Ln(7)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", order.TotalAmount))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.OrderNumber+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
