package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	svc "github.com/solmusic/studio/internal/services"
)

// GET /qr/{code}.png
// Renders the payment's invoice link as a QR for printed receipts; payments
// without an invoice link encode their own API URL instead.
func PaymentQR(w http.ResponseWriter, r *http.Request) {
	code, err := uuid.Parse(chi.URLParam(r, "code"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	payment, err := svc.PaymentByCode(code)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	url := payment.InvoiceLink
	if url == "" {
		url = "http://" + r.Host + "/payments/" + strconv.Itoa(int(payment.ID))
	}

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
